// Package queue defines the inventory events exchanged over RabbitMQ and
// the publisher and consumer that move them.
package queue

import "time"

// Event types.
const (
	SaleCreated     = "sale.created"
	SaleUpdated     = "sale.updated"
	SaleDeleted     = "sale.deleted"
	ImportCompleted = "import.completed"
)

// Event is published after a stock-changing operation commits. It carries
// enough for consumers to log and to flag low stock without querying the
// database.
type Event struct {
	Type           string    `json:"type"`
	SaleID         uint64    `json:"sale_id,omitempty"`
	ProductID      uint64    `json:"product_id,omitempty"`
	ProductName    string    `json:"product_name,omitempty"`
	UserID         uint64    `json:"user_id,omitempty"`
	Quantity       int       `json:"quantity,omitempty"`
	RemainingStock *int      `json:"remaining_stock,omitempty"`
	ImportID       uint64    `json:"import_id,omitempty"`
	Successful     int       `json:"successful,omitempty"`
	Failed         int       `json:"failed,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
