package model

import "time"

// Import statuses.
const (
    ImportProcessing = "processing"
    ImportCompleted  = "completed"
    ImportFailed     = "failed"
)

// ImportRowError describes a row that could not be imported.  Row is the
// 1-based spreadsheet line, counting the header.
type ImportRowError struct {
    Row         int    `json:"row,omitempty"`
    ProductName string `json:"product_name,omitempty"`
    Error       string `json:"error"`
}

// ImportHistory tracks one bulk product import in `import_history`.
type ImportHistory struct {
    ID             uint64           `json:"id"`              // import_history.id
    Filename       string           `json:"filename"`        // import_history.filename
    Status         string           `json:"status"`          // import_history.status
    TotalRows      int              `json:"total_rows"`      // import_history.total_rows
    SuccessfulRows int              `json:"successful_rows"` // import_history.successful_rows
    FailedRows     int              `json:"failed_rows"`     // import_history.failed_rows
    Errors         []ImportRowError `json:"errors"`          // import_history.errors (JSON)
    CreatedAt      time.Time        `json:"created_at"`      // import_history.created_at
    CompletedAt    *time.Time       `json:"completed_at"`    // import_history.completed_at (nullable)
    UserID         *uint64          `json:"user_id"`         // import_history.user_id (nullable)
}
