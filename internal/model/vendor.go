package model

import "time"

// Vendor represents a supplier in the `vendors` table.  One vendor
// supplies many products.
type Vendor struct {
    ID            uint64    `json:"id"`                       // vendors.id
    Name          string    `json:"name"`                     // vendors.name
    ContactPerson *string   `json:"contact_person,omitempty"` // vendors.contact_person (nullable)
    Email         string    `json:"email"`                    // vendors.email
    Phone         *string   `json:"phone,omitempty"`          // vendors.phone (nullable)
    Address       *string   `json:"address,omitempty"`        // vendors.address (nullable)
    CreatedAt     time.Time `json:"created_at"`               // vendors.created_at
    UpdatedAt     time.Time `json:"updated_at"`               // vendors.updated_at
}
