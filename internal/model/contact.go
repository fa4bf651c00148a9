package model

import "time"

// Contact statuses.
const (
    ContactUnread    = "unread"
    ContactPending   = "pending"
    ContactResponded = "responded"
    ContactClosed    = "closed"
)

// ValidContactStatus reports whether s is one of the known statuses.
func ValidContactStatus(s string) bool {
    switch s {
    case ContactUnread, ContactPending, ContactResponded, ContactClosed:
        return true
    }
    return false
}

// Contact is a message left through the public contact form.
type Contact struct {
    ID        uint64     `json:"id"`                   // contacts.id
    Name      string     `json:"name"`                 // contacts.name
    Email     string     `json:"email"`                // contacts.email
    Subject   string     `json:"subject"`              // contacts.subject
    Message   string     `json:"message"`              // contacts.message
    Status    string     `json:"status"`               // contacts.status
    Response  *string    `json:"response,omitempty"`   // contacts.response (nullable)
    CreatedAt time.Time  `json:"created_at"`           // contacts.created_at
    UpdatedAt *time.Time `json:"updated_at,omitempty"` // contacts.updated_at (nullable)
}
