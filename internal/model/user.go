package model

import "time"

// User represents an application user record as stored in the
// `users` table.  Email is always stored lower-cased so lookups
// can be case-insensitive without a functional index.  The
// password hash is never serialised to clients.
//
// Fields:
//  ID           – primary key identifier of the user.
//  FirstName    – given name, trimmed on write.
//  LastName     – family name, trimmed on write.
//  Email        – unique, lower-cased email address.
//  Phone        – contact phone number.
//  PasswordHash – bcrypt digest of the password.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64    `json:"id"`         // users.id
    FirstName    string    `json:"first_name"` // users.first_name
    LastName     string    `json:"last_name"`  // users.last_name
    Email        string    `json:"email"`      // users.email
    Phone        string    `json:"phone"`      // users.phone
    PasswordHash string    `json:"-"`          // users.password_hash
    CreatedAt    time.Time `json:"created_at"` // users.created_at
    UpdatedAt    time.Time `json:"updated_at"` // users.updated_at
}
