package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/inventory-pos/internal/model"
)

const contactColumns = "id, name, email, subject, message, status, response, created_at, updated_at"

type ContactRepo struct{ DB *sql.DB }

func NewContactRepo(db *sql.DB) *ContactRepo { return &ContactRepo{DB: db} }

func scanContact(row rowScanner) (model.Contact, error) {
	var (
		c        model.Contact
		response sql.NullString
		updated  sql.NullTime
	)
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Subject, &c.Message, &c.Status, &response, &c.CreatedAt, &updated)
	if err != nil {
		return model.Contact{}, mapErr(err)
	}
	c.Response = stringPtr(response)
	if updated.Valid {
		t := updated.Time
		c.UpdatedAt = &t
	}
	return c, nil
}

// Create stores a new message with status unread.
func (r *ContactRepo) Create(ctx context.Context, c *model.Contact) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO contacts (name, email, subject, message, status) VALUES (?,?,?,?,?)",
		c.Name, c.Email, c.Subject, c.Message, model.ContactUnread)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*c = created
	return nil
}

func (r *ContactRepo) GetByID(ctx context.Context, id uint64) (model.Contact, error) {
	return scanContact(r.DB.QueryRowContext(ctx, "SELECT "+contactColumns+" FROM contacts WHERE id=?", id))
}

// List returns all messages, newest first.
func (r *ContactRepo) List(ctx context.Context) ([]model.Contact, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+contactColumns+" FROM contacts ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := make([]model.Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// Reply stores the response text and closes the message.
func (r *ContactRepo) Reply(ctx context.Context, id uint64, response string) error {
	return r.exec(ctx, id, "UPDATE contacts SET response=?, status=?, updated_at=UTC_TIMESTAMP() WHERE id=?",
		response, model.ContactClosed, id)
}

func (r *ContactRepo) SetStatus(ctx context.Context, id uint64, status string) error {
	return r.exec(ctx, id, "UPDATE contacts SET status=?, updated_at=UTC_TIMESTAMP() WHERE id=?", status, id)
}

func (r *ContactRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM contacts WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// exec runs a single-row update. MySQL reports zero affected rows when the
// values did not change, so a miss is confirmed with a lookup.
func (r *ContactRepo) exec(ctx context.Context, id uint64, q string, args ...any) error {
	res, err := r.DB.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	var exists bool
	if err := r.DB.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM contacts WHERE id=?)", id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}
