package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/inventory-pos/internal/model"
)

const vendorColumns = "id, name, contact_person, email, phone, address, created_at, updated_at"

type VendorRepo struct{ DB *sql.DB }

func NewVendorRepo(db *sql.DB) *VendorRepo { return &VendorRepo{DB: db} }

func scanVendor(row rowScanner) (model.Vendor, error) {
	var (
		v       model.Vendor
		contact sql.NullString
		phone   sql.NullString
		address sql.NullString
	)
	err := row.Scan(&v.ID, &v.Name, &contact, &v.Email, &phone, &address, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return model.Vendor{}, mapErr(err)
	}
	v.ContactPerson = stringPtr(contact)
	v.Phone = stringPtr(phone)
	v.Address = stringPtr(address)
	return v, nil
}

// Create inserts v; a taken email yields ErrDuplicate.
func (r *VendorRepo) Create(ctx context.Context, v *model.Vendor) error {
	v.Email = strings.ToLower(strings.TrimSpace(v.Email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO vendors (name, contact_person, email, phone, address) VALUES (?,?,?,?,?)",
		v.Name, nullString(v.ContactPerson), v.Email, nullString(v.Phone), nullString(v.Address))
	if err != nil {
		return mapErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*v = created
	return nil
}

func (r *VendorRepo) GetByID(ctx context.Context, id uint64) (model.Vendor, error) {
	return scanVendor(r.DB.QueryRowContext(ctx, "SELECT "+vendorColumns+" FROM vendors WHERE id=?", id))
}

func (r *VendorRepo) List(ctx context.Context) ([]model.Vendor, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+vendorColumns+" FROM vendors ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	vendors := make([]model.Vendor, 0)
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, err
		}
		vendors = append(vendors, v)
	}
	return vendors, rows.Err()
}

func (r *VendorRepo) Update(ctx context.Context, v *model.Vendor) error {
	v.Email = strings.ToLower(strings.TrimSpace(v.Email))
	_, err := r.DB.ExecContext(ctx,
		"UPDATE vendors SET name=?, contact_person=?, email=?, phone=?, address=? WHERE id=?",
		v.Name, nullString(v.ContactPerson), v.Email, nullString(v.Phone), nullString(v.Address), v.ID)
	return mapErr(err)
}

// Delete removes a vendor. Its products keep existing with vendor_id
// cleared by the foreign key.
func (r *VendorRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM vendors WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *VendorRepo) EmailTaken(ctx context.Context, email string, exceptID uint64) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM vendors WHERE email=? AND id<>?)",
		strings.ToLower(strings.TrimSpace(email)), exceptID).Scan(&exists)
	return exists, err
}
