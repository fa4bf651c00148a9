package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/iliyamo/inventory-pos/internal/model"
)

const importColumns = "id, filename, status, total_rows, successful_rows, failed_rows, errors, created_at, completed_at, user_id"

type ImportHistoryRepo struct{ DB *sql.DB }

func NewImportHistoryRepo(db *sql.DB) *ImportHistoryRepo { return &ImportHistoryRepo{DB: db} }

func scanImport(row rowScanner) (model.ImportHistory, error) {
	var (
		h         model.ImportHistory
		errs      []byte
		completed sql.NullTime
		user      sql.NullInt64
	)
	err := row.Scan(&h.ID, &h.Filename, &h.Status, &h.TotalRows, &h.SuccessfulRows, &h.FailedRows,
		&errs, &h.CreatedAt, &completed, &user)
	if err != nil {
		return model.ImportHistory{}, mapErr(err)
	}
	h.Errors = []model.ImportRowError{}
	if len(errs) > 0 {
		if err := json.Unmarshal(errs, &h.Errors); err != nil {
			return model.ImportHistory{}, err
		}
	}
	if completed.Valid {
		t := completed.Time
		h.CompletedAt = &t
	}
	h.UserID = uintPtr(user)
	return h, nil
}

// Create records an import in the processing state.
func (r *ImportHistoryRepo) Create(ctx context.Context, h *model.ImportHistory) error {
	if h.Status == "" {
		h.Status = model.ImportProcessing
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO import_history (filename, status, user_id) VALUES (?,?,?)",
		h.Filename, h.Status, nullUint(h.UserID))
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
	*h = created
	return nil
}

// Finish stores the final counters, row errors and status of an import.
func (r *ImportHistoryRepo) Finish(ctx context.Context, h *model.ImportHistory) error {
	errs := h.Errors
	if errs == nil {
		errs = []model.ImportRowError{}
	}
	raw, err := json.Marshal(errs)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = r.DB.ExecContext(ctx,
		`UPDATE import_history SET status=?, total_rows=?, successful_rows=?, failed_rows=?, errors=?, completed_at=?
		 WHERE id=?`,
		h.Status, h.TotalRows, h.SuccessfulRows, h.FailedRows, string(raw), now, h.ID)
	if err != nil {
		return err
	}
	h.CompletedAt = &now
	return nil
}

func (r *ImportHistoryRepo) GetByID(ctx context.Context, id uint64) (model.ImportHistory, error) {
	return scanImport(r.DB.QueryRowContext(ctx, "SELECT "+importColumns+" FROM import_history WHERE id=?", id))
}

// List pages through imports, newest first.
func (r *ImportHistoryRepo) List(ctx context.Context, skip, limit int) ([]model.ImportHistory, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+importColumns+" FROM import_history ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.ImportHistory, 0)
	for rows.Next() {
		h, err := scanImport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
