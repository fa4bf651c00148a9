package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/inventory-pos/internal/apperr"
	"github.com/iliyamo/inventory-pos/internal/importfile"
	"github.com/iliyamo/inventory-pos/internal/model"
	"github.com/iliyamo/inventory-pos/internal/queue"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 100

	// finishTimeout bounds the final history write, which runs even after
	// the import's own context has expired.
	finishTimeout = 5 * time.Second

	rowTimedOut = "import timed out before this row was saved"
)

// ImportResult summarizes a finished import.
type ImportResult struct {
	ImportID       uint64                 `json:"import_id"`
	Message        string                 `json:"message"`
	TotalProcessed int                    `json:"total_processed"`
	Successful     int                    `json:"successful"`
	Failed         int                    `json:"failed"`
	Errors         []model.ImportRowError `json:"errors"`
}

// RowIssue lists every problem found in one row during validation.
type RowIssue struct {
	Row         int      `json:"row"`
	ProductName string   `json:"product_name"`
	Errors      []string `json:"errors"`
}

// ValidationReport is the outcome of a dry-run validation. Errors is
// either a message about missing columns or a list of RowIssue.
type ValidationReport struct {
	Valid     bool `json:"valid"`
	TotalRows *int `json:"total_rows,omitempty"`
	Errors    any  `json:"errors"`
}

// ImportService bulk-loads products from spreadsheets and keeps the
// import history.
type ImportService struct {
	products ProductStore
	history  ImportStore
	events   *emitter
	log      *zap.Logger
}

func NewImportService(products ProductStore, history ImportStore, pub EventPublisher, log *zap.Logger) *ImportService {
	return &ImportService{products: products, history: history, events: &emitter{pub: pub, log: log}, log: log}
}

// Wait blocks until events published by earlier imports have been sent.
func (s *ImportService) Wait() { s.events.Wait() }

// Import upserts every row of the file by product name. Rows are
// independent: a bad row is reported and the rest still load. Unsupported
// file types are rejected before anything is recorded.
func (s *ImportService) Import(ctx context.Context, filename string, body io.Reader, userID uint64) (ImportResult, error) {
	if _, err := importfile.FormatOf(filename); err != nil {
		return ImportResult{}, apperr.ErrUnsupportedFile
	}

	h := model.ImportHistory{Filename: filename, Status: model.ImportProcessing}
	if userID != 0 {
		h.UserID = &userID
	}
	if err := s.history.Create(ctx, &h); err != nil {
		return ImportResult{}, apperr.Store("create import history", err)
	}

	sheet, err := importfile.Read(filename, body)
	if err != nil {
		s.log.Warn("import file unreadable", zap.String("filename", filename), zap.Error(err))
		return ImportResult{}, s.failImport(ctx, &h, apperr.ErrUnreadableFile.Message)
	}
	if missing := sheet.Missing(importfile.RequiredColumns); len(missing) > 0 {
		return ImportResult{}, s.failImport(ctx, &h, "Missing required columns: "+strings.Join(missing, ", "))
	}

	withDescription := sheet.Has("description")
	rowErrors := make([]model.ImportRowError, 0)
	for i, row := range sheet.Rows {
		msg := rowTimedOut
		if ctx.Err() == nil {
			msg = s.importRow(ctx, row, withDescription)
		}
		if msg != "" {
			rowErrors = append(rowErrors, model.ImportRowError{
				Row:         importfile.RowNumber(i),
				ProductName: row["product_name"],
				Error:       msg,
			})
		}
	}

	total := len(sheet.Rows)
	h.Status = model.ImportCompleted
	h.TotalRows = total
	h.FailedRows = len(rowErrors)
	h.SuccessfulRows = total - len(rowErrors)
	h.Errors = rowErrors
	if err := s.finish(ctx, &h); err != nil {
		return ImportResult{}, apperr.Store("finish import history", err)
	}

	s.events.emit(queue.Event{
		Type:       queue.ImportCompleted,
		ImportID:   h.ID,
		UserID:     userID,
		Successful: h.SuccessfulRows,
		Failed:     h.FailedRows,
	})

	return ImportResult{
		ImportID:       h.ID,
		Message:        "Import completed",
		TotalProcessed: total,
		Successful:     h.SuccessfulRows,
		Failed:         h.FailedRows,
		Errors:         rowErrors,
	}, nil
}

// failImport records h as failed with msg and returns the client error.
func (s *ImportService) failImport(ctx context.Context, h *model.ImportHistory, msg string) error {
	h.Status = model.ImportFailed
	h.Errors = []model.ImportRowError{{Error: msg}}
	if err := s.finish(ctx, h); err != nil {
		return apperr.Store("finish import history", err)
	}
	return apperr.ErrUnreadableFile.
		WithMessage(msg).
		WithDetails(map[string]any{"import_id": h.ID})
}

// finish writes the final state of h. It detaches from ctx so a history
// row never stays processing because the request ran out of time.
func (s *ImportService) finish(ctx context.Context, h *model.ImportHistory) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finishTimeout)
	defer cancel()
	return s.history.Finish(ctx, h)
}

// importRow loads one row and returns the error text to report, or "".
func (s *ImportService) importRow(ctx context.Context, row map[string]string, withDescription bool) string {
	parsed, errs := importfile.ParseProductRow(row, withDescription)
	if len(errs) > 0 {
		return strings.Join(errs, "; ")
	}
	p := model.Product{
		Name:          parsed.Name,
		Price:         parsed.Price,
		SellingPrice:  parsed.SellingPrice,
		StockQuantity: parsed.StockQuantity,
		Description:   parsed.Description,
	}
	if _, err := s.products.UpsertByName(ctx, &p); err != nil {
		s.log.Error("import row failed", zap.String("product_name", parsed.Name), zap.Error(err))
		return "could not save product"
	}
	return ""
}

// Validate checks a file without writing anything.
func (s *ImportService) Validate(filename string, body io.Reader) (ValidationReport, error) {
	sheet, err := importfile.Read(filename, body)
	if err != nil {
		if errors.Is(err, importfile.ErrUnsupported) {
			return ValidationReport{}, apperr.ErrUnsupportedFile
		}
		s.log.Warn("import file unreadable", zap.String("filename", filename), zap.Error(err))
		return ValidationReport{}, apperr.ErrUnreadableFile
	}
	if missing := sheet.Missing(importfile.RequiredColumns); len(missing) > 0 {
		return ValidationReport{
			Valid:  false,
			Errors: "Missing required columns: " + strings.Join(missing, ", "),
		}, nil
	}

	issues := make([]RowIssue, 0)
	for i, row := range sheet.Rows {
		if errs := importfile.ValidateProductRow(row); len(errs) > 0 {
			issues = append(issues, RowIssue{Row: importfile.RowNumber(i), ProductName: row["product_name"], Errors: errs})
		}
	}
	total := len(sheet.Rows)
	return ValidationReport{Valid: len(issues) == 0, TotalRows: &total, Errors: issues}, nil
}

// Template returns a sample import file for kind "csv" or "excel".
func (s *ImportService) Template(kind string) ([]byte, string, error) {
	data, filename, err := importfile.Template(kind)
	if err != nil {
		if errors.Is(err, importfile.ErrUnsupported) {
			return nil, "", apperr.ErrInvalidTemplate
		}
		return nil, "", apperr.Store("build import template", err)
	}
	return data, filename, nil
}

// History pages through past imports, newest first.
func (s *ImportService) History(ctx context.Context, skip, limit int) ([]model.ImportHistory, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	items, err := s.history.List(ctx, skip, limit)
	if err != nil {
		return nil, apperr.Store("list import history", err)
	}
	return items, nil
}

func (s *ImportService) Get(ctx context.Context, id uint64) (model.ImportHistory, error) {
	h, err := s.history.GetByID(ctx, id)
	if err != nil {
		return model.ImportHistory{}, lookupErr("get import history", err, apperr.ErrImportNotFound)
	}
	return h, nil
}
