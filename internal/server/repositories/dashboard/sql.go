package dashboard

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/clinicdesk/internal/dbx"
)

// SQLRepository runs the aggregates with the placeholder style of the
// underlying driver.
type SQLRepository struct {
	db          dbx.DBTX
	placeholder string
}

// NewPostgresRepository binds the repository to a pgx-backed handle.
func NewPostgresRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db, placeholder: "$1"}
}

// NewSQLiteRepository binds the repository to a sqlite-backed handle.
func NewSQLiteRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db, placeholder: "?"}
}

func (r *SQLRepository) CountAppointments(ctx context.Context, doctorID string) (int64, error) {
	query := `SELECT COUNT(*) FROM appointments WHERE doctor_id = ` + r.placeholder

	var n int64
	if err := r.db.QueryRowContext(ctx, query, doctorID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *SQLRepository) SumBills(ctx context.Context, doctorID string) (int64, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM bills WHERE doctor_id = ` + r.placeholder

	var total int64
	if err := r.db.QueryRowContext(ctx, query, doctorID).Scan(&total); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return total, nil
}
