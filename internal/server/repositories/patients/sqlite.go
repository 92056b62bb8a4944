package patients

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/clinicdesk/internal/dbx"
	"github.com/dmitrijs2005/clinicdesk/internal/server/models"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, p *models.Patient) (*models.Patient, error) {
	query :=
		`INSERT INTO patients (id, doctor_id, full_name, phone, age, gender, address, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.DoctorID, p.FullName, p.Phone, p.Age, p.Gender, nullString(p.Address), dbx.ToMillis(p.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

func (r *SQLiteRepository) ListByDoctor(ctx context.Context, doctorID string) ([]*models.Patient, error) {
	query :=
		`SELECT id, doctor_id, full_name, phone, age, gender, address, created_at FROM patients
		 WHERE doctor_id = ?
		 ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Patient, 0)
	for rows.Next() {
		var (
			p         models.Patient
			address   sql.NullString
			createdAt int64
		)
		if err := rows.Scan(&p.ID, &p.DoctorID, &p.FullName, &p.Phone, &p.Age, &p.Gender, &address, &createdAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		p.Address = stringPtr(address)
		p.CreatedAt = dbx.FromMillis(createdAt)
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
