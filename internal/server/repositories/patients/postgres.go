// Package patients provides the patient registry repositories.
package patients

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/clinicdesk/internal/dbx"
	"github.com/dmitrijs2005/clinicdesk/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Patient) (*models.Patient, error) {
	query :=
		`INSERT INTO patients (id, doctor_id, full_name, phone, age, gender, address, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.DoctorID, p.FullName, p.Phone, p.Age, p.Gender, nullString(p.Address), p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

func (r *PostgresRepository) ListByDoctor(ctx context.Context, doctorID string) ([]*models.Patient, error) {
	query :=
		`SELECT id, doctor_id, full_name, phone, age, gender, address, created_at FROM patients
		 WHERE doctor_id = $1
		 ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Patient, 0)
	for rows.Next() {
		var (
			p       models.Patient
			address sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.DoctorID, &p.FullName, &p.Phone, &p.Age, &p.Gender, &address, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		p.Address = stringPtr(address)
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
