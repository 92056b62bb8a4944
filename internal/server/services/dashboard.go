package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/clinicdesk/internal/common"
	"github.com/dmitrijs2005/clinicdesk/internal/dbx"
	"github.com/dmitrijs2005/clinicdesk/internal/server/auth"
	"github.com/dmitrijs2005/clinicdesk/internal/server/models"
	"github.com/dmitrijs2005/clinicdesk/internal/server/repositories/repomanager"
)

type DashboardService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewDashboardService(db *sql.DB, m repomanager.RepositoryManager) *DashboardService {
	return &DashboardService{db: db, repomanager: m}
}

// Summary reads the caller's appointment count and billed total in one
// transaction.
func (s *DashboardService) Summary(ctx context.Context, id auth.Identity) (*models.DashboardSummary, error) {
	if id.ID == "" {
		return nil, common.ErrUnauthenticated
	}

	summary := &models.DashboardSummary{}
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Dashboard(tx)

		n, err := repo.CountAppointments(ctx, id.ID)
		if err != nil {
			return fmt.Errorf("error counting appointments: %w", err)
		}
		total, err := repo.SumBills(ctx, id.ID)
		if err != nil {
			return fmt.Errorf("error summing bills: %w", err)
		}

		summary.Appointments = n
		summary.TotalCollection = total
		return nil
	})
	if err != nil {
		return nil, err
	}

	return summary, nil
}
