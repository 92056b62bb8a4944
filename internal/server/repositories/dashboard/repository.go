// Package dashboard aggregates the per-doctor practice figures shown on the
// dashboard.
package dashboard

import "context"

// Repository reads aggregates for a single doctor.
type Repository interface {
	CountAppointments(ctx context.Context, doctorID string) (int64, error)
	// SumBills returns the total billed amount in minor units, 0 when
	// there are no bills.
	SumBills(ctx context.Context, doctorID string) (int64, error)
}
