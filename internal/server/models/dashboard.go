package models

// DashboardSummary aggregates a doctor's appointments and billing.
// TotalCollection is the sum of bill amounts in minor currency units.
type DashboardSummary struct {
	Appointments    int64 `json:"appointments"`
	TotalCollection int64 `json:"totalCollection"`
}
