package models

import "time"

// Patient belongs to exactly one doctor through DoctorID.
type Patient struct {
	ID        string    `json:"id"`
	DoctorID  string    `json:"doctorId"`
	FullName  string    `json:"fullName"`
	Phone     string    `json:"phone"`
	Age       int       `json:"age"`
	Gender    string    `json:"gender"`
	Address   *string   `json:"address,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
