package models

import "time"

// Enrollment is a reserved seat that has not been paid for yet.
type Enrollment struct {
	ID         string    `json:"id" db:"id"`
	ClassID    string    `json:"classId" db:"class_id"`
	Email      string    `json:"email" db:"email"`
	ClassTitle string    `json:"classTitle" db:"class_title"`
	Price      int64     `json:"price" db:"price"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// EnrollmentDetails is what a caller supplies when reserving a seat.
type EnrollmentDetails struct {
	Email string
}
