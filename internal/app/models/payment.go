package models

import "time"

// Payment finalizes an enrollment. ClassID and ClassTitle are copied from the
// enrollment so paid classes can be listed after the enrollment is removed.
type Payment struct {
	ID            string    `json:"id" db:"id"`
	Email         string    `json:"email" db:"email"`
	Amount        int64     `json:"amount" db:"amount"`
	Currency      string    `json:"currency" db:"currency"`
	EnrollmentID  string    `json:"enrollmentId" db:"enrollment_id"`
	ClassID       string    `json:"classId,omitempty" db:"class_id"`
	ClassTitle    string    `json:"classTitle,omitempty" db:"class_title"`
	TransactionID string    `json:"transactionId,omitempty" db:"transaction_id"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

// PaymentResult reports both halves of FinalizePayment.
type PaymentResult struct {
	Payment             *Payment `json:"payment"`
	DeletedEnrollmentID string   `json:"deletedEnrollmentId"`
	EnrollmentDeleted   bool     `json:"enrollmentDeleted"`
}

// PaymentIntent is what the payment provider hands back to the client.
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// PaymentDetails is what a caller supplies to FinalizePayment.
type PaymentDetails struct {
	EnrollmentID  string
	Email         string
	TransactionID string
	Amount        *int64
	Currency      string
}
