package dto

// FinalizePaymentRequest is the body of POST /payments. Amount defaults to the
// enrollment price when omitted.
type FinalizePaymentRequest struct {
	EnrollmentID  string `json:"enrollmentId" binding:"required,uuid"`
	TransactionID string `json:"transactionId" binding:"max=255"`
	Amount        *int64 `json:"amount" binding:"omitempty,min=0"`
	Currency      string `json:"currency" binding:"omitempty,len=3"`
}

// PaymentIntentRequest is the body of POST /payments/intent.
type PaymentIntentRequest struct {
	EnrollmentID string `json:"enrollmentId" binding:"required,uuid"`
}
