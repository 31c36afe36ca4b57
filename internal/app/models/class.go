package models

import "time"

// Class is an art class offering: both the catalog entry students enroll in
// and the submission instructors send for review.
type Class struct {
	ID              string      `json:"id" db:"id"`
	Title           string      `json:"title" db:"title"`
	Description     string      `json:"description,omitempty" db:"description"`
	ImageURL        string      `json:"imageUrl,omitempty" db:"image_url"`
	InstructorName  string      `json:"instructorName" db:"instructor_name"`
	InstructorEmail string      `json:"instructorEmail" db:"instructor_email"`
	Price           int64       `json:"price" db:"price"` // cents
	SeatsAvailable  int         `json:"seatsAvailable" db:"seats_available"`
	Status          ClassStatus `json:"status" db:"status"`
	Feedback        *string     `json:"feedback,omitempty" db:"feedback"`
	CreatedAt       time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time   `json:"updatedAt" db:"updated_at"`
}

// ArchivedClass is a snapshot of a class taken when its review was finalized.
type ArchivedClass struct {
	ID         string      `json:"id" db:"id"`
	ClassID    string      `json:"classId" db:"class_id"`
	Status     ClassStatus `json:"status" db:"status"`
	Snapshot   Class       `json:"class"`
	ArchivedAt time.Time   `json:"archivedAt" db:"archived_at"`
}

// SubmissionFilter narrows ListSubmissions.
type SubmissionFilter struct {
	InstructorEmail string
	Status          ClassStatus
}

// ClassDetails is what an instructor supplies when submitting a class.
type ClassDetails struct {
	Title          string
	Description    string
	ImageURL       string
	InstructorName string
	Price          int64
	SeatsAvailable int
}
