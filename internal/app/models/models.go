package models

import "strings"

// RoleType defines the user role type
type RoleType string

const (
	RoleStudent    RoleType = "STUDENT"
	RoleInstructor RoleType = "INSTRUCTOR"
	RoleAdmin      RoleType = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r RoleType) Valid() bool {
	switch r {
	case RoleStudent, RoleInstructor, RoleAdmin:
		return true
	}
	return false
}

// ParseRole accepts the lowercase spelling the web client sends ("admin", "instructor").
func ParseRole(s string) (RoleType, bool) {
	r := RoleType(strings.ToUpper(strings.TrimSpace(s)))
	return r, r.Valid()
}

// ClassStatus is the review state of a class submission.
type ClassStatus string

const (
	ClassStatusPending  ClassStatus = "PENDING"
	ClassStatusApproved ClassStatus = "APPROVED"
	ClassStatusDenied   ClassStatus = "DENIED"
)

// ParseClassStatus accepts "approved", "Approved" or "APPROVED".
func ParseClassStatus(s string) (ClassStatus, bool) {
	st := ClassStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case ClassStatusPending, ClassStatusApproved, ClassStatusDenied:
		return st, true
	}
	return "", false
}

// Archived reports whether reaching this status copies the class into an archive.
func (s ClassStatus) Archived() bool {
	return s == ClassStatusApproved || s == ClassStatusDenied
}

// CanTransition reports whether a class may move from one status to another.
// Nothing moves back to pending; every other assignment is allowed and only
// archives when the stored value actually changes.
func CanTransition(from, to ClassStatus) bool {
	if to == ClassStatusPending {
		return from == ClassStatusPending
	}
	return to.Archived()
}
