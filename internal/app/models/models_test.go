package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want RoleType
		ok   bool
	}{
		{in: "admin", want: RoleAdmin, ok: true},
		{in: " Instructor ", want: RoleInstructor, ok: true},
		{in: "STUDENT", want: RoleStudent, ok: true},
		{in: "tutor", ok: false},
		{in: "", ok: false},
	}
	for _, tt := range tests {
		got, ok := ParseRole(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.in)
		}
	}
}

func TestParseClassStatus(t *testing.T) {
	for _, in := range []string{"approved", "Approved", "APPROVED"} {
		st, ok := ParseClassStatus(in)
		assert.True(t, ok, in)
		assert.Equal(t, ClassStatusApproved, st)
	}

	_, ok := ParseClassStatus("archived")
	assert.False(t, ok)
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to ClassStatus
		want     bool
	}{
		{ClassStatusPending, ClassStatusApproved, true},
		{ClassStatusPending, ClassStatusDenied, true},
		{ClassStatusApproved, ClassStatusDenied, true},
		{ClassStatusDenied, ClassStatusApproved, true},
		{ClassStatusApproved, ClassStatusApproved, true},
		{ClassStatusPending, ClassStatusPending, true},
		{ClassStatusApproved, ClassStatusPending, false},
		{ClassStatusDenied, ClassStatusPending, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestArchived(t *testing.T) {
	assert.True(t, ClassStatusApproved.Archived())
	assert.True(t, ClassStatusDenied.Archived())
	assert.False(t, ClassStatusPending.Archived())
}
