package helpers

import "strings"

// NormalizeEmail lowercases and trims an email so it can be used as a lookup key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
