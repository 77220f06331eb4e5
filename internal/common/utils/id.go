// Package utils provides small helpers shared across the proxy.
//
// Features:
//   - Request ID generation for log correlation
//   - Extended duration parsing (days, weeks)
//   - Date bound parsing for CRM search filters
//   - Identifier sanitization
package utils

import (
	"github.com/google/uuid"
)

// GenerateRequestID generates a unique request ID for tracing and correlation.
//
// Returns a random UUID v4 string in the format
// "xxxxxxxx-xxxx-4xxx-yxxx-xxxxxxxxxxxx".
func GenerateRequestID() string {
	return uuid.NewString()
}

// IsRequestID reports whether s is a request ID generated by this package
// or an equivalent UUID supplied by a caller.
func IsRequestID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
