package utils

import "strings"

// DigitsOnly drops every character that is not an ASCII digit.
//
// CRM object IDs are numeric, so "abc123" becomes "123" and "abc" becomes "".
func DigitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
