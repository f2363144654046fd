package util

import (
	"strconv"
)

const RequestIDKey = "request_id"

// ParseUintOrZero converts a string to an unsigned integer, returning 0 on
// parse failure. Callers treat 0 as "absent or invalid".
func ParseUintOrZero(s string) uint {
	id, _ := strconv.ParseUint(s, 10, 32)
	return uint(id)
}
