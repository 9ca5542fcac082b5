package utils

import (
	"fmt"
	"strings"
)

func Ptr[T any](v T) *T {
	return &v
}

// FormatOr prints *v with %v, or returns fallback when v is nil.
func FormatOr[T any](v *T, fallback string) string {
	if v == nil {
		return fallback
	}
	return fmt.Sprint(*v)
}

// Returns nil on an empty or all whitespace string
func StringOrNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// FirstNonBlank returns the first value that is not empty after trimming.
func FirstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
