package validation

import (
	"fmt"
	"strings"
	"time"
)

// ValidateDrinkDate checks the YYYY-MM-DD format of a tasting date
func ValidateDrinkDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("drink date cannot be empty")
	}
	if _, err := time.Parse(time.DateOnly, s); err != nil {
		return fmt.Errorf("drink date must be YYYY-MM-DD")
	}
	return nil
}

// ValidateRequired checks that a required text field is not blank
func ValidateRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s cannot be empty", field)
	}
	return nil
}

// ValidateRating checks a 1-5 star rating
func ValidateRating(v int) error {
	if v < 1 || v > 5 {
		return fmt.Errorf("rating must be between 1 and 5")
	}
	return nil
}
