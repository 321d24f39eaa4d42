package validation

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Common validation errors
var (
	ErrInvalidUUID = fmt.Errorf("invalid UUID format")
	ErrEmptySlice  = fmt.Errorf("slice cannot be empty")
)

// AllocationTolerance is the rounding slack allowed when checking that
// profit-target allocation percents sum to 100.
const AllocationTolerance = 0.001

// ValidateUUID checks if a string is a valid UUID
func ValidateUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidUUID, id)
	}
	return nil
}

// ValidateUUIDs validates a slice of UUIDs
func ValidateUUIDs(ids []string) error {
	if len(ids) == 0 {
		return ErrEmptySlice
	}
	for _, id := range ids {
		if err := ValidateUUID(id); err != nil {
			return err
		}
	}
	return nil
}

// ParseDate parses a date in the "2006-01-02" wire format.
func ParseDate(str string) (time.Time, error) {
	return time.Parse("2006-01-02", str)
}

// AllocationsSumTo100 reports whether the given allocation percents sum to
// 100 within the rounding tolerance.
func AllocationsSumTo100(percents []float64) bool {
	var sum float64
	for _, p := range percents {
		sum += p
	}
	return sum > 100-AllocationTolerance && sum < 100+AllocationTolerance
}
