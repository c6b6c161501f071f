package course

import (
	"fmt"
	"strings"

	"coursekeeper/internal/store"
)

// Validate checks the fields a course must carry before it is written.
// Rules run in a fixed order and the first failing one is reported.
func Validate(c Course) error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrBlankName
	}
	if strings.TrimSpace(c.Code) == "" {
		return ErrBlankCode
	}
	if c.CreditHours <= 0 {
		return ErrInvalidCredits
	}
	return c.Type.Validate()
}

// ValidateForUpdate additionally requires a usable id.
func ValidateForUpdate(c Course) error {
	if err := validateID(c.ID); err != nil {
		return err
	}
	return Validate(c)
}

func validateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrEmptyID
	}
	if err := store.ValidateKey(id); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}
