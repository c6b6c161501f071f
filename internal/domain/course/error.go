package course

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("invalid course")
	ErrNotFound   = errors.New("course not found")
	ErrTransport  = errors.New("store operation failed")
	ErrCancelled  = errors.New("subscription cancelled")
	ErrDecode     = errors.New("course decode failed")
)

var (
	ErrBlankName      = fmt.Errorf("%w: course name cannot be empty", ErrValidation)
	ErrBlankCode      = fmt.Errorf("%w: course code cannot be empty", ErrValidation)
	ErrInvalidCredits = fmt.Errorf("%w: credit hours must be greater than 0", ErrValidation)
	ErrInvalidType    = fmt.Errorf("%w: course type must be Theory or Lab", ErrValidation)
	ErrEmptyID        = fmt.Errorf("%w: course id cannot be empty", ErrValidation)
)
