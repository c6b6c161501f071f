package course

import (
	"fmt"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type CourseType string

const (
	TypeTheory CourseType = "Theory"
	TypeLab    CourseType = "Lab"
)

var titleCaser = cases.Title(language.English)

// ParseType converts user input ("lab", " THEORY ") into a CourseType.
func ParseType(s string) (CourseType, error) {
	t := CourseType(titleCaser.String(strings.TrimSpace(s)))
	if err := t.Validate(); err != nil {
		return "", err
	}
	return t, nil
}

func (CourseType) Schema(huma.Registry) *huma.Schema {
	return &huma.Schema{
		Type: "string",
		Enum: []any{
			string(TypeTheory),
			string(TypeLab),
		},
		Description: "Course type",
		Examples:    []any{TypeTheory},
	}
}

// Validate реализует интерфейс huma.Validatable.
func (t CourseType) Validate() error {
	switch t {
	case TypeTheory, TypeLab:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidType, string(t))
}

// String возвращает строковое представление типа.
func (t CourseType) String() string {
	return string(t)
}

// DisplayName возвращает человекочитаемое название типа.
func (t CourseType) DisplayName() string {
	switch t {
	case TypeTheory:
		return "Theory course"
	case TypeLab:
		return "Laboratory course"
	default:
		return "Unknown type"
	}
}
