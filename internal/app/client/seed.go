package client

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"coursekeeper/internal/domain/course"
)

// SeedFile is the YAML layout accepted by Import:
//
//	courses:
//	  - courseName: Linear Algebra
//	    courseCode: MATH201
//	    creditHours: 3
//	    courseType: theory
type SeedFile struct {
	Courses []SeedCourse `yaml:"courses"`
}

type SeedCourse struct {
	Name        string `yaml:"courseName"`
	Code        string `yaml:"courseCode"`
	CreditHours int    `yaml:"creditHours"`
	Type        string `yaml:"courseType"`
}

// ImportResult lists created keys and the entries that failed, by position.
type ImportResult struct {
	Created []string
	Failed  map[int]error
}

// ParseSeed decodes a seed file. Unknown fields are rejected.
func ParseSeed(r io.Reader) ([]course.Course, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var seed SeedFile
	if err := dec.Decode(&seed); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("parse seed: %w", err)
	}

	courses := make([]course.Course, 0, len(seed.Courses))
	for _, sc := range seed.Courses {
		typ, err := course.ParseType(sc.Type)
		if err != nil {
			// left as is, Create reports it as a validation failure
			typ = course.CourseType(sc.Type)
		}
		courses = append(courses, course.Course{
			Name:        sc.Name,
			Code:        sc.Code,
			CreditHours: sc.CreditHours,
			Type:        typ,
		})
	}
	return courses, nil
}

// Import creates every course of the seed file. Invalid entries are reported
// in the result and do not stop the rest.
func (a *App) Import(ctx context.Context, r io.Reader) (ImportResult, error) {
	courses, err := ParseSeed(r)
	if err != nil {
		return ImportResult{}, err
	}

	res := ImportResult{Failed: make(map[int]error)}
	for i, c := range courses {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		id, err := a.repo.Create(ctx, c)
		if err != nil {
			if errors.Is(err, course.ErrValidation) {
				res.Failed[i] = err
				continue
			}
			return res, fmt.Errorf("import course %d: %w", i+1, err)
		}
		res.Created = append(res.Created, id)
	}

	a.log.Info("seed imported", "created", len(res.Created), "failed", len(res.Failed))
	return res, nil
}
