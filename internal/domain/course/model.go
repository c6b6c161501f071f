package course

import (
	"fmt"
	"time"
)

// Course is one course entry of the collection.
//
// ID is empty until the record is persisted; after that it always equals the
// store key the record lives under.
type Course struct {
	ID          string     `json:"id" mapstructure:"id"`
	Name        string     `json:"courseName" mapstructure:"courseName"`
	Code        string     `json:"courseCode" mapstructure:"courseCode"`
	CreditHours int        `json:"creditHours" mapstructure:"creditHours"`
	Type        CourseType `json:"courseType" mapstructure:"courseType"`
	Timestamp   int64      `json:"timestamp" mapstructure:"timestamp"`
}

// SameIdentity reports whether c and other describe the same entity.
func (c Course) SameIdentity(other Course) bool {
	return c.ID == other.ID
}

// Equal reports content equality over every field, ID included.
func (c Course) Equal(other Course) bool {
	return c == other
}

// IsTransient reports whether the course was never persisted.
func (c Course) IsTransient() bool {
	return c.ID == ""
}

// CreatedAt returns Timestamp as time.Time.
func (c Course) CreatedAt() time.Time {
	return time.UnixMilli(c.Timestamp)
}

func (c Course) String() string {
	return fmt.Sprintf("Course{id=%q, name=%q, code=%q, creditHours=%d, type=%q, timestamp=%d}",
		c.ID, c.Name, c.Code, c.CreditHours, c.Type, c.Timestamp)
}

// Lookup is the result of a point read. Absence is not an error.
type Lookup struct {
	Course Course
	Found  bool
}

// Found wraps an existing course.
func Found(c Course) Lookup {
	return Lookup{Course: c, Found: true}
}

// Absent is the lookup result for a missing key.
func Absent() Lookup {
	return Lookup{}
}
