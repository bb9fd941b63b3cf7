package student

import (
	"time"

	"github.com/uptrace/bun"
)

// Student is a record in the students collection. Subjects is never nil
// once stored.
type Student struct {
	bun.BaseModel `bun:"table:students,alias:s"`

	ID           string         `bun:"id,pk,type:uuid,nullzero,default:gen_random_uuid()" json:"id"`
	Name         string         `bun:"name,notnull" json:"name"`
	Age          int            `bun:"age,notnull" json:"age"`
	Subjects     []SubjectEntry `bun:"subjects,type:jsonb,notnull" json:"subjects"`
	DateEnrolled time.Time      `bun:"date_enrolled,notnull" json:"dateEnrolled"`
}

// SubjectEntry is a subject embedded in a student. Its ID is generated at
// write time and is independent of the subjects reference collection.
type SubjectEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Filter narrows List. Empty fields are ignored; set fields combine with AND.
type Filter struct {
	// Name matches case-insensitively anywhere in the student's name.
	Name string
	// Subject matches students having an embedded subject with this exact name.
	Subject string
}

// StudentRequest is the body accepted by create and replace.
type StudentRequest struct {
	Name         string   `json:"name" validate:"required"`
	Age          int      `json:"age" validate:"required"`
	Subjects     []string `json:"subjects" validate:"required"`
	DateEnrolled string   `json:"dateEnrolled"`
}
