package subject

import (
	"fmt"

	"github.com/akkm9120/sctp02-crud-mongo/internal/store"

	"github.com/uptrace/bun"
)

var ErrSubjectNotFound = fmt.Errorf("subject %w", store.ErrNotFound)

// Subject is an entry in the subjects reference collection. It is not
// linked to the subject entries embedded in students.
type Subject struct {
	bun.BaseModel `bun:"table:subjects,alias:sub"`

	ID          string `bun:"id,pk,type:uuid,nullzero,default:gen_random_uuid()" json:"id"`
	SubjectName string `bun:"subject_name,notnull" json:"subjectName"`
}
