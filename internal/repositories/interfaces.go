package repositories

import "errors"

var (
	// ErrNotFound is returned when a lookup by key matches no row
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique column would be violated
	ErrDuplicate = errors.New("duplicate record")
)

// QuestionFilters narrows question listings. Empty fields are ignored.
type QuestionFilters struct {
	Subject    string // case-insensitive exact match
	Topic      string // case-insensitive exact match
	Difficulty string
	Query      string // case-insensitive substring of the question text
	AuthorID   *uint
	Limit      int
}

// SubmissionFilters narrows submission listings, newest first.
type SubmissionFilters struct {
	StudentID  *uint
	QuestionID *uint
	Graded     *bool
	Limit      int
}

// RecordFilters narrows the flattened rows used for reporting.
type RecordFilters struct {
	GradedOnly bool
}
