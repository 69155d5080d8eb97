package workflow

import (
	"errors"
	"fmt"
)

// ErrDuplicateReport is returned when a time report id has already been
// ingested. Replays are rejected before any row is read.
var ErrDuplicateReport = errors.New("Source file already processed")

// NamingError reports a source filename that does not follow the expected
// time-report-{id}.csv pattern. Recoverable by resubmitting under a fixed name.
type NamingError struct {
	FileName string
}

func (e *NamingError) Error() string {
	return fmt.Sprintf("invalid report filename %q: name must match time-report-{id}.csv", e.FileName)
}

// RowParseError reports a malformed CSV data row. It aborts the whole
// ingestion; the transaction rolls back and nothing of the batch survives.
type RowParseError struct {
	Line int
	Err  error
}

func (e *RowParseError) Error() string {
	return fmt.Sprintf("malformed row at line %d: %v", e.Line, e.Err)
}

func (e *RowParseError) Unwrap() error {
	return e.Err
}

// UnknownJobGroupError aborts report generation when a stored job group has no
// configured hourly rate. A partial payroll report is worse than none.
type UnknownJobGroupError struct {
	JobGroup string
}

func (e *UnknownJobGroupError) Error() string {
	return fmt.Sprintf("no hourly rate configured for job group %q", e.JobGroup)
}
