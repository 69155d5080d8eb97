package workflow

import (
	"errors"
	"testing"
)

func TestResolveReportID(t *testing.T) {
	cases := []struct {
		fileName string
		expected int
	}{
		{"time-report-42.csv", 42},
		{"time-report-58.abc", 58},
		{"time-report-7", 7},
		{"time-report-0.csv", 0},
	}
	for _, tc := range cases {
		id, err := ResolveReportID(tc.fileName)
		if err != nil {
			t.Fatalf("ResolveReportID(%q) error: %v", tc.fileName, err)
		}
		if id != tc.expected {
			t.Fatalf("ResolveReportID(%q) expected %d, got %d", tc.fileName, tc.expected, id)
		}
	}
}

func TestResolveReportID_RejectsBadNames(t *testing.T) {
	cases := []string{
		"time-report-42-41.csv",
		"report-time-42.csv",
		"random.name",
		"time-report-abc.csv",
		"time-report-.csv",
		"",
	}
	for _, fileName := range cases {
		_, err := ResolveReportID(fileName)
		if err == nil {
			t.Fatalf("ResolveReportID(%q) expected error, got none", fileName)
		}
		var namingErr *NamingError
		if !errors.As(err, &namingErr) {
			t.Fatalf("ResolveReportID(%q) expected *NamingError, got %T", fileName, err)
		}
	}
}
