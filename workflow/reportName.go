package workflow

import (
	"strconv"
	"strings"
)

// ResolveReportID extracts the report id from a source filename. The basename
// before the first "." must split on "-" into exactly "time", "report" and an
// integer id. The extension itself is never checked, so time-report-58.abc
// resolves to 58.
func ResolveReportID(fileName string) (int, error) {
	base := fileName
	if dot := strings.Index(base, "."); dot >= 0 {
		base = base[:dot]
	}

	parts := strings.Split(base, "-")
	if len(parts) != 3 || parts[0] != "time" || parts[1] != "report" {
		return 0, &NamingError{FileName: fileName}
	}
	id, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0, &NamingError{FileName: fileName}
	}
	return id, nil
}
