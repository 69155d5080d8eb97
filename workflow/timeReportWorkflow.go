package workflow

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bitbucket.org/mmdatafocus/payroll_backend/config"
	"bitbucket.org/mmdatafocus/payroll_backend/models"
)

// Work dates arrive as DD/MM/YYYY.
const workDateLayout = "02/01/2006"

func isDuplicateKeyErr(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// ProcessTimeReport ingests one CSV time report. The report id comes from the
// filename; a previously ingested id fails before any row is read. The report
// record, every employee created on first sight and every work unit commit in
// a single transaction, so a failure anywhere past the duplicate check leaves
// no partial state behind.
func ProcessTimeReport(db *gorm.DB, logger *logrus.Logger, fileName string, source io.Reader) (reportId int, rows int, err error) {
	reportId, err = ResolveReportID(fileName)
	if err != nil {
		return 0, 0, err
	}

	var existing models.TimeReport
	lookupErr := db.Where("id = ?", reportId).First(&existing).Error
	if lookupErr == nil {
		return reportId, 0, ErrDuplicateReport
	}
	if !errors.Is(lookupErr, gorm.ErrRecordNotFound) {
		config.LogError(logger, "timeReportWorkflow.go", "ProcessTimeReport", "lookup report", reportId, lookupErr)
		return reportId, 0, lookupErr
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if createErr := tx.Create(&models.TimeReport{ID: reportId}).Error; createErr != nil {
			return createErr
		}

		reader := csv.NewReader(source)
		// Field count is validated per row so the error can name the line.
		reader.FieldsPerRecord = -1

		seen := make(map[int]struct{})
		line := 0
		for {
			record, readErr := reader.Read()
			if readErr == io.EOF {
				break
			}
			if readErr != nil {
				return &RowParseError{Line: line + 1, Err: readErr}
			}
			line++
			if line == 1 {
				// Header row, discarded without validation.
				continue
			}

			unit, jobGroup, rowErr := parseWorkRow(record, line)
			if rowErr != nil {
				return rowErr
			}

			if _, ok := seen[unit.EmployeeId]; !ok {
				if upsertErr := ensureEmployee(tx, unit.EmployeeId, jobGroup); upsertErr != nil {
					return upsertErr
				}
				seen[unit.EmployeeId] = struct{}{}
			}

			unit.TimeReportId = reportId
			if createErr := tx.Create(unit).Error; createErr != nil {
				return createErr
			}
			rows++
		}
		return nil
	})
	if err != nil {
		if isDuplicateKeyErr(err) {
			// Lost the race against a concurrent ingestion of the same id.
			return reportId, 0, ErrDuplicateReport
		}
		config.LogError(logger, "timeReportWorkflow.go", "ProcessTimeReport", "ingest", fileName, err)
		return reportId, 0, err
	}

	return reportId, rows, nil
}

func parseWorkRow(record []string, line int) (*models.WorkUnit, string, error) {
	if len(record) != 4 {
		return nil, "", &RowParseError{Line: line, Err: fmt.Errorf("expected 4 fields, got %d", len(record))}
	}

	date, err := time.Parse(workDateLayout, strings.TrimSpace(record[0]))
	if err != nil {
		return nil, "", &RowParseError{Line: line, Err: err}
	}
	hours, err := decimal.NewFromString(strings.TrimSpace(record[1]))
	if err != nil {
		return nil, "", &RowParseError{Line: line, Err: err}
	}
	if hours.IsNegative() {
		return nil, "", &RowParseError{Line: line, Err: fmt.Errorf("hours worked must not be negative")}
	}
	employeeId, err := strconv.Atoi(strings.TrimSpace(record[2]))
	if err != nil {
		return nil, "", &RowParseError{Line: line, Err: err}
	}
	jobGroup := strings.TrimSpace(record[3])

	return &models.WorkUnit{
		EmployeeId:  employeeId,
		HoursWorked: hours,
		Date:        date,
	}, jobGroup, nil
}

// ensureEmployee creates the employee on first sight. An existing record keeps
// its stored job group even when the current row disagrees. The job group is
// not validated against the wage table here; an unknown group only surfaces
// during aggregation.
func ensureEmployee(tx *gorm.DB, employeeId int, jobGroup string) error {
	var employee models.Employee
	err := tx.Where("id = ?", employeeId).First(&employee).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	createErr := tx.Create(&models.Employee{ID: employeeId, JobGroup: jobGroup}).Error
	if createErr != nil && isDuplicateKeyErr(createErr) {
		// A concurrent ingestion of a different report created the same
		// employee between our lookup and create. The record exists; move on.
		return nil
	}
	return createErr
}
