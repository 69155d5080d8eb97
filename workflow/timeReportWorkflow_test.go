package workflow

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"bitbucket.org/mmdatafocus/payroll_backend/models"
)

const sampleReportCSV = "date,hours worked,employee id,job group\n" +
	"12/10/2021,3.5,3,A\n" +
	"19/10/2021,2,3,A\n" +
	"12/10/2021,1,2,B\n"

func TestProcessTimeReport_CSVRoundTrip(t *testing.T) {
	db := newTestDB(t)
	logger := testLogger()

	reportId, rows, err := ProcessTimeReport(db, logger, "time-report-10.csv", strings.NewReader(sampleReportCSV))
	if err != nil {
		t.Fatalf("ProcessTimeReport error: %v", err)
	}
	if reportId != 10 {
		t.Fatalf("expected report id 10, got %d", reportId)
	}
	if rows != 3 {
		t.Fatalf("expected 3 rows ingested, got %d", rows)
	}

	var reportCount int64
	if err := db.Model(&models.TimeReport{}).Count(&reportCount).Error; err != nil {
		t.Fatalf("count reports: %v", err)
	}
	if reportCount != 1 {
		t.Fatalf("expected exactly 1 time report, got %d", reportCount)
	}
	var report models.TimeReport
	if err := db.First(&report).Error; err != nil {
		t.Fatalf("load report: %v", err)
	}
	if report.ID != 10 {
		t.Fatalf("expected stored report id 10, got %d", report.ID)
	}

	var employeeCount int64
	if err := db.Model(&models.Employee{}).Count(&employeeCount).Error; err != nil {
		t.Fatalf("count employees: %v", err)
	}
	if employeeCount != 2 {
		t.Fatalf("expected 2 employees, got %d", employeeCount)
	}
	for id, group := range map[int]string{3: "A", 2: "B"} {
		var employee models.Employee
		if err := db.Where("id = ?", id).First(&employee).Error; err != nil {
			t.Fatalf("load employee %d: %v", id, err)
		}
		if employee.JobGroup != group {
			t.Fatalf("employee %d: expected job group %q, got %q", id, group, employee.JobGroup)
		}
	}

	var unitCount int64
	if err := db.Model(&models.WorkUnit{}).Count(&unitCount).Error; err != nil {
		t.Fatalf("count work units: %v", err)
	}
	if unitCount != 3 {
		t.Fatalf("expected 3 work units, got %d", unitCount)
	}

	for employeeId, expectedHours := range map[int]string{3: "5.5", 2: "1"} {
		var units []models.WorkUnit
		if err := db.Where("employee_id = ? AND time_report_id = ?", employeeId, 10).Find(&units).Error; err != nil {
			t.Fatalf("load units for employee %d: %v", employeeId, err)
		}
		total := decimal.Zero
		for _, unit := range units {
			total = total.Add(unit.HoursWorked)
		}
		if !total.Equal(decimal.RequireFromString(expectedHours)) {
			t.Fatalf("employee %d: expected %s hours, got %s", employeeId, expectedHours, total.String())
		}
	}
}

func TestProcessTimeReport_DuplicateReportIsRejected(t *testing.T) {
	db := newTestDB(t)
	logger := testLogger()

	if _, _, err := ProcessTimeReport(db, logger, "time-report-10.csv", strings.NewReader(sampleReportCSV)); err != nil {
		t.Fatalf("first ingestion error: %v", err)
	}

	_, _, err := ProcessTimeReport(db, logger, "time-report-10.csv", strings.NewReader(sampleReportCSV))
	if !errors.Is(err, ErrDuplicateReport) {
		t.Fatalf("expected ErrDuplicateReport, got %v", err)
	}

	// Storage must look exactly like a single ingestion.
	var reportCount, unitCount, employeeCount int64
	db.Model(&models.TimeReport{}).Count(&reportCount)
	db.Model(&models.WorkUnit{}).Count(&unitCount)
	db.Model(&models.Employee{}).Count(&employeeCount)
	if reportCount != 1 || unitCount != 3 || employeeCount != 2 {
		t.Fatalf("duplicate ingestion mutated storage: reports=%d units=%d employees=%d",
			reportCount, unitCount, employeeCount)
	}
}

func TestProcessTimeReport_BadRowRollsBackEverything(t *testing.T) {
	db := newTestDB(t)
	logger := testLogger()

	cases := []struct {
		name string
		csv  string
	}{
		{
			"bad date",
			"date,hours worked,employee id,job group\n" +
				"12/10/2021,3.5,3,A\n" +
				"2021-10-19,2,3,A\n",
		},
		{
			"bad hours",
			"date,hours worked,employee id,job group\n" +
				"12/10/2021,lots,3,A\n",
		},
		{
			"negative hours",
			"date,hours worked,employee id,job group\n" +
				"12/10/2021,-2,3,A\n",
		},
		{
			"bad employee id",
			"date,hours worked,employee id,job group\n" +
				"12/10/2021,3.5,three,A\n",
		},
		{
			"wrong field count",
			"date,hours worked,employee id,job group\n" +
				"12/10/2021,3.5,3\n",
		},
	}

	for i, tc := range cases {
		fileName := "time-report-" + strconv.Itoa(100+i) + ".csv"
		_, _, err := ProcessTimeReport(db, logger, fileName, strings.NewReader(tc.csv))
		if err == nil {
			t.Fatalf("%s: expected error, got none", tc.name)
		}
		var rowErr *RowParseError
		if !errors.As(err, &rowErr) {
			t.Fatalf("%s: expected *RowParseError, got %T (%v)", tc.name, err, err)
		}

		var reportCount, unitCount, employeeCount int64
		db.Model(&models.TimeReport{}).Count(&reportCount)
		db.Model(&models.WorkUnit{}).Count(&unitCount)
		db.Model(&models.Employee{}).Count(&employeeCount)
		if reportCount != 0 || unitCount != 0 || employeeCount != 0 {
			t.Fatalf("%s: partial state survived rollback: reports=%d units=%d employees=%d",
				tc.name, reportCount, unitCount, employeeCount)
		}
	}
}

func TestProcessTimeReport_ExistingJobGroupIsNeverUpdated(t *testing.T) {
	db := newTestDB(t)
	logger := testLogger()

	first := "date,hours worked,employee id,job group\n" +
		"12/10/2021,3.5,3,A\n"
	if _, _, err := ProcessTimeReport(db, logger, "time-report-1.csv", strings.NewReader(first)); err != nil {
		t.Fatalf("first ingestion error: %v", err)
	}

	// Same employee, disagreeing job group, different report.
	second := "date,hours worked,employee id,job group\n" +
		"13/10/2021,2,3,B\n"
	if _, _, err := ProcessTimeReport(db, logger, "time-report-2.csv", strings.NewReader(second)); err != nil {
		t.Fatalf("second ingestion error: %v", err)
	}

	var employee models.Employee
	if err := db.Where("id = ?", 3).First(&employee).Error; err != nil {
		t.Fatalf("load employee: %v", err)
	}
	if employee.JobGroup != "A" {
		t.Fatalf("expected job group to stay A, got %q", employee.JobGroup)
	}
}
