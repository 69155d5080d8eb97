package workflow

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bitbucket.org/mmdatafocus/payroll_backend/config"
	"bitbucket.org/mmdatafocus/payroll_backend/models"
)

// PayrollLine is one employee's wages owed for one pay period.
type PayrollLine struct {
	EmployeeId string    `json:"employeeId"`
	PayPeriod  PayPeriod `json:"payPeriod"`
	AmountPaid string    `json:"amountPaid"`
}

type workUnitRow struct {
	EmployeeId  int
	JobGroup    string
	HoursWorked decimal.Decimal
	Date        time.Time
}

type bucketKey struct {
	EmployeeId int
	StartDate  string
	EndDate    string
}

// GeneratePayrollReport sums wages owed per employee per semi-monthly pay
// period across every ingested work unit. Units are scanned ordered by
// employee id then date, and lines surface in the order their
// (employee, period) bucket is first seen, so the output is reproducible for
// identical input. Buckets that total exactly zero are dropped.
func GeneratePayrollReport(db *gorm.DB, logger *logrus.Logger, rates map[string]decimal.Decimal) ([]PayrollLine, error) {
	var units []workUnitRow
	err := db.Model(&models.WorkUnit{}).
		Select("employee_work_units.employee_id, employees.job_group, employee_work_units.hours_worked, employee_work_units.date").
		Joins("JOIN employees ON employees.id = employee_work_units.employee_id").
		Order("employee_work_units.employee_id, employee_work_units.date, employee_work_units.id").
		Scan(&units).Error
	if err != nil {
		config.LogError(logger, "payrollReportWorkflow.go", "GeneratePayrollReport", "scan work units", nil, err)
		return nil, err
	}

	totals := make(map[bucketKey]decimal.Decimal)
	var order []bucketKey
	for _, unit := range units {
		rate, ok := rates[unit.JobGroup]
		if !ok {
			groupErr := &UnknownJobGroupError{JobGroup: unit.JobGroup}
			config.LogError(logger, "payrollReportWorkflow.go", "GeneratePayrollReport", "rate lookup", unit.EmployeeId, groupErr)
			return nil, groupErr
		}

		period := PeriodFor(unit.Date)
		key := bucketKey{EmployeeId: unit.EmployeeId, StartDate: period.StartDate, EndDate: period.EndDate}
		if _, exists := totals[key]; !exists {
			order = append(order, key)
		}
		totals[key] = totals[key].Add(unit.HoursWorked.Mul(rate))
	}

	lines := make([]PayrollLine, 0, len(order))
	for _, key := range order {
		amount := totals[key]
		if amount.IsZero() {
			continue
		}
		lines = append(lines, PayrollLine{
			EmployeeId: strconv.Itoa(key.EmployeeId),
			PayPeriod:  PayPeriod{StartDate: key.StartDate, EndDate: key.EndDate},
			AmountPaid: "$" + amount.StringFixed(2),
		})
	}
	return lines, nil
}
