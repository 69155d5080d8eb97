package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WorkUnit is one worked-time row of a time report. Units are created in bulk
// inside the report's ingestion transaction and are immutable afterwards.
type WorkUnit struct {
	ID           int             `gorm:"primaryKey" json:"id"`
	EmployeeId   int             `gorm:"index;not null" json:"employee_id"`
	TimeReportId int             `gorm:"index;not null" json:"time_report_id"`
	HoursWorked  decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"hours_worked"`
	Date         time.Time       `gorm:"type:date;not null" json:"date"`
}

func (WorkUnit) TableName() string {
	return "employee_work_units"
}
