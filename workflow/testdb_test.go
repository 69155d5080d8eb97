package workflow

import (
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"bitbucket.org/mmdatafocus/payroll_backend/models"
)

// newTestDB opens a per-test in-memory sqlite database. The named shared-cache
// DSN keeps gorm's pooled connections pointed at the same database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         logger.Discard,
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Employee{}, &models.TimeReport{}, &models.WorkUnit{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testRates() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"A": decimal.NewFromInt(20),
		"B": decimal.NewFromInt(30),
	}
}
