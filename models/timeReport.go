package models

import "time"

// TimeReport records one ingested CSV batch. The id is parsed from the source
// filename and doubles as the idempotency key: the primary key rejects a
// replayed report at commit even if two ingestions race past the pre-check.
type TimeReport struct {
	ID        int       `gorm:"primaryKey;autoIncrement:false" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (TimeReport) TableName() string {
	return "time_reports"
}
