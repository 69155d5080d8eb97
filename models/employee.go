package models

// Employee ids come from the source time reports; they are never generated
// here. The job group is set on first sight and not touched afterwards, even
// if a later row reports a different group for the same id.
type Employee struct {
	ID       int    `gorm:"primaryKey;autoIncrement:false" json:"id"`
	JobGroup string `gorm:"size:1;not null" json:"job_group"`
}

func (Employee) TableName() string {
	return "employees"
}
