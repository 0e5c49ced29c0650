package model

import "gorm.io/datatypes"

// CaseRecord maps to case_records. The full record lives in Data; the
// other columns are indexed projections for listing and reporting.
type CaseRecord struct {
	ID           string         `gorm:"type:varchar(64);primaryKey"`
	FileNumber   string         `gorm:"type:varchar(100);index"`
	EmployeeID   string         `gorm:"type:varchar(64);index"`
	EmployeeName string         `gorm:"type:varchar(200);index"`
	Category     string         `gorm:"type:varchar(64);index"`
	SubCategory  string         `gorm:"type:varchar(100)"`
	Status       string         `gorm:"type:varchar(32)"`
	Severity     string         `gorm:"type:varchar(16)"`
	Created      string         `gorm:"column:created_at;type:varchar(32);index"`
	Updated      string         `gorm:"column:updated_at;type:varchar(32)"`
	Data         datatypes.JSON `gorm:"not null"`
}

// TableName sets the table name.
func (CaseRecord) TableName() string { return "case_records" }
