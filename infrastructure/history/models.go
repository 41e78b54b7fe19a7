package history

import "time"

// RunModel is the persisted form of a finished run
type RunModel struct {
	ID             string `gorm:"primaryKey"`
	StartedAt      time.Time
	FinishedAt     time.Time
	ReachableCount int
	FailedCount    int
	ReportPath     string
	RowCount       int
	Rows           []RowModel `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
}

// TableName overrides the default table name
func (RunModel) TableName() string {
	return "runs"
}

// RowModel is one report row of a run, Position keeps emission order
type RowModel struct {
	ID                 uint   `gorm:"primaryKey;autoIncrement"`
	RunID              string `gorm:"index"`
	Position           int
	SwitchName         string
	ConfiguredHostname string
	IP                 string `gorm:"index"`
	Reachability       string
	Interface          string
	Status             string
	SnmpRoCommunity    string
	SwitchStatus       string
}

// TableName overrides the default table name
func (RowModel) TableName() string {
	return "report_rows"
}
