// internal/storage/models/winner.go
package models

// Winner is one row per awarded cycle. Unlike the in-memory singleton
// record, the table keeps history for dashboards.
type Winner struct {
	BaseModel
	Winner        string `gorm:"index;not null;type:varchar(44)"`
	WinnerAccount string `gorm:"not null;type:varchar(44)"`
	Amount        uint64 `gorm:"not null"`
	AwardedAt     int64  `gorm:"index;not null"`
}

// Snapshot captures the market state at a point in time, written after
// every state-changing operation so the dashboard can chart the curve.
type Snapshot struct {
	BaseModel
	CurrentPrice      uint64 `gorm:"not null"`
	TotalBurned       uint64 `gorm:"not null"`
	TotalTrades       uint64 `gorm:"not null"`
	IncentivePot      uint64 `gorm:"not null"`
	NextCycleBoundary int64  `gorm:"not null"`
	CycleAwarded      bool   `gorm:"not null"`
	TakenAt           int64  `gorm:"index;not null"`
}
