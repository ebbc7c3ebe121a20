package persistence

import (
	"time"
)

// DeliveryRecordModel is the GORM row for one completed delivery.
// Telemetry only: rows are written as deliveries happen and read by
// reporting queries, never loaded back into live state.
type DeliveryRecordModel struct {
	ID          uint      `gorm:"primaryKey"`
	OrderID     string    `gorm:"index;not null"`
	VehicleID   string    `gorm:"index;not null"`
	AmountM3    float64   `gorm:"not null"`
	DeliveredAt time.Time `gorm:"index;not null"`
	CreatedAt   time.Time
}

// TableName overrides the default table name.
func (DeliveryRecordModel) TableName() string {
	return "delivery_records"
}

// ReplanStatModel is the GORM row for one replanning round.
type ReplanStatModel struct {
	ID             uint      `gorm:"primaryKey"`
	StartedAt      time.Time `gorm:"index;not null"`
	DurationMs     int64     `gorm:"not null"`
	VehiclesUsed   int       `gorm:"not null"`
	OrdersAssigned int       `gorm:"not null"`
	Cost           float64   `gorm:"not null"`
	UsedFallback   bool      `gorm:"not null"`
	CreatedAt      time.Time
}

// TableName overrides the default table name.
func (ReplanStatModel) TableName() string {
	return "replan_stats"
}
