package persistence

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/andrescamacho/glp-fleet-go/internal/domain/delivery"
)

// DeliveryRecordRepository persists completed deliveries. It satisfies
// the executor's DeliverySink.
type DeliveryRecordRepository struct {
	db *gorm.DB
}

// NewDeliveryRecordRepository creates a repository.
func NewDeliveryRecordRepository(db *gorm.DB) *DeliveryRecordRepository {
	return &DeliveryRecordRepository{db: db}
}

// RecordDelivery appends one delivery row.
func (r *DeliveryRecordRepository) RecordDelivery(record *delivery.Record) error {
	model := DeliveryRecordModel{
		OrderID:     record.OrderID(),
		VehicleID:   record.VehicleID(),
		AmountM3:    record.AmountM3(),
		DeliveredAt: record.At(),
	}
	if err := r.db.Create(&model).Error; err != nil {
		return fmt.Errorf("persisting delivery record: %w", err)
	}
	return nil
}

// TotalDeliveredM3 sums the delivered volume in [from, to).
func (r *DeliveryRecordRepository) TotalDeliveredM3(from, to time.Time) (float64, error) {
	var total float64
	err := r.db.Model(&DeliveryRecordModel{}).
		Where("delivered_at >= ? AND delivered_at < ?", from, to).
		Select("COALESCE(SUM(amount_m3), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("summing deliveries: %w", err)
	}
	return total, nil
}

// RecordsForOrder returns every delivery row of one order, oldest
// first.
func (r *DeliveryRecordRepository) RecordsForOrder(orderID string) ([]DeliveryRecordModel, error) {
	var rows []DeliveryRecordModel
	err := r.db.
		Where("order_id = ?", orderID).
		Order("delivered_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("loading delivery records for order %s: %w", orderID, err)
	}
	return rows, nil
}
