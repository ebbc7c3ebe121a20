package delivery

import "time"

// Record is an immutable receipt of one GLP discharge into an order.
type Record struct {
	vehicleID string
	orderID   string
	amountM3  float64
	at        time.Time
}

// NewRecord creates a delivery record.
func NewRecord(vehicleID, orderID string, amountM3 float64, at time.Time) *Record {
	return &Record{
		vehicleID: vehicleID,
		orderID:   orderID,
		amountM3:  amountM3,
		at:        at,
	}
}

func (r *Record) VehicleID() string {
	return r.vehicleID
}

func (r *Record) OrderID() string {
	return r.orderID
}

func (r *Record) AmountM3() float64 {
	return r.amountM3
}

func (r *Record) At() time.Time {
	return r.at
}
