package tracer

// Tracer maps to the tracers table. OrderTime is the lead time, in whole
// days, needed to order the tracer before a booking.
type Tracer struct {
	ID        int    `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	OrderTime int    `db:"order_time" json:"order_time"`
	Enabled   bool   `db:"enabled" json:"enabled"`
}
