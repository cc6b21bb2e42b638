package postgres

import "time"

// SetClock replaces the timestamp source used by writes.
func (r *mappingRepository) SetClock(now func() time.Time) { r.now = now }
