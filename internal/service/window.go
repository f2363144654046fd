package service

// WithinWindow reports whether now falls inside the test's [start, end]
// window. Both boundaries are inclusive: a submission at exactly end_at is
// still accepted. The caller supplies the clock.
func WithinWindow(now, start, end int64) bool {
	return start <= now && now <= end
}

// Expired reports whether a running attempt has exceeded its allotted
// duration.
func Expired(now, start int64, durationMinutes int) bool {
	return now > start+int64(durationMinutes)*60
}
