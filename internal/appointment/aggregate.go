package appointment

// Counts summarizes a listing snapshot by status. It is derived on demand and
// never persisted. Total always equals the number of input records, even when
// some carry a status outside the known set; unknown statuses are excluded
// from the three per-status counters.
type Counts struct {
	Total          int `json:"totalCount"`
	ScheduledCount int `json:"scheduledCount"`
	PendingCount   int `json:"pendingCount"`
	CancelledCount int `json:"cancelledCount"`
}

// Aggregate computes status counts in a single pass. Pure and
// order-independent.
func Aggregate(appointments []Appointment) Counts {
	counts := Counts{Total: len(appointments)}
	for _, a := range appointments {
		switch a.Status {
		case StatusScheduled:
			counts.ScheduledCount++
		case StatusPending:
			counts.PendingCount++
		case StatusCancelled:
			counts.CancelledCount++
		}
	}
	return counts
}
