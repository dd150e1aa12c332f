package appointment

import "testing"

func TestAggregateCountsByStatus(t *testing.T) {
	appointments := []Appointment{
		{ID: "a", Status: StatusScheduled},
		{ID: "b", Status: StatusPending},
		{ID: "c", Status: StatusPending},
		{ID: "d", Status: StatusCancelled},
		{ID: "e", Status: StatusScheduled},
	}

	counts := Aggregate(appointments)
	if counts.Total != 5 {
		t.Fatalf("expected total 5, got %d", counts.Total)
	}
	if counts.ScheduledCount != 2 || counts.PendingCount != 2 || counts.CancelledCount != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
	if counts.Total != counts.ScheduledCount+counts.PendingCount+counts.CancelledCount {
		t.Fatalf("expected counters to sum to total: %+v", counts)
	}
}

func TestAggregateExcludesUnknownStatuses(t *testing.T) {
	appointments := []Appointment{
		{ID: "a", Status: StatusScheduled},
		{ID: "b", Status: Status("rescheduled")},
		{ID: "c", Status: ""},
	}

	counts := Aggregate(appointments)
	if counts.Total != 3 {
		t.Fatalf("total must count every record, got %d", counts.Total)
	}
	if counts.ScheduledCount != 1 || counts.PendingCount != 0 || counts.CancelledCount != 0 {
		t.Fatalf("unknown statuses must not hit any counter: %+v", counts)
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	counts := Aggregate(nil)
	if counts != (Counts{}) {
		t.Fatalf("expected zero counts, got %+v", counts)
	}
}

func TestAggregateOrderIndependent(t *testing.T) {
	forward := []Appointment{
		{Status: StatusPending},
		{Status: StatusScheduled},
		{Status: StatusCancelled},
	}
	reversed := []Appointment{
		{Status: StatusCancelled},
		{Status: StatusScheduled},
		{Status: StatusPending},
	}

	if Aggregate(forward) != Aggregate(reversed) {
		t.Fatal("expected order-independent counts")
	}
}
