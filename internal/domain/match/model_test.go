package match

import "testing"

func TestNormalizeStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Status
	}{
		{in: "SCHEDULED", want: StatusScheduled},
		{in: "timed", want: StatusScheduled},
		{in: "", want: StatusScheduled},
		{in: "POSTPONED", want: StatusScheduled},
		{in: "IN_PLAY", want: StatusLive},
		{in: " live ", want: StatusLive},
		{in: "PAUSED", want: StatusPaused},
		{in: "SUSPENDED", want: StatusPaused},
		{in: "CANCELLED", want: StatusScheduled},
		{in: "FINISHED", want: StatusFinished},
		{in: "AWARDED", want: StatusFinished},
	}

	for _, tc := range tests {
		if got := NormalizeStatus(tc.in); got != tc.want {
			t.Fatalf("unexpected status for %q: got=%s want=%s", tc.in, got, tc.want)
		}
	}
}

func TestStatusIsClosed(t *testing.T) {
	t.Parallel()

	if StatusScheduled.IsClosed() {
		t.Fatalf("scheduled match must accept predictions")
	}
	for _, s := range []Status{StatusLive, StatusPaused, StatusFinished} {
		if !s.IsClosed() {
			t.Fatalf("expected %s to be closed", s)
		}
	}
}

func TestDedupeByID_FirstOccurrenceWins(t *testing.T) {
	t.Parallel()

	items := []Match{
		{ID: 1, Status: StatusLive, HomeScore: 1},
		{ID: 2, Status: StatusScheduled},
		{ID: 1, Status: StatusFinished, HomeScore: 3},
	}

	got := DedupeByID(items)
	if len(got) != 2 {
		t.Fatalf("unexpected match count: got=%d want=2", len(got))
	}
	if got[0].ID != 1 || got[0].Status != StatusLive || got[0].HomeScore != 1 {
		t.Fatalf("expected first occurrence of match 1 to win, got=%+v", got[0])
	}
	if got[1].ID != 2 {
		t.Fatalf("unexpected order: %+v", got)
	}
	if DedupeByID(nil) != nil {
		t.Fatalf("expected nil for empty snapshot")
	}
}
