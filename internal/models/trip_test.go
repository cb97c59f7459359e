package models

import (
	"testing"
	"time"
)

func strptr(s string) *string { return &s }

func TestClaimOpensAt(t *testing.T) {
	scheduled := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	trip := &ScheduledTrip{ScheduledTime: scheduled, ClaimWindowHours: 4}

	want := time.Date(2026, 3, 14, 14, 0, 0, 0, time.UTC)
	if got := trip.ClaimOpensAt(); !got.Equal(want) {
		t.Errorf("ClaimOpensAt() = %v, want %v", got, want)
	}
}

func TestStageAt(t *testing.T) {
	scheduled := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		trip ScheduledTrip
		now  time.Time
		want string
	}{
		{
			name: "Before the window opens",
			trip: ScheduledTrip{ScheduledTime: scheduled, ClaimWindowHours: 4, Status: TripStatusScheduled},
			now:  scheduled.Add(-5 * time.Hour),
			want: StageWaiting,
		},
		{
			name: "Exactly at window open",
			trip: ScheduledTrip{ScheduledTime: scheduled, ClaimWindowHours: 4, Status: TripStatusScheduled},
			now:  scheduled.Add(-4 * time.Hour),
			want: StageClaimOpen,
		},
		{
			name: "Inside the window",
			trip: ScheduledTrip{ScheduledTime: scheduled, ClaimWindowHours: 4, Status: TripStatusScheduled},
			now:  scheduled.Add(-1 * time.Hour),
			want: StageClaimOpen,
		},
		{
			name: "At the scheduled time",
			trip: ScheduledTrip{ScheduledTime: scheduled, ClaimWindowHours: 4, Status: TripStatusScheduled},
			now:  scheduled,
			want: StageClaimOpen,
		},
		{
			name: "Past the scheduled time with no driver",
			trip: ScheduledTrip{ScheduledTime: scheduled, ClaimWindowHours: 4, Status: TripStatusScheduled},
			now:  scheduled.Add(time.Minute),
			want: StageWindowPassed,
		},
		{
			name: "Assigned overrides the window",
			trip: ScheduledTrip{ScheduledTime: scheduled, ClaimWindowHours: 4, Status: TripStatusScheduled, AssignedDriverID: strptr("d1")},
			now:  scheduled.Add(-10 * time.Hour),
			want: StageAssigned,
		},
		{
			name: "Assigned and underway",
			trip: ScheduledTrip{ScheduledTime: scheduled, ClaimWindowHours: 4, Status: TripStatusInProgress, AssignedDriverID: strptr("d1")},
			now:  scheduled,
			want: StageInProgress,
		},
		{
			name: "Assigned and completed",
			trip: ScheduledTrip{ScheduledTime: scheduled, ClaimWindowHours: 4, Status: TripStatusCompleted, AssignedDriverID: strptr("d1")},
			now:  scheduled.Add(2 * time.Hour),
			want: StageCompleted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.trip.StageAt(tt.now); got != tt.want {
				t.Errorf("StageAt() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClaimsRemaining(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		count int
		want  int
	}{
		{"Untouched", 5, 0, 5},
		{"Partially claimed", 5, 3, 2},
		{"Exhausted", 5, 5, 0},
		{"Over-counted floors at zero", 5, 7, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trip := &ScheduledTrip{ClaimLimit: tt.limit, ClaimCount: tt.count}
			if got := trip.ClaimsRemaining(); got != tt.want {
				t.Errorf("ClaimsRemaining() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCanClaimAt(t *testing.T) {
	scheduled := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	inWindow := scheduled.Add(-1 * time.Hour)

	trip := ScheduledTrip{ScheduledTime: scheduled, ClaimWindowHours: 4, ClaimLimit: 3, Status: TripStatusScheduled}
	if !trip.CanClaimAt(inWindow) {
		t.Error("open window with claims left should be claimable")
	}

	exhausted := trip
	exhausted.ClaimCount = 3
	if exhausted.CanClaimAt(inWindow) {
		t.Error("exhausted claim limit should not be claimable")
	}

	assigned := trip
	assigned.AssignedDriverID = strptr("d1")
	if assigned.CanClaimAt(inWindow) {
		t.Error("assigned trip should not be claimable")
	}

	if trip.CanClaimAt(scheduled.Add(-10 * time.Hour)) {
		t.Error("trip before its window should not be claimable")
	}
}

func TestIsTerminalForReassign(t *testing.T) {
	for status, want := range map[string]bool{
		TripStatusScheduled:  false,
		TripStatusInProgress: true,
		TripStatusCompleted:  true,
		TripStatusCanceled:   true,
	} {
		trip := &ScheduledTrip{Status: status}
		if got := trip.IsTerminalForReassign(); got != want {
			t.Errorf("IsTerminalForReassign() with status %q = %v, want %v", status, got, want)
		}
	}
}
