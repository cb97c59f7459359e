package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	apperrors "github.com/NoLS-Tanzania/nols-app-sub009/internal/errors"
	"github.com/NoLS-Tanzania/nols-app-sub009/internal/models"
	"github.com/NoLS-Tanzania/nols-app-sub009/internal/notify"
	"github.com/NoLS-Tanzania/nols-app-sub009/internal/repository"
)

// memoryStore is an in-memory AssignmentStore. A single mutex serializes
// transactions the way row locks do in Postgres, so concurrent InTx calls
// observe committed state, never each other's intermediate writes.
type memoryStore struct {
	mu     sync.Mutex
	trips  map[string]*models.ScheduledTrip
	claims map[string]*models.Claim
	audits []*models.AssignmentAudit
	seq    int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		trips:  make(map[string]*models.ScheduledTrip),
		claims: make(map[string]*models.Claim),
	}
}

func (s *memoryStore) InTx(ctx context.Context, fn func(tx repository.AssignmentTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Stage writes against copies; apply only when fn succeeds.
	tx := &memoryTx{
		store:  s,
		trips:  make(map[string]*models.ScheduledTrip),
		claims: make(map[string]*models.Claim),
	}
	if err := fn(tx); err != nil {
		return err
	}
	for id, trip := range tx.trips {
		s.trips[id] = trip
	}
	for id, claim := range tx.claims {
		s.claims[id] = claim
	}
	s.audits = append(s.audits, tx.audits...)
	return nil
}

type memoryTx struct {
	store  *memoryStore
	trips  map[string]*models.ScheduledTrip
	claims map[string]*models.Claim
	audits []*models.AssignmentAudit
}

func (t *memoryTx) tripRef(id string) *models.ScheduledTrip {
	if trip, ok := t.trips[id]; ok {
		return trip
	}
	trip, ok := t.store.trips[id]
	if !ok {
		return nil
	}
	copied := *trip
	t.trips[id] = &copied
	return &copied
}

func (t *memoryTx) claimRef(id string) *models.Claim {
	if claim, ok := t.claims[id]; ok {
		return claim
	}
	claim, ok := t.store.claims[id]
	if !ok {
		return nil
	}
	copied := *claim
	t.claims[id] = &copied
	return &copied
}

func (t *memoryTx) TripForUpdate(ctx context.Context, tripID string) (*models.ScheduledTrip, error) {
	trip := t.tripRef(tripID)
	if trip == nil {
		return nil, nil
	}
	snapshot := *trip
	return &snapshot, nil
}

func (t *memoryTx) ClaimForUpdate(ctx context.Context, claimID string) (*models.Claim, error) {
	claim := t.claimRef(claimID)
	if claim == nil {
		return nil, nil
	}
	snapshot := *claim
	return &snapshot, nil
}

func (t *memoryTx) HasPendingClaim(ctx context.Context, tripID, driverID string) (bool, error) {
	for _, claim := range t.store.claims {
		if _, staged := t.claims[claim.ID]; staged {
			continue
		}
		if claim.TripID == tripID && claim.DriverID == driverID && claim.Status == models.ClaimStatusPending {
			return true, nil
		}
	}
	for _, claim := range t.claims {
		if claim.TripID == tripID && claim.DriverID == driverID && claim.Status == models.ClaimStatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (t *memoryTx) SetAssignedDriver(ctx context.Context, tripID string, driverID *string) error {
	trip := t.tripRef(tripID)
	if trip == nil {
		return fmt.Errorf("trip %s not found", tripID)
	}
	trip.AssignedDriverID = driverID
	trip.UpdatedAt = time.Now()
	return nil
}

func (t *memoryTx) SetClaimStatus(ctx context.Context, claimID, status string) error {
	claim := t.claimRef(claimID)
	if claim == nil {
		return fmt.Errorf("claim %s not found", claimID)
	}
	now := time.Now()
	claim.Status = status
	claim.ResolvedAt = &now
	return nil
}

func (t *memoryTx) InsertClaim(ctx context.Context, claim *models.Claim) error {
	if claim.ID == "" {
		t.store.seq++
		claim.ID = fmt.Sprintf("claim-%d", t.store.seq)
	}
	copied := *claim
	t.claims[claim.ID] = &copied
	return nil
}

func (t *memoryTx) IncrementClaimCount(ctx context.Context, tripID string) error {
	trip := t.tripRef(tripID)
	if trip == nil {
		return fmt.Errorf("trip %s not found", tripID)
	}
	trip.ClaimCount++
	return nil
}

func (t *memoryTx) AppendAudit(ctx context.Context, audit *models.AssignmentAudit) error {
	copied := *audit
	if copied.ID == "" {
		t.store.seq++
		copied.ID = fmt.Sprintf("audit-%d", t.store.seq)
	}
	t.audits = append(t.audits, &copied)
	return nil
}

func openTrip(id string) *models.ScheduledTrip {
	return &models.ScheduledTrip{
		ID:               id,
		ScheduledTime:    time.Now().Add(2 * time.Hour),
		ClaimWindowHours: 4,
		ClaimLimit:       3,
		Status:           models.TripStatusScheduled,
	}
}

func pendingClaim(id, tripID, driverID string) *models.Claim {
	return &models.Claim{
		ID:        id,
		TripID:    tripID,
		DriverID:  driverID,
		Status:    models.ClaimStatusPending,
		CreatedAt: time.Now(),
	}
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	apiErr, ok := err.(*apperrors.APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	return apiErr.Code
}

func TestAwardAssignsDriverAndAudits(t *testing.T) {
	store := newMemoryStore()
	store.trips["trip-1"] = openTrip("trip-1")
	store.claims["claim-1"] = pendingClaim("claim-1", "trip-1", "driver-1")

	svc := NewAssignmentService(store, notify.Nop{})
	if err := svc.Award(context.Background(), "trip-1", "claim-1", "first responder", "admin-1"); err != nil {
		t.Fatalf("Award() error = %v", err)
	}

	trip := store.trips["trip-1"]
	if trip.AssignedDriverID == nil || *trip.AssignedDriverID != "driver-1" {
		t.Fatalf("AssignedDriverID = %v, want driver-1", trip.AssignedDriverID)
	}
	if store.claims["claim-1"].Status != models.ClaimStatusAwarded {
		t.Errorf("claim status = %s, want AWARDED", store.claims["claim-1"].Status)
	}
	if len(store.audits) != 1 {
		t.Fatalf("audits = %d, want 1", len(store.audits))
	}
	audit := store.audits[0]
	if audit.Kind != models.AuditKindAssign || audit.Actor != "admin-1" || audit.Reason != "first responder" {
		t.Errorf("audit = %+v, want ASSIGN by admin-1 with the given reason", audit)
	}
	if audit.DriverID == nil || *audit.DriverID != "driver-1" {
		t.Errorf("audit driver = %v, want driver-1", audit.DriverID)
	}
}

func TestAwardLeavesOtherClaimsPending(t *testing.T) {
	store := newMemoryStore()
	store.trips["trip-1"] = openTrip("trip-1")
	store.claims["claim-1"] = pendingClaim("claim-1", "trip-1", "driver-1")
	store.claims["claim-2"] = pendingClaim("claim-2", "trip-1", "driver-2")

	svc := NewAssignmentService(store, notify.Nop{})
	if err := svc.Award(context.Background(), "trip-1", "claim-1", "closest driver", "admin-1"); err != nil {
		t.Fatalf("Award() error = %v", err)
	}

	if store.claims["claim-2"].Status != models.ClaimStatusPending {
		t.Errorf("losing claim status = %s, want it left PENDING for later reassignment", store.claims["claim-2"].Status)
	}
}

func TestAwardRejectsAlreadyAssignedTrip(t *testing.T) {
	store := newMemoryStore()
	trip := openTrip("trip-1")
	assigned := "driver-0"
	trip.AssignedDriverID = &assigned
	store.trips["trip-1"] = trip
	store.claims["claim-1"] = pendingClaim("claim-1", "trip-1", "driver-1")

	svc := NewAssignmentService(store, notify.Nop{})
	err := svc.Award(context.Background(), "trip-1", "claim-1", "take it anyway", "admin-1")
	if err == nil {
		t.Fatal("expected a conflict awarding an assigned trip")
	}
	if code := errCode(t, err); code != "concurrency_conflict" {
		t.Errorf("error code = %s, want concurrency_conflict", code)
	}

	// State unchanged
	if *store.trips["trip-1"].AssignedDriverID != "driver-0" {
		t.Error("assignment changed on a rejected award")
	}
	if store.claims["claim-1"].Status != models.ClaimStatusPending {
		t.Error("claim resolved on a rejected award")
	}
	if len(store.audits) != 0 {
		t.Error("audit written for a rejected award")
	}
}

func TestAwardRejectsResolvedClaim(t *testing.T) {
	store := newMemoryStore()
	store.trips["trip-1"] = openTrip("trip-1")
	claim := pendingClaim("claim-1", "trip-1", "driver-1")
	claim.Status = models.ClaimStatusRejected
	store.claims["claim-1"] = claim

	svc := NewAssignmentService(store, notify.Nop{})
	err := svc.Award(context.Background(), "trip-1", "claim-1", "second look", "admin-1")
	if err == nil {
		t.Fatal("expected rejection of a resolved claim")
	}
	if code := errCode(t, err); code != "concurrency_conflict" {
		t.Errorf("error code = %s, want concurrency_conflict", code)
	}
}

func TestAwardRejectsClaimFromAnotherTrip(t *testing.T) {
	store := newMemoryStore()
	store.trips["trip-1"] = openTrip("trip-1")
	store.trips["trip-2"] = openTrip("trip-2")
	store.claims["claim-1"] = pendingClaim("claim-1", "trip-2", "driver-1")

	svc := NewAssignmentService(store, notify.Nop{})
	err := svc.Award(context.Background(), "trip-1", "claim-1", "wrong trip", "admin-1")
	if err == nil {
		t.Fatal("expected rejection of a cross-trip claim")
	}
	if code := errCode(t, err); code != "bad_request" {
		t.Errorf("error code = %s, want bad_request", code)
	}
}

func TestAwardRequiresReason(t *testing.T) {
	store := newMemoryStore()
	store.trips["trip-1"] = openTrip("trip-1")
	store.claims["claim-1"] = pendingClaim("claim-1", "trip-1", "driver-1")

	svc := NewAssignmentService(store, notify.Nop{})
	for _, reason := range []string{"", "   ", "\t\n"} {
		if err := svc.Award(context.Background(), "trip-1", "claim-1", reason, "admin-1"); err == nil {
			t.Errorf("Award with reason %q succeeded, want empty_reason", reason)
		} else if code := errCode(t, err); code != "empty_reason" {
			t.Errorf("error code = %s, want empty_reason", code)
		}
	}
	if len(store.audits) != 0 {
		t.Error("audit written despite missing reason")
	}
}

func TestConcurrentAwardsExactlyOneWins(t *testing.T) {
	store := newMemoryStore()
	store.trips["trip-1"] = openTrip("trip-1")

	const workers = 16
	for i := 0; i < workers; i++ {
		id := fmt.Sprintf("claim-%d", i)
		store.claims[id] = pendingClaim(id, "trip-1", fmt.Sprintf("driver-%d", i))
	}

	svc := NewAssignmentService(store, notify.Nop{})

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.Award(context.Background(), "trip-1", fmt.Sprintf("claim-%d", i), "race", "admin-1")
		}(i)
	}
	wg.Wait()

	wins := 0
	for i, err := range errs {
		if err == nil {
			wins++
			continue
		}
		if code := errCode(t, err); code != "concurrency_conflict" {
			t.Errorf("worker %d: error code = %s, want concurrency_conflict", i, code)
		}
	}
	if wins != 1 {
		t.Fatalf("winning awards = %d, want exactly 1", wins)
	}

	awarded := 0
	for _, claim := range store.claims {
		if claim.Status == models.ClaimStatusAwarded {
			awarded++
		}
	}
	if awarded != 1 {
		t.Errorf("awarded claims = %d, want exactly 1", awarded)
	}
	if len(store.audits) != 1 {
		t.Errorf("audits = %d, want exactly 1", len(store.audits))
	}
}

func TestReassignMovesDriverAndAudits(t *testing.T) {
	store := newMemoryStore()
	trip := openTrip("trip-1")
	assigned := "driver-1"
	trip.AssignedDriverID = &assigned
	store.trips["trip-1"] = trip
	store.claims["claim-2"] = pendingClaim("claim-2", "trip-1", "driver-2")

	svc := NewAssignmentService(store, notify.Nop{})
	if err := svc.Reassign(context.Background(), "trip-1", "claim-2", "driver-1 unreachable", "admin-1"); err != nil {
		t.Fatalf("Reassign() error = %v", err)
	}

	if *store.trips["trip-1"].AssignedDriverID != "driver-2" {
		t.Errorf("AssignedDriverID = %s, want driver-2", *store.trips["trip-1"].AssignedDriverID)
	}
	// The backing claim is an administrative vehicle here, not a resolution.
	if store.claims["claim-2"].Status != models.ClaimStatusPending {
		t.Errorf("claim status = %s, want PENDING after reassignment", store.claims["claim-2"].Status)
	}
	if len(store.audits) != 1 {
		t.Fatalf("audits = %d, want 1", len(store.audits))
	}
	audit := store.audits[0]
	if audit.Kind != models.AuditKindAssign {
		t.Errorf("audit kind = %s, want ASSIGN", audit.Kind)
	}
	if want := "driver-1 unreachable (replaces driver driver-1)"; audit.Reason != want {
		t.Errorf("audit reason = %q, want %q", audit.Reason, want)
	}
}

func TestReassignBlockedOnTerminalStatus(t *testing.T) {
	for _, status := range []string{models.TripStatusInProgress, models.TripStatusCompleted, models.TripStatusCanceled} {
		store := newMemoryStore()
		trip := openTrip("trip-1")
		assigned := "driver-1"
		trip.AssignedDriverID = &assigned
		trip.Status = status
		store.trips["trip-1"] = trip
		store.claims["claim-2"] = pendingClaim("claim-2", "trip-1", "driver-2")

		svc := NewAssignmentService(store, notify.Nop{})
		err := svc.Reassign(context.Background(), "trip-1", "claim-2", "swap", "admin-1")
		if err == nil {
			t.Fatalf("Reassign succeeded on %s trip", status)
		}
		if code := errCode(t, err); code != "concurrency_conflict" {
			t.Errorf("status %s: error code = %s, want concurrency_conflict", status, code)
		}
		if *store.trips["trip-1"].AssignedDriverID != "driver-1" {
			t.Errorf("status %s: assignment changed on a blocked reassign", status)
		}
	}
}

func TestReassignRequiresAssignedDriver(t *testing.T) {
	store := newMemoryStore()
	store.trips["trip-1"] = openTrip("trip-1")
	store.claims["claim-1"] = pendingClaim("claim-1", "trip-1", "driver-1")

	svc := NewAssignmentService(store, notify.Nop{})
	err := svc.Reassign(context.Background(), "trip-1", "claim-1", "move", "admin-1")
	if err == nil {
		t.Fatal("expected rejection of reassign on an unassigned trip")
	}
	if code := errCode(t, err); code != "concurrency_conflict" {
		t.Errorf("error code = %s, want concurrency_conflict", code)
	}
}

func TestReassignRejectsSameDriver(t *testing.T) {
	store := newMemoryStore()
	trip := openTrip("trip-1")
	assigned := "driver-1"
	trip.AssignedDriverID = &assigned
	store.trips["trip-1"] = trip
	store.claims["claim-1"] = pendingClaim("claim-1", "trip-1", "driver-1")

	svc := NewAssignmentService(store, notify.Nop{})
	err := svc.Reassign(context.Background(), "trip-1", "claim-1", "same driver", "admin-1")
	if err == nil {
		t.Fatal("expected rejection of a no-op reassign")
	}
	if code := errCode(t, err); code != "bad_request" {
		t.Errorf("error code = %s, want bad_request", code)
	}
}

func TestUnassignClearsDriver(t *testing.T) {
	store := newMemoryStore()
	trip := openTrip("trip-1")
	assigned := "driver-1"
	trip.AssignedDriverID = &assigned
	store.trips["trip-1"] = trip

	svc := NewAssignmentService(store, notify.Nop{})
	if err := svc.Unassign(context.Background(), "trip-1", "driver cancelled", "admin-1"); err != nil {
		t.Fatalf("Unassign() error = %v", err)
	}

	got := store.trips["trip-1"]
	if got.AssignedDriverID != nil {
		t.Errorf("AssignedDriverID = %v, want nil", got.AssignedDriverID)
	}
	if stage := got.StageAt(time.Now()); stage == models.StageAssigned {
		t.Errorf("stage after unassign = %s, must never be ASSIGNED", stage)
	}
	if len(store.audits) != 1 {
		t.Fatalf("audits = %d, want 1", len(store.audits))
	}
	audit := store.audits[0]
	if audit.Kind != models.AuditKindUnassign {
		t.Errorf("audit kind = %s, want UNASSIGN", audit.Kind)
	}
	if audit.DriverID != nil {
		t.Errorf("unassign audit driver = %v, want nil with the removed driver named in the reason", audit.DriverID)
	}
	if want := "driver cancelled (removed driver driver-1)"; audit.Reason != want {
		t.Errorf("audit reason = %q, want %q", audit.Reason, want)
	}
}

func TestUnassignRequiresAssignedDriver(t *testing.T) {
	store := newMemoryStore()
	store.trips["trip-1"] = openTrip("trip-1")

	svc := NewAssignmentService(store, notify.Nop{})
	err := svc.Unassign(context.Background(), "trip-1", "cleanup", "admin-1")
	if err == nil {
		t.Fatal("expected rejection of unassign on an unassigned trip")
	}
	if code := errCode(t, err); code != "concurrency_conflict" {
		t.Errorf("error code = %s, want concurrency_conflict", code)
	}
}

func TestSubmitClaim(t *testing.T) {
	store := newMemoryStore()
	store.trips["trip-1"] = openTrip("trip-1")

	svc := NewAssignmentService(store, notify.Nop{})
	claim, err := svc.SubmitClaim(context.Background(), "trip-1", "driver-1")
	if err != nil {
		t.Fatalf("SubmitClaim() error = %v", err)
	}
	if claim.Status != models.ClaimStatusPending {
		t.Errorf("claim status = %s, want PENDING", claim.Status)
	}
	if store.trips["trip-1"].ClaimCount != 1 {
		t.Errorf("ClaimCount = %d, want 1", store.trips["trip-1"].ClaimCount)
	}

	// A second claim from the same driver with one still pending is rejected.
	if _, err := svc.SubmitClaim(context.Background(), "trip-1", "driver-1"); err == nil {
		t.Fatal("expected rejection of a duplicate pending claim")
	}

	// Another driver is still free to claim.
	if _, err := svc.SubmitClaim(context.Background(), "trip-1", "driver-2"); err != nil {
		t.Fatalf("second driver's claim failed: %v", err)
	}
	if store.trips["trip-1"].ClaimCount != 2 {
		t.Errorf("ClaimCount = %d, want 2", store.trips["trip-1"].ClaimCount)
	}
}

func TestSubmitClaimOutsideWindow(t *testing.T) {
	tests := []struct {
		name     string
		schedule time.Time
	}{
		{"Before the window opens", time.Now().Add(48 * time.Hour)},
		{"After the scheduled time", time.Now().Add(-1 * time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemoryStore()
			trip := openTrip("trip-1")
			trip.ScheduledTime = tt.schedule
			store.trips["trip-1"] = trip

			svc := NewAssignmentService(store, notify.Nop{})
			_, err := svc.SubmitClaim(context.Background(), "trip-1", "driver-1")
			if err == nil {
				t.Fatal("expected claim rejection outside the window")
			}
			if code := errCode(t, err); code != "conflict" {
				t.Errorf("error code = %s, want conflict", code)
			}
		})
	}
}

func TestSubmitClaimExhaustedLimit(t *testing.T) {
	store := newMemoryStore()
	trip := openTrip("trip-1")
	trip.ClaimLimit = 3
	trip.ClaimCount = 3
	store.trips["trip-1"] = trip

	svc := NewAssignmentService(store, notify.Nop{})
	_, err := svc.SubmitClaim(context.Background(), "trip-1", "driver-4")
	if err == nil {
		t.Fatal("expected claim rejection at the limit")
	}
	if code := errCode(t, err); code != "conflict" {
		t.Errorf("error code = %s, want conflict", code)
	}
	if store.trips["trip-1"].ClaimCount != 3 {
		t.Errorf("ClaimCount = %d, want unchanged 3", store.trips["trip-1"].ClaimCount)
	}
}

func TestConcurrentClaimsRespectLimit(t *testing.T) {
	store := newMemoryStore()
	trip := openTrip("trip-1")
	trip.ClaimLimit = 3
	store.trips["trip-1"] = trip

	svc := NewAssignmentService(store, notify.Nop{})

	const workers = 10
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.SubmitClaim(context.Background(), "trip-1", fmt.Sprintf("driver-%d", i))
		}(i)
	}
	wg.Wait()

	accepted := 0
	for _, err := range errs {
		if err == nil {
			accepted++
		}
	}
	if accepted != 3 {
		t.Errorf("accepted claims = %d, want exactly the limit of 3", accepted)
	}
	if store.trips["trip-1"].ClaimCount != 3 {
		t.Errorf("ClaimCount = %d, want 3", store.trips["trip-1"].ClaimCount)
	}
}

func TestTripNotFound(t *testing.T) {
	store := newMemoryStore()
	svc := NewAssignmentService(store, notify.Nop{})

	if err := svc.Award(context.Background(), "missing", "claim-1", "r", "a"); err == nil {
		t.Error("Award on a missing trip succeeded")
	}
	if err := svc.Unassign(context.Background(), "missing", "r", "a"); err == nil {
		t.Error("Unassign on a missing trip succeeded")
	}
	if _, err := svc.SubmitClaim(context.Background(), "missing", "driver-1"); err == nil {
		t.Error("SubmitClaim on a missing trip succeeded")
	}
}
