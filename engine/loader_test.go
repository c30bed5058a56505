package engine_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/warp/leave-engine/engine"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// gatedFacts blocks each FactsInRange call until released, so tests control
// exactly when an in-flight fetch completes relative to newer requests.
type gatedFacts struct {
	mu      sync.Mutex
	gates   []chan struct{}
	started chan struct{}
}

func newGatedFacts() *gatedFacts {
	return &gatedFacts{started: make(chan struct{}, 16)}
}

// nextGate registers the gate for the next call, in call order.
func (g *gatedFacts) nextGate() chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	gate := make(chan struct{})
	g.gates = append(g.gates, gate)
	return gate
}

func (g *gatedFacts) FactsInRange(ctx context.Context, from, to engine.Date) ([]engine.DateFact, error) {
	g.mu.Lock()
	var gate chan struct{}
	if len(g.gates) > 0 {
		gate = g.gates[0]
		g.gates = g.gates[1:]
	}
	g.mu.Unlock()

	g.started <- struct{}{}

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	var facts []engine.DateFact
	for _, d := range engine.DatesInRange(from, to) {
		facts = append(facts, workingDay(d))
	}
	return facts, nil
}

func awaitReport(t *testing.T, loader *engine.Loader) *engine.EligibilityReport {
	t.Helper()
	select {
	case report := <-loader.Reports():
		return report
	case err := <-loader.Errors():
		t.Fatalf("unexpected error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a report")
	}
	return nil
}

// =============================================================================
// BASIC DELIVERY
// =============================================================================

func TestLoader_SingleRequest_DeliversReport(t *testing.T) {
	// GIVEN: A loader over an immediate fact source
	// WHEN: One request is made
	// THEN: The built report for that (policy, range) arrives

	facts := newGatedFacts()
	loader := engine.NewLoader(facts)
	defer loader.Close()

	policy := dayByDayPolicy(true)
	from := date(2024, time.March, 4)
	to := date(2024, time.March, 8)
	loader.Request(context.Background(), policy, from, to)

	report := awaitReport(t, loader)
	if report.Policy.LeaveTypeID != policy.LeaveTypeID {
		t.Errorf("expected policy %s, got %s", policy.LeaveTypeID, report.Policy.LeaveTypeID)
	}
	if report.DateFrom != from || report.DateTo != to {
		t.Errorf("expected range %s..%s, got %s..%s", from, to, report.DateFrom, report.DateTo)
	}
}

func TestLoader_FetchFailure_DeliversError(t *testing.T) {
	// GIVEN: A loader over a failing fact source
	// WHEN: A request is made
	// THEN: The failure surfaces on Errors() as a retryable error

	loader := engine.NewLoader(failingFacts{})
	defer loader.Close()

	loader.Request(context.Background(), dayByDayPolicy(true),
		date(2024, time.March, 4), date(2024, time.March, 5))

	select {
	case err := <-loader.Errors():
		if !engine.IsRetryable(err) {
			t.Errorf("expected a retryable error, got %v", err)
		}
	case report := <-loader.Reports():
		t.Fatalf("unexpected report: %+v", report)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the error")
	}
}

// =============================================================================
// SUPERSESSION
// =============================================================================

func TestLoader_NewerRequest_SupersedesInFlight(t *testing.T) {
	// GIVEN: A slow fetch for policy A still in flight
	// WHEN: A request for policy B arrives, then the A fetch completes
	// THEN: Only the B report is ever delivered

	facts := newGatedFacts()
	loader := engine.NewLoader(facts)
	defer loader.Close()

	from := date(2024, time.March, 4)
	to := date(2024, time.March, 8)

	gateA := facts.nextGate()
	policyA := dayByDayPolicy(true)
	loader.Request(context.Background(), policyA, from, to)
	<-facts.started // A is in flight

	policyB := engine.PolicyDescriptor{LeaveTypeID: "B"}
	loader.Request(context.Background(), policyB, from, to)
	<-facts.started

	close(gateA) // let the stale fetch finish

	report := awaitReport(t, loader)
	if report.Policy.LeaveTypeID != "B" {
		t.Fatalf("stale report delivered: policy %s", report.Policy.LeaveTypeID)
	}

	// Nothing else arrives for the superseded fetch.
	select {
	case stale := <-loader.Reports():
		t.Fatalf("superseded report delivered: policy %s", stale.Policy.LeaveTypeID)
	case err := <-loader.Errors():
		t.Fatalf("superseded fetch surfaced an error: %v", err)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestLoader_UnconsumedStaleReport_Replaced(t *testing.T) {
	// GIVEN: A delivered report nobody has read yet
	// WHEN: A newer request completes
	// THEN: Reading Reports() yields the newest report

	facts := newGatedFacts()
	loader := engine.NewLoader(facts)
	defer loader.Close()

	from := date(2024, time.March, 4)
	to := date(2024, time.March, 5)

	loader.Request(context.Background(), engine.PolicyDescriptor{LeaveTypeID: "first"}, from, to)
	<-facts.started

	// Wait until the first report is parked in the channel before superseding,
	// then let the second fetch run to completion.
	deadline := time.After(2 * time.Second)
	for len(loader.Reports()) == 0 {
		select {
		case <-deadline:
			t.Fatal("first report never delivered")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	loader.Request(context.Background(), engine.PolicyDescriptor{LeaveTypeID: "second"}, from, to)
	<-facts.started

	// The parked first report may be read before the second lands or be
	// silently replaced by it; either way the second is the last word.
	for {
		report := awaitReport(t, loader)
		if report.Policy.LeaveTypeID == "second" {
			return
		}
		if report.Policy.LeaveTypeID != "first" {
			t.Fatalf("unexpected report: policy %s", report.Policy.LeaveTypeID)
		}
	}
}

func TestLoader_Close_DiscardsInFlight(t *testing.T) {
	// GIVEN: A fetch in flight
	// WHEN: The loader closes
	// THEN: Neither a report nor an error is delivered

	facts := newGatedFacts()
	loader := engine.NewLoader(facts)

	gate := facts.nextGate()
	loader.Request(context.Background(), dayByDayPolicy(true),
		date(2024, time.March, 4), date(2024, time.March, 5))
	<-facts.started

	loader.Close()
	close(gate)

	select {
	case report := <-loader.Reports():
		t.Fatalf("report delivered after close: %+v", report)
	case err := <-loader.Errors():
		t.Fatalf("error delivered after close: %v", err)
	case <-time.After(100 * time.Millisecond):
	}
}

// =============================================================================
// CANCELLATION PROPAGATION
// =============================================================================

func TestLoader_SupersededFetch_ContextCancelled(t *testing.T) {
	// GIVEN: A fetch blocked inside the fact source
	// WHEN: A newer request supersedes it
	// THEN: The blocked fetch's context is cancelled so it can abort early

	facts := newGatedFacts()
	loader := engine.NewLoader(facts)
	defer loader.Close()

	from := date(2024, time.March, 4)
	to := date(2024, time.March, 5)

	facts.nextGate() // never released; only cancellation can unblock
	loader.Request(context.Background(), engine.PolicyDescriptor{LeaveTypeID: "stale"}, from, to)
	<-facts.started

	loader.Request(context.Background(), engine.PolicyDescriptor{LeaveTypeID: "fresh"}, from, to)
	<-facts.started

	report := awaitReport(t, loader)
	if report.Policy.LeaveTypeID != "fresh" {
		t.Fatalf("expected the fresh report, got %s", report.Policy.LeaveTypeID)
	}
}

// =============================================================================
// SANITY
// =============================================================================

func TestLoader_CancelledParentContext_NoErrorSurfaced(t *testing.T) {
	// GIVEN: A request whose parent context is already cancelled
	// WHEN: The fetch runs
	// THEN: Cancellation is silent; a later request still works

	facts := newGatedFacts()
	loader := engine.NewLoader(facts)
	defer loader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gate := facts.nextGate()
	loader.Request(ctx, dayByDayPolicy(true), date(2024, time.March, 4), date(2024, time.March, 5))
	<-facts.started
	close(gate)

	select {
	case err := <-loader.Errors():
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("unexpected error: %v", err)
		}
		t.Fatal("cancellation must not surface as a fetch failure")
	case <-time.After(100 * time.Millisecond):
	}

	loader.Request(context.Background(), dayByDayPolicy(true),
		date(2024, time.March, 4), date(2024, time.March, 5))
	<-facts.started
	report := awaitReport(t, loader)
	if report == nil {
		t.Fatal("expected a report after recovery")
	}
}
