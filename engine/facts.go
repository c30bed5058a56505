/*
facts.go - External collaborator interfaces and report construction

PURPOSE:
  The engine's only boundary is data: facts and policies arrive as
  already-parsed records from the backend, and the engine never learns the
  wire format. FactSource and PolicySource are the two collaborator
  interfaces; Builder turns a (policy, range) pair into a fresh report.

SEE ALSO:
  - loader.go: Last-request-wins coordination over Builder
  - store/memory.go: In-memory implementation for tests and dev
  - store/sqlite: SQLite-backed implementation
*/
package engine

import (
	"context"
	"fmt"
)

// =============================================================================
// COLLABORATOR INTERFACES
// =============================================================================

// FactSource supplies backend-observed facts for every date in a range,
// ascending. One element per date in [from, to].
type FactSource interface {
	FactsInRange(ctx context.Context, from, to Date) ([]DateFact, error)
}

// PolicySource supplies the policy descriptor for a leave type.
type PolicySource interface {
	PolicyFor(ctx context.Context, id LeaveTypeID) (PolicyDescriptor, error)
}

// =============================================================================
// BUILDER - (policy, range) -> fresh EligibilityReport
// =============================================================================

// Builder fetches facts and assembles a report with default selections.
type Builder struct {
	Facts FactSource
}

// Build fetches facts for [from, to], evaluates them under the policy and
// returns a report with every entry at its verdict default.
func (b *Builder) Build(ctx context.Context, policy PolicyDescriptor, from, to Date) (*EligibilityReport, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("build report %s..%s: %w", from, to, ErrInvalidRange)
	}

	facts, err := b.Facts.FactsInRange(ctx, from, to)
	if err != nil {
		return nil, &FactsUnavailableError{Op: "facts", Cause: err}
	}

	verdicts := Evaluate(policy, facts)
	return NewReport(policy, from, to, verdicts), nil
}
