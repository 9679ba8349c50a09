package pipeline

import "github.com/segwise-dev/segwise/internal/rules"

// Diagnostics summarizes non-fatal findings from one run. Collected during
// processing and surfaced once at the end; warnings never interrupt the run.
type Diagnostics struct {
	TotalRows          int
	SettledRows        int
	NonSettledExcluded int

	DuplicateRows     int // exact payload duplicates observed
	DuplicatesDropped int // removed when dedupe_transactions is set
	OutOfOrderRows    int // accepted via stable sort, never rejected

	UnresolvedPairs    []rules.PairCount // within tolerance, excluded from processing
	UnresolvedExcluded int

	ZeroSettledUsers     int // users with no settled rows, excluded from all output
	CarriedForwardMonths int // user-months reported with no settled activity
	CarryForwardUsers    int // users with at least one carried-forward month
}
