package database

import (
	"testing"
)

// TestIncrementConcurrentSameKey documents the concurrency contract for the
// daily counters.
func TestIncrementConcurrentSameKey(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}

	// This test would require a test database setup
	// For now, we document the expected behavior:
	//
	// GIVEN: An empty condition_trending table
	// WHEN: N goroutines call Increment for the same (date, code, sourceType)
	// THEN: Exactly one row exists with count = N
	//
	// The unique constraint on (trend_date, code, source_type) plus
	// ON CONFLICT ... count = count + 1 makes the increment atomic; no
	// read-modify-write race is possible.
	t.Log("Expected: one row per (date, code, source_type) with count equal to the number of increments")
}

// TestTopConditionsAggregatesAcrossDays documents the aggregation contract.
func TestTopConditionsAggregatesAcrossDays(t *testing.T) {
	// GIVEN: MD90.0 counted 3x on Monday and 2x on Tuesday (same source type)
	// WHEN: TopConditions is called with since = Monday
	// THEN: A single MD90.0 entry with count = 5
	//
	// An empty source type aggregates across appointment and health_record.
	t.Log("Counts for the same code across days within the window are summed")
}
