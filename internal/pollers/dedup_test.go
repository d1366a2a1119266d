package pollers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupTracker_SeedAndSeenBefore(t *testing.T) {
	d := newDedupTracker([]string{"a", "b"}, 10)
	assert.True(t, d.seenBefore("a"))
	assert.False(t, d.seenBefore("c"))
}

func TestDedupTracker_EvictsOldestBeyondWindow(t *testing.T) {
	d := newDedupTracker(nil, 2)
	d.record("1")
	d.record("2")
	d.record("3")

	assert.False(t, d.seenBefore("1"))
	assert.True(t, d.seenBefore("2"))
	assert.True(t, d.seenBefore("3"))
	assert.Equal(t, "3", d.last())
}

func TestDedupTracker_RecordIsIdempotent(t *testing.T) {
	d := newDedupTracker(nil, 10)
	d.record("x")
	d.record("x")
	assert.Equal(t, []string{"x"}, d.ids())
}
