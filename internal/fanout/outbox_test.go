package fanout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutbox_EvictsOldestNonCriticalWhenFull(t *testing.T) {
	o := newOutbox(2)
	require.NoError(t, o.push([]byte("1"), false))
	require.NoError(t, o.push([]byte("2"), false))
	require.NoError(t, o.push([]byte("3"), false)) // evicts "1"

	f, ok := o.pop()
	require.True(t, ok)
	assert.Equal(t, "2", string(f.data))

	f, ok = o.pop()
	require.True(t, ok)
	assert.Equal(t, "3", string(f.data))
}

func TestOutbox_CriticalFrameEvictsNonCriticalFirst(t *testing.T) {
	o := newOutbox(1)
	require.NoError(t, o.push([]byte("noncritical"), false))
	require.NoError(t, o.push([]byte("critical"), true))

	f, ok := o.pop()
	require.True(t, ok)
	assert.Equal(t, "critical", string(f.data))
}

func TestOutbox_CriticalFrameReturnsLaggingWhenBufferFullOfCriticals(t *testing.T) {
	o := newOutbox(1)
	require.NoError(t, o.push([]byte("critical-1"), true))
	err := o.push([]byte("critical-2"), true)
	assert.ErrorIs(t, err, errSessionLagging)
}

func TestOutbox_DropsNonCriticalSilentlyWhenNoRoom(t *testing.T) {
	o := newOutbox(1)
	require.NoError(t, o.push([]byte("critical"), true))
	err := o.push([]byte("dropped"), false)
	assert.NoError(t, err)

	f, ok := o.pop()
	require.True(t, ok)
	assert.Equal(t, "critical", string(f.data))
	_, ok = o.pop()
	assert.False(t, ok)
}
