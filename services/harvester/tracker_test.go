package harvester

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSessionTracker(t *testing.T) {
	tracker := NewSessionTracker()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Fetched()
			tracker.Parsed()
			tracker.Saved()
			tracker.SkippedDuplicate()
			tracker.Rewritten()
			tracker.Failed()
		}()
	}
	wg.Wait()

	snapshot := tracker.Snapshot()
	require.Equal(t, int64(10), snapshot.Fetched)
	require.Equal(t, int64(10), snapshot.Parsed)
	require.Equal(t, int64(10), snapshot.Saved)
	require.Equal(t, int64(10), snapshot.SkippedDuplicate)
	require.Equal(t, int64(10), snapshot.Rewritten)
	require.Equal(t, int64(10), snapshot.Failed)
	require.Greater(t, snapshot.Elapsed, time.Duration(0))
}
