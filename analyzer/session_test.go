package analyzer

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalysisSession_TrackQuery(t *testing.T) {
	session := NewAnalysisSession("user_list", "view")

	session.TrackQuery("SELECT * FROM users", 4.2)
	session.TrackQueryOn("replica", "SELECT * FROM profiles WHERE user_id = 1", 1.1)
	session.TrackQueryOn("", "SELECT * FROM profiles WHERE user_id = 2", 1.2)
	session.Stop()

	records, metrics := session.Drain()
	require.Len(t, records, 3)

	assert.Equal(t, "default", records[0].ConnectionAlias)
	assert.Equal(t, "replica", records[1].ConnectionAlias)
	assert.Equal(t, "default", records[2].ConnectionAlias)
	assert.Equal(t, 4.2, records[0].DurationMS)
	assert.Equal(t, 3, metrics.QueryCount)
}

func TestAnalysisSession_CacheAndMemory(t *testing.T) {
	session := NewAnalysisSession("cached_op", "view")

	for i := 0; i < 8; i++ {
		session.TrackCache(true)
	}
	session.TrackCache(false)
	session.TrackCache(false)
	session.SetMemory(85, 12, 4)
	session.Stop()

	_, metrics := session.Drain()
	assert.Equal(t, 8, metrics.CacheHits)
	assert.Equal(t, 2, metrics.CacheMisses)
	assert.InDelta(t, 0.8, metrics.CacheHitRatio, 0.001)
	assert.Equal(t, 85.0, metrics.MemoryUsageMB)
	assert.Equal(t, 12.0, metrics.MemoryOverheadMB)
	assert.Equal(t, 4.0, metrics.MemoryDeltaMB)
}

func TestAnalysisSession_StopFreezesResponseTime(t *testing.T) {
	session := NewAnalysisSession("frozen", "view")
	session.Stop()
	session.Stop() // second stop is a no-op

	_, first := session.Drain()
	_, second := session.Drain()
	assert.Equal(t, first.ResponseTimeMS, second.ResponseTimeMS)
}

func TestAnalysisSession_ConcurrentTracking(t *testing.T) {
	session := NewAnalysisSession("parallel", "view")

	const workers = 8
	const perWorker = 50

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				session.TrackQuery(fmt.Sprintf("SELECT * FROM t%d WHERE id = %d", w, i), 0.5)
				session.TrackCache(i%2 == 0)
			}
		}(w)
	}
	wg.Wait()
	session.Stop()

	records, metrics := session.Drain()
	assert.Len(t, records, workers*perWorker)
	assert.Equal(t, workers*perWorker, metrics.CacheHits+metrics.CacheMisses)
}

func TestAnalysisSession_DrainIsSnapshot(t *testing.T) {
	session := NewAnalysisSession("snapshot", "view")
	session.TrackQuery("SELECT * FROM users", 1)

	records, _ := session.Drain()
	session.TrackQuery("SELECT * FROM orders", 1)

	// The earlier snapshot does not see the later append.
	assert.Len(t, records, 1)

	laterRecords, metrics := session.Drain()
	assert.Len(t, laterRecords, 2)
	assert.Equal(t, 2, metrics.QueryCount)
}

func TestAnalysisSession_UniqueIDs(t *testing.T) {
	a := NewAnalysisSession("op", "view")
	b := NewAnalysisSession("op", "view")
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}
