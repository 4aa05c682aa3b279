package Sync

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const (
	feedEmpty    = "<Changes LastChangeToken='1;3;5'></Changes>"
	feedWithRow  = "<Changes LastChangeToken='1;3;6'><z:row ows_ID='12' ows_ChangeType='Add' /></Changes>"
	feedWithDel  = "<Changes LastChangeToken='1;3;7'><Id ChangeType=\"Delete\">12</Id></Changes>"
	feedNoToken  = "<Changes></Changes>"
	feedNextIdle = "<Changes LastChangeToken='1;3;8'></Changes>"
)

func TestFirstCallEstablishesBaseline(t *testing.T) {
	state := &TokenState{}
	// Even a feed full of changes reports nothing on the first call.
	assert.False(t, ProcessChangeResult(feedWithRow, state))
	assert.Equal(t, "1;3;6", state.LastToken)
}

func TestRowMarkerReportsChange(t *testing.T) {
	state := &TokenState{LastToken: "1;3;5"}
	assert.True(t, ProcessChangeResult(feedWithRow, state))
	assert.Equal(t, "1;3;6", state.LastToken)
}

func TestDeleteMarkerReportsChange(t *testing.T) {
	state := &TokenState{LastToken: "1;3;5"}
	assert.True(t, ProcessChangeResult(feedWithDel, state))
	assert.Equal(t, "1;3;7", state.LastToken)
}

func TestQuietFeedReportsNoChangeButAdvancesToken(t *testing.T) {
	state := &TokenState{LastToken: "1;3;5"}
	assert.False(t, ProcessChangeResult(feedNextIdle, state))
	assert.Equal(t, "1;3;8", state.LastToken)
}

func TestMalformedFeedAssumesChanged(t *testing.T) {
	state := &TokenState{LastToken: "1;3;5"}
	assert.True(t, ProcessChangeResult(feedNoToken, state))
	// The token survives so the next well-formed poll diffs from the last
	// known position.
	assert.Equal(t, "1;3;5", state.LastToken)
}

func TestMalformedFeedBeforeBaselineStaysQuiet(t *testing.T) {
	state := &TokenState{}
	assert.False(t, ProcessChangeResult(feedNoToken, state))
	assert.Empty(t, state.LastToken)
}

func TestMonitorSingleInFlightPoll(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var startedOnce sync.Once
	m := NewMonitor(func(token string) (string, error) {
		startedOnce.Do(func() { close(started) })
		<-release
		return feedWithRow, nil
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		m.Check() // baseline poll, blocked on release
	}()

	<-started
	// Overlapping poll must not interleave; it reports no change.
	assert.False(t, m.Check())
	close(release)
	wg.Wait()

	// Baseline established, the next changed feed is now reported.
	assert.True(t, m.Check())
}

func TestMonitorSwallowsFetchErrors(t *testing.T) {
	calls := 0
	m := NewMonitor(func(token string) (string, error) {
		calls++
		if calls == 1 {
			return "", assert.AnError
		}
		return feedEmpty, nil
	})
	assert.False(t, m.Check())
	// The loop keeps going; the next poll establishes the baseline.
	assert.False(t, m.Check())
	assert.Equal(t, 2, calls)
}

func TestCacheInvalidateByTag(t *testing.T) {
	c := NewCache()
	c.Set("TASKS|users=1", []int{1})
	c.Set("TASKS|users=2", []int{2})
	c.Set("OTHER|x", 3)

	c.Invalidate("TASKS")

	_, ok := c.Get("TASKS|users=1")
	assert.False(t, ok)
	_, ok = c.Get("TASKS|users=2")
	assert.False(t, ok)
	_, ok = c.Get("OTHER|x")
	assert.True(t, ok)
}

func TestServiceResumeWithoutFilterStaysQuiet(t *testing.T) {
	s := NewService(nil, 10*time.Millisecond)
	// No active filter yet: resume must not panic or poll.
	s.Suspend("1")
	time.Sleep(20 * time.Millisecond)
	tasksChanged, logsChanged := s.Resume("1")
	assert.False(t, tasksChanged)
	assert.False(t, logsChanged)
	s.Stop()
}
