package services

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStoreGetCreates(t *testing.T) {
	store := &SessionStore{sessions: make(map[string]*SessionMemory)}

	sess := store.Get("abc")
	require.NotNil(t, sess)
	assert.Equal(t, "abc", sess.SessionID)
	assert.Equal(t, "en", sess.DetectedLanguage)
	assert.Equal(t, 1, store.Count())

	// Same id returns the same session.
	sess.DetectedLanguage = "ar"
	again := store.Get("abc")
	assert.Equal(t, "ar", again.DetectedLanguage)
	assert.Equal(t, 1, store.Count())
}

func TestSessionStoreClear(t *testing.T) {
	store := &SessionStore{sessions: make(map[string]*SessionMemory)}
	store.Get("abc")

	assert.True(t, store.Clear("abc"))
	assert.False(t, store.Clear("abc"))
	assert.Equal(t, 0, store.Count())
}

func TestSessionStoreCleanupStale(t *testing.T) {
	store := &SessionStore{sessions: make(map[string]*SessionMemory)}
	old := store.Get("old")
	old.LastActivity = time.Now().Add(-2 * time.Hour)
	store.Get("fresh")

	removed := store.CleanupStale(time.Hour)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, store.Count())
}

func TestHistoryTrimsToWindow(t *testing.T) {
	sess := &SessionMemory{SessionID: "s"}
	for i := 0; i < maxHistoryMessages+10; i++ {
		sess.AppendHistory("user", fmt.Sprintf("message %d", i))
	}

	assert.Len(t, sess.History, maxHistoryMessages)
	// The oldest surviving message is number 10.
	assert.Equal(t, "message 10", sess.History[0].Content)
}

func TestRecentHistory(t *testing.T) {
	sess := &SessionMemory{SessionID: "s"}
	for i := 0; i < 5; i++ {
		sess.AppendHistory("user", fmt.Sprintf("m%d", i))
	}

	recent := sess.RecentHistory(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "m3", recent[0].Content)
	assert.Equal(t, "m4", recent[1].Content)

	assert.Len(t, sess.RecentHistory(100), 5)
}

func TestSessionMemoryConcurrentAccess(t *testing.T) {
	sess := &SessionMemory{SessionID: "s"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				sess.AppendHistory("user", fmt.Sprintf("g%d m%d", n, j))
				sess.RecentHistory(10)
				sess.ResetTurnFlags()
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, sess.History, maxHistoryMessages)
}

func TestSessionTurnSerialization(t *testing.T) {
	sess := &SessionMemory{SessionID: "s"}

	var inTurn int32
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess.BeginTurn()
			defer sess.EndTurn()

			assert.Equal(t, int32(1), atomic.AddInt32(&inTurn, 1), "only one turn may run at a time")
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inTurn, -1)
		}()
	}
	wg.Wait()
}

func TestResetTurnFlags(t *testing.T) {
	sess := &SessionMemory{
		NewResultsFetched: true,
		AlternativeSearch: true,
		PaymentPlanUsed:   true,
		SQLAgentUsed:      true,
		FuzzyField:        "room",
		OriginalValue:     "3",
	}
	sess.ResetTurnFlags()

	assert.False(t, sess.NewResultsFetched)
	assert.False(t, sess.AlternativeSearch)
	assert.False(t, sess.PaymentPlanUsed)
	assert.False(t, sess.SQLAgentUsed)
	assert.Empty(t, sess.FuzzyField)
	assert.Empty(t, sess.OriginalValue)
}
