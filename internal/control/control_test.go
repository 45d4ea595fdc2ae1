package control

import (
	"path/filepath"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/chanisolator/channel-isolator/internal/policy"
	"github.com/chanisolator/channel-isolator/internal/store"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newTestController(t *testing.T) *Controller {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	c := New(s, policy.NewIndex()).WithClock(fixedClock{t: time.Unix(0, 0).UTC()})
	require.NoError(t, c.RebuildIndex())
	return c
}

func TestIsolateThenAddExceptionThenClassify(t *testing.T) {
	c := newTestController(t)

	_, err := c.Isolate(42, "merchant")
	require.NoError(t, err)

	_, decision, _ := c.index.Classify(800, 42)
	require.Equal(t, policy.DecisionFail, decision)

	_, err = c.AddException(42, 800, "")
	require.NoError(t, err)

	_, decision, reason := c.index.Classify(800, 42)
	require.Equal(t, policy.DecisionResume, decision)
	require.Equal(t, policy.ReasonExceptionMatch, reason)
}

func TestRemoveExceptionRestoresFail(t *testing.T) {
	c := newTestController(t)

	_, err := c.Isolate(42, "")
	require.NoError(t, err)
	_, err = c.AddException(42, 800, "")
	require.NoError(t, err)

	require.NoError(t, c.RemoveException(42, 800))

	_, decision, reason := c.index.Classify(800, 42)
	require.Equal(t, policy.DecisionFail, decision)
	require.Equal(t, policy.ReasonNoException, reason)
}

func TestStopRestoresResume(t *testing.T) {
	c := newTestController(t)

	_, err := c.Isolate(42, "")
	require.NoError(t, err)
	_, err = c.Stop(42)
	require.NoError(t, err)

	_, decision, reason := c.index.Classify(999, 42)
	require.Equal(t, policy.DecisionResume, decision)
	require.Equal(t, policy.ReasonNotIsolated, reason)
}

func TestIsolateTwiceIsAlreadyActive(t *testing.T) {
	c := newTestController(t)

	_, err := c.Isolate(42, "")
	require.NoError(t, err)

	_, err = c.Isolate(42, "")
	require.Equal(t, store.KindAlreadyActive, store.KindOf(err))
}

func TestAddExceptionTwiceIsDuplicate(t *testing.T) {
	c := newTestController(t)

	_, err := c.Isolate(42, "")
	require.NoError(t, err)
	_, err = c.AddException(42, 800, "")
	require.NoError(t, err)

	_, err = c.AddException(42, 800, "")
	require.Equal(t, store.KindDuplicateException, store.KindOf(err))
}

func TestExceptionsRequiresActiveSession(t *testing.T) {
	c := newTestController(t)

	_, err := c.Exceptions(42)
	require.Equal(t, store.KindNotActive, store.KindOf(err))
}

func TestHistoryKeepsEndedSessionAfterStop(t *testing.T) {
	c := newTestController(t)

	_, err := c.Isolate(42, "")
	require.NoError(t, err)
	_, err = c.AddException(42, 800, "")
	require.NoError(t, err)
	_, err = c.Stop(42)
	require.NoError(t, err)

	history, err := c.History(nil)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, store.StatusEnded, history[0].Status)

	// Exceptions for the ended session remain in storage...
	exs, err := c.store.ListExceptions(history[0].ID)
	require.NoError(t, err)
	require.Len(t, exs, 1)

	// ...but no longer affect policy.
	_, decision, _ := c.index.Classify(800, 42)
	require.Equal(t, policy.DecisionResume, decision)
}

func TestNormalizeAliasTruncatesOnRuneBoundary(t *testing.T) {
	long := ""
	for i := 0; i < 300; i++ {
		long += "a"
	}
	got := normalizeAlias(long)
	require.LessOrEqual(t, len(got), maxAliasBytes)

	// Two-byte characters: a cut at byte 256 must not leave half a
	// character behind.
	for _, prefix := range []string{"", "a"} {
		multi := prefix
		for i := 0; i < 200; i++ {
			multi += "é"
		}
		got = normalizeAlias(multi)
		require.LessOrEqual(t, len(got), maxAliasBytes)
		require.True(t, utf8.ValidString(got), "truncated alias is not valid UTF-8: %q", got)
	}
}
