// Package store_test tests the durable landing log.
package store_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/book-expert/logger"
	"github.com/craigybabyj/landing-judge/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*store.Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "landings.json")

	testLogger, err := logger.New(t.TempDir(), "store-test.log")
	require.NoError(t, err)

	s, err := store.New(path, testLogger)
	require.NoError(t, err)

	return s, path
}

func TestNewCreatesEmptyLog(t *testing.T) {
	t.Parallel()

	s, path := newTestStore(t)

	assert.Empty(t, s.GetAll())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"landings":[]}`, string(data))
}

func TestAppendRoundTrip(t *testing.T) {
	t.Parallel()

	s, path := newTestStore(t)

	require.NoError(t, s.Append(7, "2026-08-30T10:00:00Z"))
	require.NoError(t, s.Append(3, "2026-08-30T10:01:00Z"))
	require.NoError(t, s.Append(10, "2026-08-30T10:02:00Z"))

	want := []store.Landing{
		{Score: 7, TS: "2026-08-30T10:00:00Z"},
		{Score: 3, TS: "2026-08-30T10:01:00Z"},
		{Score: 10, TS: "2026-08-30T10:02:00Z"},
	}
	assert.Equal(t, want, s.GetAll())

	// Reloading from the same file yields the identical ordered sequence.
	testLogger, err := logger.New(t.TempDir(), "store-test.log")
	require.NoError(t, err)

	reloaded, err := store.New(path, testLogger)
	require.NoError(t, err)
	assert.Equal(t, want, reloaded.GetAll())
}

func TestCorruptFileSelfHeals(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "landings.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	testLogger, err := logger.New(t.TempDir(), "store-test.log")
	require.NoError(t, err)

	s, err := store.New(path, testLogger)
	require.NoError(t, err)
	assert.Empty(t, s.GetAll())

	require.NoError(t, s.Append(5, "2026-08-30T10:00:00Z"))
	assert.Equal(t, []store.Landing{{Score: 5, TS: "2026-08-30T10:00:00Z"}}, s.GetAll())
}

func TestMissingLandingsFieldSelfHeals(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "landings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"other": 1}`), 0o600))

	testLogger, err := logger.New(t.TempDir(), "store-test.log")
	require.NoError(t, err)

	s, err := store.New(path, testLogger)
	require.NoError(t, err)
	assert.Empty(t, s.GetAll())

	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)

	var doc map[string]any

	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Contains(t, doc, "landings")
}

func TestReset(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)

	require.NoError(t, s.Append(8, "2026-08-30T10:00:00Z"))
	require.NoError(t, s.Reset())
	assert.Empty(t, s.GetAll())
}

func TestConcurrentAppendsAreSerialized(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)

	const appenders = 8

	var wg sync.WaitGroup

	for i := 0; i < appenders; i++ {
		wg.Add(1)

		go func(score int) {
			defer wg.Done()

			require.NoError(t, s.Append(score%10+1, "2026-08-30T10:00:00Z"))
		}(i)
	}

	wg.Wait()

	assert.Len(t, s.GetAll(), appenders)
}
