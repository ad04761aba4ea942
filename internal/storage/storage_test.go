package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/legislator-ages/internal/legislator"
	"github.com/pfrederiksen/legislator-ages/internal/wikidate"
	"github.com/pfrederiksen/legislator-ages/internal/wikipedia"
)

var fetched = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func sampleSnapshot() *Snapshot {
	jane := legislator.NewRecord("us-senators", legislator.Row{
		"Senator": "Jane Doe",
		"Born":    "(1950-03-04) March 4, 1950 (age 73)",
	}, "Senator", fetched)
	jane.SetAge(wikidate.CalendarDate{Year: 1950, Month: time.March, Day: 4}, 73, "", "born-column")
	declared := 73
	jane.DeclaredAge = &declared

	john := legislator.NewRecord("us-senators", legislator.Row{"Senator": "John Roe", "Born": "unknown"}, "Senator", fetched)
	john.SetError("born-column", errors.New("no ISO date"))

	return NewSnapshot("us-senators", "https://example.org/senators", []string{"Senator", "Born"},
		[]*legislator.Record{jane, john}, fetched)
}

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(t.TempDir())
	require.NoError(t, err)
	s.now = func() time.Time { return fetched.Add(time.Hour) }
	return s
}

func TestNew_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s, err := New(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, s.Dir())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandHome("~/.local/share/legislator-ages")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".local/share/legislator-ages"), got)

	got, err = ExpandHome("/var/data")
	require.NoError(t, err)
	assert.Equal(t, "/var/data", got)
}

func TestNewSnapshot(t *testing.T) {
	snap := sampleSnapshot()
	_, err := uuid.Parse(snap.RunID)
	assert.NoError(t, err)
	assert.NotEqual(t, snap.RunID, sampleSnapshot().RunID)
}

func TestSaveLoad_JSON(t *testing.T) {
	s := newTestStorage(t)
	snap := sampleSnapshot()

	require.NoError(t, s.Save(snap, "us_senators", "senators"))
	assert.FileExists(t, filepath.Join(s.Dir(), "us_senators", "senators.json"))
	assert.FileExists(t, filepath.Join(s.Dir(), "us_senators", "senators.msgpack"))

	got, err := s.Load("us_senators", "senators")
	require.NoError(t, err)

	assert.Equal(t, snap.RunID, got.RunID)
	assert.Equal(t, "2024-01-01T13:00:00Z", got.UpdatedAt)
	assert.Equal(t, []string{"Senator", "Born"}, got.Columns)
	require.Len(t, got.Records, 2)
	assert.Equal(t, 73, *got.Records[0].Age)
	assert.Equal(t, "1950-03-04", got.Records[0].BirthDate.String())
	assert.Equal(t, 73, *got.Records[0].DeclaredAge)
	assert.Nil(t, got.Records[1].Age)
	assert.Equal(t, "no ISO date", got.Records[1].Error)
}

func TestSave_FailureKeepsPreviousFiles(t *testing.T) {
	s := newTestStorage(t)
	first := sampleSnapshot()
	require.NoError(t, s.Save(first, "us_senators", "senators"))

	// A directory in the way of the msgpack staging file makes the second save fail.
	base := filepath.Join(s.Dir(), "us_senators", "senators")
	require.NoError(t, os.Mkdir(base+".msgpack.tmp", 0755))

	second := sampleSnapshot()
	require.NotEqual(t, first.RunID, second.RunID)
	require.Error(t, s.Save(second, "us_senators", "senators"))

	fromJSON, err := s.Load("us_senators", "senators")
	require.NoError(t, err)
	assert.Equal(t, first.RunID, fromJSON.RunID)

	fromMsgpack, err := s.LoadMsgpack("us_senators", "senators")
	require.NoError(t, err)
	assert.Equal(t, first.RunID, fromMsgpack.RunID)

	assert.NoFileExists(t, base+".json.tmp")
}

func TestSaveLoad_Msgpack(t *testing.T) {
	s := newTestStorage(t)
	snap := sampleSnapshot()
	require.NoError(t, s.Save(snap, "us_senators", EnrichedName("senators")))

	fromJSON, err := s.Load("us_senators", "senators-with-ages")
	require.NoError(t, err)
	fromPack, err := s.LoadMsgpack("us_senators", "senators-with-ages")
	require.NoError(t, err)

	assert.Equal(t, fromJSON.RunID, fromPack.RunID)
	assert.Equal(t, fromJSON.Columns, fromPack.Columns)
	assert.True(t, fromJSON.FetchedAt.Equal(fromPack.FetchedAt))
	require.Len(t, fromPack.Records, 2)
	for i := range fromJSON.Records {
		a, b := fromJSON.Records[i], fromPack.Records[i]
		assert.Equal(t, a.ID, b.ID)
		assert.Equal(t, a.Row, b.Row)
		assert.Equal(t, a.Age, b.Age)
		assert.Equal(t, a.BirthDate, b.BirthDate)
		assert.Equal(t, a.Error, b.Error)
	}
}

func TestLoad_NotFound(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.Load("ca_reps", "ca_reps_with_links")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	_, err = s.LoadMsgpack("ca_reps", "ca_reps_with_links")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestLoad_Corrupt(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, os.MkdirAll(filepath.Join(s.Dir(), "x"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "x", "y.json"), []byte("{not json"), 0644))

	_, err := s.Load("x", "y")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrSnapshotNotFound))
}

func TestPageCache(t *testing.T) {
	s := newTestStorage(t)

	empty, err := s.LoadCache()
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Size())

	cache := wikipedia.NewCache()
	cache.Set("birth_date", "Jane Doe", "{{birth date and age|1950|3|4}}", nil)
	cache.Set("birth_date", "John Roe", "", wikipedia.ErrDisambiguation)
	require.NoError(t, s.SaveCache(cache))

	loaded, err := s.LoadCache()
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Size())
	e := loaded.Get("birth_date", "Jane Doe")
	require.NotNil(t, e)
	assert.Equal(t, "{{birth date and age|1950|3|4}}", e.Value)
	assert.Equal(t, wikipedia.DefaultCacheTTL, loaded.TTL)
}
