package storage

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/pfrederiksen/legislator-ages/internal/legislator"
	"github.com/pfrederiksen/legislator-ages/internal/wikipedia"
)

// EnrichedSuffix is appended to a file name for snapshots with computed ages.
const EnrichedSuffix = "-with-ages"

const pageCacheFile = "page_cache.json"

// ErrSnapshotNotFound is returned when a snapshot has not been saved yet.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Snapshot is one scrape of a source, optionally with computed ages.
type Snapshot struct {
	RunID     string               `json:"run_id" msgpack:"run_id"`
	Source    string               `json:"source" msgpack:"source"`
	URL       string               `json:"url" msgpack:"url"`
	FetchedAt time.Time            `json:"fetched_at" msgpack:"fetched_at"`
	UpdatedAt string               `json:"updated_at" msgpack:"updated_at"` // RFC3339 timestamp
	Columns   []string             `json:"columns" msgpack:"columns"`
	Records   []*legislator.Record `json:"records" msgpack:"-"`
}

// NewSnapshot creates a snapshot with a fresh run ID.
func NewSnapshot(source, url string, columns []string, records []*legislator.Record, fetchedAt time.Time) *Snapshot {
	return &Snapshot{
		RunID:     uuid.NewString(),
		Source:    source,
		URL:       url,
		FetchedAt: fetchedAt.UTC(),
		Columns:   columns,
		Records:   records,
	}
}

// Storage handles persistence of snapshots
type Storage struct {
	dataDir string
	now     func() time.Time
}

// New creates a new Storage instance
func New(dataDir string) (*Storage, error) {
	dataDir, err := ExpandHome(dataDir)
	if err != nil {
		return nil, err
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{
		dataDir: dataDir,
		now:     time.Now,
	}, nil
}

// ExpandHome expands a leading ~/ to the user's home directory.
func ExpandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}

// Dir returns the expanded data directory.
func (s *Storage) Dir() string {
	return s.dataDir
}

// EnrichedName returns the file name used for a snapshot with ages.
func EnrichedName(file string) string {
	return file + EnrichedSuffix
}

// Path returns the path of a snapshot file without extension.
func (s *Storage) Path(dir, file string) string {
	return filepath.Join(s.dataDir, dir, file)
}

// Save writes snap as <dir>/<file>.json and <dir>/<file>.msgpack. Both
// files are staged first, so a failed save leaves the previous pair intact.
func (s *Storage) Save(snap *Snapshot, dir, file string) error {
	if err := os.MkdirAll(filepath.Join(s.dataDir, dir), 0755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	snap.UpdatedAt = s.now().UTC().Format(time.RFC3339)
	base := s.Path(dir, file)

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	jsonTmp := base + ".json.tmp"
	if err := os.WriteFile(jsonTmp, data, 0644); err != nil {
		os.Remove(jsonTmp) // nolint:errcheck
		return fmt.Errorf("writing %s: %w", jsonTmp, err)
	}

	msgpackTmp := base + ".msgpack.tmp"
	if err := writeMsgpack(msgpackTmp, snap); err != nil {
		os.Remove(jsonTmp) // nolint:errcheck
		return err
	}

	if err := os.Rename(msgpackTmp, base+".msgpack"); err != nil {
		os.Remove(jsonTmp)    // nolint:errcheck
		os.Remove(msgpackTmp) // nolint:errcheck
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := os.Rename(jsonTmp, base+".json"); err != nil {
		os.Remove(jsonTmp) // nolint:errcheck
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// Load reads <dir>/<file>.json.
func (s *Storage) Load(dir, file string) (*Snapshot, error) {
	data, err := os.ReadFile(s.Path(dir, file) + ".json")
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s/%s", ErrSnapshotNotFound, dir, file)
		}
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	if snap.Records == nil {
		snap.Records = make([]*legislator.Record, 0)
	}
	return &snap, nil
}

// LoadMsgpack reads <dir>/<file>.msgpack: the snapshot header followed by
// an array of records.
func (s *Storage) LoadMsgpack(dir, file string) (*Snapshot, error) {
	f, err := os.Open(s.Path(dir, file) + ".msgpack")
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s/%s", ErrSnapshotNotFound, dir, file)
		}
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	dec := msgpack.NewDecoder(bufio.NewReader(f))
	var snap Snapshot
	if err := dec.Decode(&snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot header: %w", err)
	}
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return nil, fmt.Errorf("decoding record count: %w", err)
	}
	snap.Records = make([]*legislator.Record, 0, max(n, 0))
	for i := 0; i < n; i++ {
		var r legislator.Record
		if err := dec.Decode(&r); err != nil {
			return nil, fmt.Errorf("decoding record %d: %w", i, err)
		}
		snap.Records = append(snap.Records, &r)
	}
	return &snap, nil
}

// writeMsgpack encodes snap into path: the header, then the record array.
// path is removed again on failure.
func writeMsgpack(path string, snap *Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	w := bufio.NewWriter(f)
	enc := msgpack.NewEncoder(w)
	err = enc.Encode(snap)
	if err == nil {
		err = enc.EncodeArrayLen(len(snap.Records))
	}
	for i := 0; err == nil && i < len(snap.Records); i++ {
		err = enc.Encode(snap.Records[i])
	}
	if err == nil {
		err = w.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path) // nolint:errcheck
		return fmt.Errorf("encoding msgpack snapshot: %w", err)
	}
	return nil
}

// LoadCache reads the page lookup cache. A missing file yields an empty cache.
func (s *Storage) LoadCache() (*wikipedia.Cache, error) {
	cache := wikipedia.NewCache()
	data, err := os.ReadFile(filepath.Join(s.dataDir, pageCacheFile))
	if err != nil {
		if os.IsNotExist(err) {
			return cache, nil
		}
		return nil, fmt.Errorf("reading page cache: %w", err)
	}
	if err := json.Unmarshal(data, cache); err != nil {
		return nil, fmt.Errorf("parsing page cache: %w", err)
	}
	if cache.Entries == nil {
		cache.Entries = make(map[string]*wikipedia.Entry)
	}
	return cache, nil
}

// SaveCache writes the page lookup cache after dropping expired entries.
func (s *Storage) SaveCache(cache *wikipedia.Cache) error {
	cache.CleanExpired()
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding page cache: %w", err)
	}
	return writeFile(filepath.Join(s.dataDir, pageCacheFile), data)
}

// writeFile replaces path atomically.
func writeFile(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}
