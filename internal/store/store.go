// Package store persists material checkpoints in LevelDB
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/alexiusacademia/gohyst/internal/imk"
)

// LevelDB key scheme, "|" separated:
//
//	r|<run>          → RunInfo JSON
//	c|<run>|<tag>    → imk.Snapshot JSON
const (
	prefixRun        = "r|"
	prefixCheckpoint = "c|"
)

// ErrNotFound is returned when a run or checkpoint does not exist
var ErrNotFound = errors.New("store: not found")

// RunInfo describes one stored analysis run
type RunInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Protocol  string    `json:"protocol,omitempty"`
	Steps     int       `json:"steps"`
	Failed    bool      `json:"failed"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is a LevelDB-backed checkpoint store. It is safe for concurrent use.
type Store struct {
	db *leveldb.DB
}

// Open opens (or creates) the store in directory dir
func Open(dir string) (*Store, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", dir, err)
	}
	return &Store{db: db}, nil
}

// Close releases the database
func (s *Store) Close() error {
	return s.db.Close()
}

// NewRunID returns a fresh run identifier
func NewRunID() string {
	return uuid.New().String()
}

func runKey(run string) []byte {
	return []byte(prefixRun + run)
}

func checkpointPrefix(run string) string {
	return prefixCheckpoint + run + "|"
}

func checkpointKey(run string, tag int) []byte {
	return []byte(checkpointPrefix(run) + strconv.Itoa(tag))
}

// SaveRun stores the run metadata; an empty ID gets a fresh one
func (s *Store) SaveRun(info RunInfo) (RunInfo, error) {
	if info.ID == "" {
		info.ID = NewRunID()
	}
	if info.CreatedAt.IsZero() {
		info.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(info)
	if err != nil {
		return info, err
	}
	if err := s.db.Put(runKey(info.ID), data, nil); err != nil {
		return info, fmt.Errorf("store: save run %s: %w", info.ID, err)
	}
	slog.Info("[STORE] saved run", "id", info.ID, "name", info.Name)
	return info, nil
}

// Run returns the metadata of one run
func (s *Store) Run(id string) (RunInfo, error) {
	var info RunInfo
	data, err := s.get(runKey(id))
	if err != nil {
		return info, err
	}
	err = json.Unmarshal(data, &info)
	return info, err
}

// Runs lists every stored run, newest first
func (s *Store) Runs() ([]RunInfo, error) {
	iter := s.db.NewIterator(util.BytesPrefix([]byte(prefixRun)), nil)
	defer iter.Release()

	var runs []RunInfo
	for iter.Next() {
		var info RunInfo
		if err := json.Unmarshal(iter.Value(), &info); err != nil {
			slog.Warn("[STORE] skipping corrupt run", "key", string(iter.Key()), "error", err)
			continue
		}
		runs = append(runs, info)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].CreatedAt.After(runs[j].CreatedAt) })
	return runs, nil
}

// Save stores the checkpoint of one material under run
func (s *Store) Save(run string, snap imk.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	if err := s.db.Put(checkpointKey(run, snap.Tag), data, nil); err != nil {
		return fmt.Errorf("store: save checkpoint %s/%d: %w", run, snap.Tag, err)
	}
	return nil
}

// Load returns the checkpoint of material tag under run
func (s *Store) Load(run string, tag int) (imk.Snapshot, error) {
	var snap imk.Snapshot
	data, err := s.get(checkpointKey(run, tag))
	if err != nil {
		return snap, err
	}
	err = json.Unmarshal(data, &snap)
	return snap, err
}

// Checkpoints returns every checkpoint of run ordered by tag
func (s *Store) Checkpoints(run string) ([]imk.Snapshot, error) {
	iter := s.db.NewIterator(util.BytesPrefix([]byte(checkpointPrefix(run))), nil)
	defer iter.Release()

	var snaps []imk.Snapshot
	for iter.Next() {
		var snap imk.Snapshot
		if err := json.Unmarshal(iter.Value(), &snap); err != nil {
			return nil, fmt.Errorf("store: checkpoint %s: %w", iter.Key(), err)
		}
		snaps = append(snaps, snap)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Tag < snaps[j].Tag })
	return snaps, nil
}

// DeleteRun removes a run and all its checkpoints in one batch
func (s *Store) DeleteRun(run string) error {
	if _, err := s.get(runKey(run)); err != nil {
		return err
	}
	batch := new(leveldb.Batch)
	batch.Delete(runKey(run))
	iter := s.db.NewIterator(util.BytesPrefix([]byte(checkpointPrefix(run))), nil)
	for iter.Next() {
		batch.Delete(append([]byte(nil), iter.Key()...))
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return err
	}
	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("store: delete run %s: %w", run, err)
	}
	slog.Info("[STORE] deleted run", "id", run, "keys", batch.Len())
	return nil
}

func (s *Store) get(key []byte) ([]byte, error) {
	data, err := s.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, strings.TrimSpace(string(key)))
	}
	return data, err
}
