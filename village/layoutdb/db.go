// Package layoutdb persists generated village layouts to a LevelDB store so
// that a layout can be reloaded instead of regenerated. Records are
// zstd-compressed and carry an xxhash64 checksum that is verified on load.
package layoutdb

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/df-mc/goleveldb/leveldb"
	"github.com/df-mc/goleveldb/leveldb/util"
	"github.com/klauspost/compress/zstd"
	"github.com/mcv-dev/mcvillage/village/grid"
)

var (
	// ErrLayoutNotFound is returned when no layout is stored under the
	// requested name.
	ErrLayoutNotFound = errors.New("layoutdb: layout not found")
	// ErrChecksumMismatch is returned when a stored record fails integrity
	// verification.
	ErrChecksumMismatch = errors.New("layoutdb: record checksum mismatch")
)

var keyPrefix = []byte("layout/")

// The zstd encoder and decoder are stateless in the EncodeAll/DecodeAll
// usage below and shared across databases.
var (
	encoder, _ = zstd.NewWriter(nil)
	decoder, _ = zstd.NewReader(nil)
)

// Layout is a persisted generation result: the lattice it was generated
// for, the seed that produced it and every placement.
type Layout struct {
	Name       string           `json:"name"`
	Seed       int64            `json:"seed"`
	Spec       grid.Spec        `json:"spec"`
	Placements []grid.Placement `json:"placements"`
}

// Config holds the options for opening a DB.
type Config struct {
	// Log is the logger used by the database. Defaults to slog.Default().
	Log *slog.Logger
}

// DB is a LevelDB-backed layout store.
type DB struct {
	log *slog.Logger
	ldb *leveldb.DB
}

// Open opens (or creates) the layout database in the directory passed.
func (conf Config) Open(dir string) (*DB, error) {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	ldb, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("layoutdb: open %q: %w", dir, err)
	}
	return &DB{log: conf.Log, ldb: ldb}, nil
}

// Save stores the layout under its name, overwriting any previous record.
func (db *DB) Save(l Layout) error {
	if strings.TrimSpace(l.Name) == "" {
		return errors.New("layoutdb: layout name must not be empty")
	}
	raw, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("layoutdb: encode layout %q: %w", l.Name, err)
	}
	compressed := encoder.EncodeAll(raw, nil)

	record := make([]byte, 8+len(compressed))
	binary.BigEndian.PutUint64(record[:8], xxhash.Sum64(compressed))
	copy(record[8:], compressed)

	if err := db.ldb.Put(key(l.Name), record, nil); err != nil {
		return fmt.Errorf("layoutdb: store layout %q: %w", l.Name, err)
	}
	db.log.Debug("layoutdb: layout saved", "name", l.Name, "placements", len(l.Placements), "bytes", len(record))
	return nil
}

// Layout loads the layout stored under the name passed.
func (db *DB) Layout(name string) (Layout, error) {
	record, err := db.ldb.Get(key(name), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return Layout{}, ErrLayoutNotFound
		}
		return Layout{}, fmt.Errorf("layoutdb: load layout %q: %w", name, err)
	}
	if len(record) < 8 {
		return Layout{}, fmt.Errorf("layoutdb: layout %q: record truncated", name)
	}
	compressed := record[8:]
	if binary.BigEndian.Uint64(record[:8]) != xxhash.Sum64(compressed) {
		return Layout{}, fmt.Errorf("layoutdb: layout %q: %w", name, ErrChecksumMismatch)
	}
	raw, err := decoder.DecodeAll(compressed, nil)
	if err != nil {
		return Layout{}, fmt.Errorf("layoutdb: decompress layout %q: %w", name, err)
	}
	var l Layout
	if err := json.Unmarshal(raw, &l); err != nil {
		return Layout{}, fmt.Errorf("layoutdb: decode layout %q: %w", name, err)
	}
	return l, nil
}

// Delete removes the layout stored under the name passed. Deleting a missing
// layout is not an error.
func (db *DB) Delete(name string) error {
	if err := db.ldb.Delete(key(name), nil); err != nil {
		return fmt.Errorf("layoutdb: delete layout %q: %w", name, err)
	}
	return nil
}

// Names returns the names of all stored layouts in key order.
func (db *DB) Names() ([]string, error) {
	it := db.ldb.NewIterator(util.BytesPrefix(keyPrefix), nil)
	defer it.Release()

	var names []string
	for it.Next() {
		names = append(names, string(it.Key()[len(keyPrefix):]))
	}
	if err := it.Error(); err != nil {
		return nil, fmt.Errorf("layoutdb: iterate layouts: %w", err)
	}
	return names, nil
}

// Close releases the underlying store.
func (db *DB) Close() error {
	return db.ldb.Close()
}

func key(name string) []byte {
	return append(append([]byte{}, keyPrefix...), name...)
}
