/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package sandbox

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/hyperledger/fabric-sbt/common/ledger/util/leveldbhelper"
	"github.com/hyperledger/fabric-sbt/common/ledger/util/sqlitehelper"
	"github.com/pkg/errors"
)

// Supported state database backends.
const (
	BackendMemory  = "memory"
	BackendLevelDB = "leveldb"
	BackendSQLite  = "sqlite"
)

// StateDBConfig selects and locates the state database. An empty Path for a
// disk backend places the database in a temporary directory that is removed
// on Close. CacheSize, in bytes, sizes the disk backends' caches.
type StateDBConfig struct {
	Backend   string `mapstructure:"backend" yaml:"backend"`
	Path      string `mapstructure:"path" yaml:"path"`
	CacheSize uint32 `mapstructure:"cache_size" yaml:"cache_size"`
}

// StateDB holds accounts, deployed code and contract state. Commit applies
// a batch atomically.
type StateDB interface {
	Get(key []byte) ([]byte, error)
	Commit(ctx context.Context, batch *Batch) error
	HealthCheck(ctx context.Context) error
	Close() error
}

type write struct {
	key   []byte
	value []byte
}

// Batch is an ordered set of writes. A nil value deletes the key.
type Batch struct {
	writes []write
}

func (b *Batch) Put(key, value []byte) {
	b.writes = append(b.writes, write{key: key, value: value})
}

func (b *Batch) Delete(key []byte) {
	b.writes = append(b.writes, write{key: key})
}

func (b *Batch) Len() int { return len(b.writes) }

// OpenStateDB opens the configured backend.
func OpenStateDB(conf StateDBConfig) (StateDB, error) {
	switch conf.Backend {
	case "", BackendMemory:
		return newMemoryDB(), nil
	case BackendLevelDB:
		path, cleanup, err := resolvePath(conf.Path, "leveldb")
		if err != nil {
			return nil, err
		}
		db := leveldbhelper.CreateDB(&leveldbhelper.Conf{
			DBPath:             path,
			BlockCacheCapacity: int(conf.CacheSize),
		})
		if err := db.Open(); err != nil {
			cleanup()
			return nil, err
		}
		return &levelDB{db: db, cleanup: cleanup}, nil
	case BackendSQLite:
		path, cleanup, err := resolvePath(conf.Path, "sqlite")
		if err != nil {
			return nil, err
		}
		lock := leveldbhelper.NewFileLock(filepath.Join(path, "lock"))
		if err := lock.Lock(); err != nil {
			cleanup()
			return nil, err
		}
		db := sqlitehelper.CreateDB(&sqlitehelper.Conf{
			DBPath:    filepath.Join(path, "state.db"),
			CacheSize: conf.CacheSize,
		})
		if err := db.Open(); err != nil {
			lock.Unlock()
			cleanup()
			return nil, err
		}
		return &sqliteDB{db: db, lock: lock, cleanup: cleanup}, nil
	default:
		return nil, errors.Errorf("unknown state database backend '%s'", conf.Backend)
	}
}

func resolvePath(path, pattern string) (string, func(), error) {
	if path != "" {
		return path, func() {}, nil
	}
	dir, err := os.MkdirTemp("", "sbt-"+pattern+"-")
	if err != nil {
		return "", nil, errors.Wrap(err, "failed to create temporary state directory")
	}
	return dir, func() { os.RemoveAll(dir) }, nil
}

type memoryDB struct {
	mutex sync.RWMutex
	data  map[string][]byte
}

func newMemoryDB() *memoryDB {
	return &memoryDB{data: map[string][]byte{}}
}

func (m *memoryDB) Get(key []byte) ([]byte, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.data == nil {
		return nil, errors.New("memory state database is closed")
	}
	v, ok := m.data[string(key)]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (m *memoryDB) Commit(ctx context.Context, batch *Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.data == nil {
		return errors.New("memory state database is closed")
	}
	next := make(map[string][]byte, len(m.data)+batch.Len())
	for k, v := range m.data {
		next[k] = v
	}
	for _, w := range batch.writes {
		if w.value == nil {
			delete(next, string(w.key))
			continue
		}
		next[string(w.key)] = append([]byte(nil), w.value...)
	}
	m.data = next
	return nil
}

func (m *memoryDB) HealthCheck(context.Context) error {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.data == nil {
		return errors.New("memory state database is closed")
	}
	return nil
}

func (m *memoryDB) Close() error {
	m.mutex.Lock()
	m.data = nil
	m.mutex.Unlock()
	return nil
}

type levelDB struct {
	db      *leveldbhelper.DB
	cleanup func()
}

func (l *levelDB) Get(key []byte) ([]byte, error) { return l.db.Get(key) }

func (l *levelDB) Commit(ctx context.Context, batch *Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ub := leveldbhelper.NewUpdateBatch()
	for _, w := range batch.writes {
		if w.value == nil {
			ub.Delete(w.key)
			continue
		}
		ub.Put(w.key, w.value)
	}
	return l.db.WriteBatch(ub, true)
}

func (l *levelDB) HealthCheck(context.Context) error {
	_, err := l.db.IsEmpty()
	return err
}

func (l *levelDB) Close() error {
	l.db.Close()
	l.cleanup()
	return nil
}

type sqliteDB struct {
	db      *sqlitehelper.DB
	lock    *leveldbhelper.FileLock
	cleanup func()
}

func (s *sqliteDB) Get(key []byte) ([]byte, error) { return s.db.Get(key) }

func (s *sqliteDB) Commit(ctx context.Context, batch *Batch) error {
	ub := sqlitehelper.NewUpdateBatch()
	for _, w := range batch.writes {
		if w.value == nil {
			ub.Delete(w.key)
			continue
		}
		ub.Put(w.key, w.value)
	}
	return s.db.WriteBatch(ctx, ub)
}

func (s *sqliteDB) HealthCheck(ctx context.Context) error { return s.db.Ping(ctx) }

func (s *sqliteDB) Close() error {
	s.db.Close()
	s.lock.Unlock()
	s.cleanup()
	return nil
}
