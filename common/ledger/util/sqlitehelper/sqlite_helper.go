/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package sqlitehelper

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/hyperledger/fabric-sbt/common/flogging"
	"github.com/pkg/errors"

	_ "modernc.org/sqlite"
)

var logger = flogging.MustGetLogger("sbt.sqlitehelper")

const busyTimeoutMs = 5000

const schema = `CREATE TABLE IF NOT EXISTS kv (
	k BLOB PRIMARY KEY,
	v BLOB NOT NULL
) WITHOUT ROWID`

var errNotOpen = errors.New("sqlite db is not open")

// Conf configures a DB. DBPath is the database file. A non-zero CacheSize
// bounds the page cache in bytes.
type Conf struct {
	DBPath    string
	CacheSize uint32
}

// DB is a key/value store kept in a single SQLite table.
type DB struct {
	conf  *Conf
	db    *sql.DB
	mutex sync.RWMutex
}

// CreateDB constructs a `DB`
func CreateDB(conf *Conf) *DB {
	return &DB{conf: conf}
}

// Open opens the database file, creating it and its schema when missing.
// Opening an open db is a no-op.
func (dbInst *DB) Open() error {
	dbInst.mutex.Lock()
	defer dbInst.mutex.Unlock()
	if dbInst.db != nil {
		return nil
	}

	path := filepath.Clean(dbInst.conf.DBPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "error creating dir for sqlite db [%s]", path)
	}
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s", path))
	if err != nil {
		return errors.Wrapf(err, "error opening sqlite db [%s]", path)
	}
	// a single connection keeps transactions and readers on one writer
	db.SetMaxOpenConns(1)

	stmts := []string{fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeoutMs)}
	if dbInst.conf.CacheSize > 0 {
		// negative values are KiB rather than pages
		stmts = append(stmts, fmt.Sprintf("PRAGMA cache_size=-%d", (uint64(dbInst.conf.CacheSize)+1023)/1024))
	}
	for _, stmt := range append(stmts, schema) {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return errors.Wrapf(err, "error preparing sqlite db [%s]", path)
		}
	}

	dbInst.db = db
	logger.Debugf("opened sqlite db at [%s]", path)
	return nil
}

// Close closes the underlying db
func (dbInst *DB) Close() {
	dbInst.mutex.Lock()
	defer dbInst.mutex.Unlock()
	if dbInst.db == nil {
		return
	}
	if err := dbInst.db.Close(); err != nil {
		logger.Errorf("Error closing sqlite db: %s", err)
	}
	dbInst.db = nil
}

// Ping verifies the db is reachable.
func (dbInst *DB) Ping(ctx context.Context) error {
	dbInst.mutex.RLock()
	defer dbInst.mutex.RUnlock()
	if dbInst.db == nil {
		return errNotOpen
	}
	return errors.Wrap(dbInst.db.PingContext(ctx), "error pinging sqlite db")
}

// IsEmpty returns whether or not a database is empty
func (dbInst *DB) IsEmpty() (bool, error) {
	dbInst.mutex.RLock()
	defer dbInst.mutex.RUnlock()
	if dbInst.db == nil {
		return false, errNotOpen
	}
	var n int
	if err := dbInst.db.QueryRow(`SELECT COUNT(*) FROM kv`).Scan(&n); err != nil {
		return false, errors.Wrap(err, "error counting sqlite rows")
	}
	return n == 0, nil
}

// Get returns the value for the given key, or nil when the key is absent.
func (dbInst *DB) Get(key []byte) ([]byte, error) {
	dbInst.mutex.RLock()
	defer dbInst.mutex.RUnlock()
	if dbInst.db == nil {
		return nil, errNotOpen
	}
	var value []byte
	err := dbInst.db.QueryRow(`SELECT v FROM kv WHERE k = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "error retrieving sqlite key [%#v]", key)
	}
	return value, nil
}

// Put saves the key/value
func (dbInst *DB) Put(key, value []byte) error {
	batch := NewUpdateBatch()
	batch.Put(key, value)
	return dbInst.WriteBatch(context.Background(), batch)
}

// Delete deletes the given key
func (dbInst *DB) Delete(key []byte) error {
	batch := NewUpdateBatch()
	batch.Delete(key)
	return dbInst.WriteBatch(context.Background(), batch)
}

// WriteBatch applies every update in batch inside one transaction.
func (dbInst *DB) WriteBatch(ctx context.Context, batch *UpdateBatch) (err error) {
	dbInst.mutex.RLock()
	defer dbInst.mutex.RUnlock()
	if dbInst.db == nil {
		return errNotOpen
	}

	tx, err := dbInst.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "error starting sqlite transaction")
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Warningf("rollback failed: %s", rbErr)
			}
		}
	}()

	for _, u := range batch.updates {
		if u.value == nil {
			_, err = tx.ExecContext(ctx, `DELETE FROM kv WHERE k = ?`, u.key)
		} else {
			_, err = tx.ExecContext(ctx, `INSERT INTO kv (k, v) VALUES (?, ?) ON CONFLICT(k) DO UPDATE SET v = excluded.v`, u.key, u.value)
		}
		if err != nil {
			return errors.Wrapf(err, "error writing sqlite key [%#v]", u.key)
		}
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "error committing sqlite transaction")
	}
	return nil
}

type update struct {
	key   []byte
	value []byte
}

// UpdateBatch collects puts and deletes applied in order by WriteBatch.
type UpdateBatch struct {
	updates []update
}

// NewUpdateBatch constructs an instance of a Batch
func NewUpdateBatch() *UpdateBatch {
	return &UpdateBatch{}
}

// Put adds a KV
func (b *UpdateBatch) Put(key []byte, value []byte) {
	if value == nil {
		panic("Nil value not allowed")
	}
	b.updates = append(b.updates, update{key: key, value: value})
}

// Delete deletes a Key and associated value
func (b *UpdateBatch) Delete(key []byte) {
	b.updates = append(b.updates, update{key: key})
}

// Len returns number of records in the batch
func (b *UpdateBatch) Len() int {
	return len(b.updates)
}
