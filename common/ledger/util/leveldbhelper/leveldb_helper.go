/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package leveldbhelper

import (
	"os"
	"sync"
	"syscall"

	"github.com/hyperledger/fabric-sbt/common/flogging"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	goleveldbutil "github.com/syndtr/goleveldb/leveldb/util"
)

var logger = flogging.MustGetLogger("sbt.leveldbhelper")

type dbState int32

const (
	closed dbState = iota
	opened
)

var errNotOpen = errors.New("leveldb is not open")

// Conf configures a DB.
type Conf struct {
	DBPath string

	// BlockCacheCapacity overrides the goleveldb block cache size when non-zero.
	BlockCacheCapacity int
}

// DB - a wrapper on an actual store
type DB struct {
	conf    *Conf
	db      *leveldb.DB
	dbState dbState
	mutex   sync.RWMutex

	readOpts        *opt.ReadOptions
	writeOptsNoSync *opt.WriteOptions
	writeOptsSync   *opt.WriteOptions
}

// CreateDB constructs a `DB`
func CreateDB(conf *Conf) *DB {
	return &DB{
		conf:            conf,
		dbState:         closed,
		readOpts:        &opt.ReadOptions{},
		writeOptsNoSync: &opt.WriteOptions{},
		writeOptsSync:   &opt.WriteOptions{Sync: true},
	}
}

// createDirIfMissing creates dir when needed and reports whether it is empty.
func createDirIfMissing(dir string) (bool, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, errors.Wrapf(err, "error creating dir [%s]", dir)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, errors.Wrapf(err, "error reading dir [%s]", dir)
	}
	return len(entries) == 0, nil
}

// Open opens the underlying db. Opening an open db is a no-op. A non-empty
// directory that does not hold a leveldb is refused.
func (dbInst *DB) Open() error {
	dbInst.mutex.Lock()
	defer dbInst.mutex.Unlock()
	if dbInst.dbState == opened {
		return nil
	}
	dbPath := dbInst.conf.DBPath
	dirEmpty, err := createDirIfMissing(dbPath)
	if err != nil {
		return err
	}
	dbOpts := &opt.Options{
		ErrorIfMissing:     !dirEmpty,
		BlockCacheCapacity: dbInst.conf.BlockCacheCapacity,
	}
	if dbInst.db, err = leveldb.OpenFile(dbPath, dbOpts); err != nil {
		return errors.Wrapf(err, "error opening leveldb at [%s]", dbPath)
	}
	dbInst.dbState = opened
	logger.Debugf("opened leveldb at [%s]", dbPath)
	return nil
}

// IsEmpty returns whether or not a database is empty
func (dbInst *DB) IsEmpty() (bool, error) {
	dbInst.mutex.RLock()
	defer dbInst.mutex.RUnlock()
	if dbInst.dbState != opened {
		return false, errNotOpen
	}
	itr := dbInst.db.NewIterator(&goleveldbutil.Range{}, dbInst.readOpts)
	defer itr.Release()
	hasItems := itr.Next()
	return !hasItems,
		errors.Wrapf(itr.Error(), "error while trying to see if the leveldb at path [%s] is empty", dbInst.conf.DBPath)
}

// Close closes the underlying db
func (dbInst *DB) Close() {
	dbInst.mutex.Lock()
	defer dbInst.mutex.Unlock()
	if dbInst.dbState == closed {
		return
	}
	if err := dbInst.db.Close(); err != nil {
		logger.Errorf("Error closing leveldb: %s", err)
	}
	dbInst.dbState = closed
}

// Get returns the value for the given key, or nil when the key is absent.
func (dbInst *DB) Get(key []byte) ([]byte, error) {
	dbInst.mutex.RLock()
	defer dbInst.mutex.RUnlock()
	if dbInst.dbState != opened {
		return nil, errNotOpen
	}
	value, err := dbInst.db.Get(key, dbInst.readOpts)
	if err == leveldb.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		logger.Errorf("Error retrieving leveldb key [%#v]: %s", key, err)
		return nil, errors.Wrapf(err, "error retrieving leveldb key [%#v]", key)
	}
	return value, nil
}

func (dbInst *DB) writeOpts(sync bool) *opt.WriteOptions {
	if sync {
		return dbInst.writeOptsSync
	}
	return dbInst.writeOptsNoSync
}

// Put saves the key/value
func (dbInst *DB) Put(key []byte, value []byte, sync bool) error {
	dbInst.mutex.RLock()
	defer dbInst.mutex.RUnlock()
	if dbInst.dbState != opened {
		return errNotOpen
	}
	if err := dbInst.db.Put(key, value, dbInst.writeOpts(sync)); err != nil {
		logger.Errorf("Error writing leveldb key [%#v]", key)
		return errors.Wrapf(err, "error writing leveldb key [%#v]", key)
	}
	return nil
}

// Delete deletes the given key
func (dbInst *DB) Delete(key []byte, sync bool) error {
	dbInst.mutex.RLock()
	defer dbInst.mutex.RUnlock()
	if dbInst.dbState != opened {
		return errNotOpen
	}
	if err := dbInst.db.Delete(key, dbInst.writeOpts(sync)); err != nil {
		logger.Errorf("Error deleting leveldb key [%#v]", key)
		return errors.Wrapf(err, "error deleting leveldb key [%#v]", key)
	}
	return nil
}

// GetIterator returns an iterator over key-value store. The iterator should be released after the use.
// The resultset contains all the keys that are present in the db between the startKey (inclusive) and the endKey (exclusive).
// A nil startKey represents the first available key and a nil endKey represent a logical key after the last available key
func (dbInst *DB) GetIterator(startKey []byte, endKey []byte) (iterator.Iterator, error) {
	dbInst.mutex.RLock()
	defer dbInst.mutex.RUnlock()
	if dbInst.dbState != opened {
		return nil, errNotOpen
	}
	return dbInst.db.NewIterator(&goleveldbutil.Range{Start: startKey, Limit: endKey}, dbInst.readOpts), nil
}

// WriteBatch applies every update in batch atomically.
func (dbInst *DB) WriteBatch(batch *UpdateBatch, sync bool) error {
	dbInst.mutex.RLock()
	defer dbInst.mutex.RUnlock()
	if dbInst.dbState != opened {
		return errNotOpen
	}
	if err := dbInst.db.Write(batch.leveldbBatch, dbInst.writeOpts(sync)); err != nil {
		return errors.Wrap(err, "error writing batch to leveldb")
	}
	return nil
}

// UpdateBatch encloses the details of multiple `updates`
type UpdateBatch struct {
	leveldbBatch *leveldb.Batch
	size         int
}

// NewUpdateBatch constructs an instance of a Batch
func NewUpdateBatch() *UpdateBatch {
	return &UpdateBatch{leveldbBatch: &leveldb.Batch{}}
}

// Put adds a KV
func (b *UpdateBatch) Put(key []byte, value []byte) {
	if value == nil {
		panic("Nil value not allowed")
	}
	b.leveldbBatch.Put(key, value)
	b.size += len(key) + len(value)
}

// Delete deletes a Key and associated value
func (b *UpdateBatch) Delete(key []byte) {
	b.leveldbBatch.Delete(key)
	b.size += len(key)
}

// Size returns the current size of the batch
func (b *UpdateBatch) Size() int {
	return b.size
}

// Len returns number of records in the batch
func (b *UpdateBatch) Len() int {
	return b.leveldbBatch.Len()
}

// FileLock is an exclusive, process-level lock on a directory. It is held by
// keeping a leveldb open on the path, so a second holder fails until Unlock
// or process exit.
type FileLock struct {
	db       *leveldb.DB
	filePath string
}

// NewFileLock returns a new file based lock manager.
func NewFileLock(filePath string) *FileLock {
	return &FileLock{
		filePath: filePath,
	}
}

// Lock acquires the lock or reports that someone else holds it.
func (f *FileLock) Lock() error {
	dirEmpty, err := createDirIfMissing(f.filePath)
	if err != nil {
		return err
	}
	dbOpts := &opt.Options{ErrorIfMissing: !dirEmpty}
	db, err := leveldb.OpenFile(f.filePath, dbOpts)
	if err == syscall.EAGAIN {
		return errors.Errorf("lock is already acquired on file %s", f.filePath)
	}
	if err != nil {
		return errors.Wrapf(err, "error acquiring lock on file %s", f.filePath)
	}

	// only mutate the lock db reference AFTER validating that the lock was held.
	f.db = db

	return nil
}

// IsLocked reports whether the lock is currently held.
func (f *FileLock) IsLocked() bool {
	return f.db != nil
}

// Unlock releases a previously acquired lock. It can be called multiple times.
func (f *FileLock) Unlock() {
	if f.db == nil {
		return
	}
	if err := f.db.Close(); err != nil {
		logger.Warningf("unable to release the lock on file %s: %s", f.filePath, err)
		return
	}
	f.db = nil
}
