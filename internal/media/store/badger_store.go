// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/vidstash/vidstash/internal/media/model"
)

// BadgerStore is the default durable Store. Key layout:
//   - records: "media:<id>" (JSON)
//   - blobs:   "blob:<id>"  (raw bytes)
//   - dedup:   "url:<userID>\x00<originalUrl>" (value = record id)
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens (or creates) a badger database at path.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open media store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Close() error { return s.db.Close() }

func recordKey(id string) []byte { return []byte("media:" + id) }
func blobKey(id string) []byte   { return []byte("blob:" + id) }

func urlIndexKey(userID, url string) []byte {
	return append(append([]byte("url:"+userID), 0x00), url...)
}

func (s *BadgerStore) Put(ctx context.Context, rec *model.Record) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return putRecordTxn(txn, rec)
	})
}

func (s *BadgerStore) PutWithBlob(ctx context.Context, rec *model.Record, blob []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if err := putRecordTxn(txn, rec); err != nil {
			return err
		}
		return txn.Set(blobKey(rec.ID), blob)
	})
}

func putRecordTxn(txn *badger.Txn, rec *model.Record) error {
	cp := rec.Clone()
	cp.Normalize()
	buf, err := json.Marshal(cp)
	if err != nil {
		return err
	}
	if err := txn.Set(recordKey(cp.ID), buf); err != nil {
		return err
	}
	if cp.Source == model.SourceRemote && cp.OriginalURL != "" {
		return txn.Set(urlIndexKey(cp.UserID, cp.OriginalURL), []byte(cp.ID))
	}
	return nil
}

func (s *BadgerStore) Get(ctx context.Context, id string) (*model.Record, error) {
	var out model.Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &out)
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil // Not found, no error
		}
		return nil, err
	}
	out.Normalize()
	return &out, nil
}

func (s *BadgerStore) FindByOriginalURL(ctx context.Context, userID, url string) (*model.Record, error) {
	var id string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(urlIndexKey(userID, url))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			id = string(val)
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *BadgerStore) List(ctx context.Context) ([]*model.Record, error) {
	prefix := []byte("media:")
	var list []*model.Record
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			item := it.Item()
			var rec model.Record
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				// Schema validation happens once, here at the storage
				// boundary: rows that fail to decode are skipped.
				continue
			}
			rec.Normalize()
			list = append(list, &rec)
		}
		return nil
	})
	return list, err
}

func (s *BadgerStore) GetBlob(ctx context.Context, id string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(blobKey(id))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return out, nil
}

// Ensure interface compliance at compile time.
var _ Store = (*BadgerStore)(nil)
