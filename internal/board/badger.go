package board

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/tertulia-im/tertulia/internal/models"
)

const (
	messagePrefix = "m:"
	messageIndex  = "mi:"
)

// BadgerRepository implements Repository on an embedded badger store.
//
// The primary key is "m:{timestamp_padded}:{uuid}":
//  1. the 19-digit zero padding makes lexicographical order chronological, so
//     a forward prefix scan yields insertion order;
//  2. the uuid disambiguates two messages landing on the same nanosecond.
//
// A second key "mi:{uuid}" points at the primary key so id lookups skip the
// scan.
type BadgerRepository struct {
	db *badger.DB
}

func NewBadgerRepository(db *badger.DB) *BadgerRepository {
	return &BadgerRepository{db: db}
}

func messageKey(m *models.Message) []byte {
	return []byte(fmt.Sprintf("%s%019d:%s", messagePrefix, m.CreatedAt.UnixNano(), m.ID))
}

func indexKey(id string) []byte {
	return []byte(messageIndex + id)
}

func (r *BadgerRepository) Insert(ctx context.Context, m *models.Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	key := messageKey(m)
	return r.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key, data); err != nil {
			return err
		}
		return txn.Set(indexKey(m.ID), key)
	})
}

func (r *BadgerRepository) VisibleTo(ctx context.Context, viewer string, limit int) ([]*models.Message, error) {
	out := []*models.Message{}
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(messagePrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(out) == limit {
				break
			}
			var m models.Message
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &m)
			}); err != nil {
				return err
			}
			if m.VisibleTo(viewer) {
				c := m
				out = append(out, &c)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *BadgerRepository) Get(ctx context.Context, id string) (*models.Message, error) {
	var m models.Message
	err := r.db.View(func(txn *badger.Txn) error {
		data, err := r.fetch(txn, id)
		if err != nil {
			return err
		}
		return json.Unmarshal(data, &m)
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *BadgerRepository) UpdateText(ctx context.Context, id, text string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		data, err := r.fetch(txn, id)
		if err != nil {
			return err
		}
		var m models.Message
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		m.Text = text
		updated, err := json.Marshal(&m)
		if err != nil {
			return err
		}
		return txn.Set(messageKey(&m), updated)
	})
}

func (r *BadgerRepository) Delete(ctx context.Context, id string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(indexKey(id))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		primary, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if err := txn.Delete(primary); err != nil {
			return err
		}
		return txn.Delete(indexKey(id))
	})
}

func (r *BadgerRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		prefix := []byte(messagePrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// fetch resolves id through the index to the stored message bytes.
func (r *BadgerRepository) fetch(txn *badger.Txn, id string) ([]byte, error) {
	item, err := txn.Get(indexKey(id))
	if err == badger.ErrKeyNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	primary, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	rec, err := txn.Get(primary)
	if err == badger.ErrKeyNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec.ValueCopy(nil)
}
