package directory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tertulia-im/tertulia/internal/models"
)

// participantPrefix namespaces directory keys inside the shared badger store.
const participantPrefix = "p:"

// BadgerRepository implements Repository on an embedded badger store.
// Participants live under "p:<name>" as JSON; badger transactions give
// Insert its duplicate check atomically.
type BadgerRepository struct {
	db *badger.DB
}

func NewBadgerRepository(db *badger.DB) *BadgerRepository {
	return &BadgerRepository{db: db}
}

func participantKey(name string) []byte {
	return []byte(participantPrefix + name)
}

func (r *BadgerRepository) Insert(ctx context.Context, p *models.Participant) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		key := participantKey(p.Name)
		if _, err := txn.Get(key); err == nil {
			return ErrAlreadyJoined
		} else if err != badger.ErrKeyNotFound {
			return err
		}
		return txn.Set(key, data)
	})
}

func (r *BadgerRepository) Touch(ctx context.Context, name string, when time.Time) error {
	return r.db.Update(func(txn *badger.Txn) error {
		key := participantKey(name)
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		var p models.Participant
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &p)
		}); err != nil {
			return err
		}
		p.LastSeen = when
		data, err := json.Marshal(&p)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

func (r *BadgerRepository) List(ctx context.Context) ([]*models.Participant, error) {
	return r.scan(func(p *models.Participant) bool { return true })
}

func (r *BadgerRepository) Delete(ctx context.Context, name string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		key := participantKey(name)
		if _, err := txn.Get(key); err == badger.ErrKeyNotFound {
			return ErrNotFound
		} else if err != nil {
			return err
		}
		return txn.Delete(key)
	})
}

func (r *BadgerRepository) StaleBefore(ctx context.Context, cutoff time.Time) ([]*models.Participant, error) {
	return r.scan(func(p *models.Participant) bool { return p.LastSeen.Before(cutoff) })
}

func (r *BadgerRepository) Exists(ctx context.Context, name string) (bool, error) {
	var found bool
	err := r.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(participantKey(name))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	return found, err
}

func (r *BadgerRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		prefix := []byte(participantPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// scan walks every participant and keeps those matching the predicate. The
// directory is room-sized, so a full prefix scan is fine here.
func (r *BadgerRepository) scan(keep func(*models.Participant) bool) ([]*models.Participant, error) {
	out := []*models.Participant{}
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(participantPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var p models.Participant
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &p)
			}); err != nil {
				return err
			}
			if keep(&p) {
				c := p
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
