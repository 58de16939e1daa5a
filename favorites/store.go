// Package favorites persists the user's saved wiki items in a local bbolt
// database. It is independent of the fetch caches: favourites survive
// restarts, cached pages do not.
package favorites

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/use-agent/wikidex/models"
	bolt "go.etcd.io/bbolt"
)

var bucket = []byte("favorites")

var (
	// ErrNotFound is returned by Remove for an unknown id.
	ErrNotFound = errors.New("favorites: not found")

	// ErrInvalid is returned by Add for a request without item or tab.
	ErrInvalid = errors.New("favorites: item_id and tab_type are required")
)

// Store is a bbolt-backed favourites list. It is safe for concurrent use;
// bbolt serialises writers itself.
type Store struct {
	db  *bolt.DB
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now for CreatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open opens or creates the database at path.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("favorites: open %s: %w", path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("favorites: create bucket: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Add saves req. Saving an item that is already a favourite under the same
// tab returns the existing record.
func (s *Store) Add(req models.FavoriteRequest) (models.Favorite, error) {
	req.ItemID = strings.TrimSpace(req.ItemID)
	req.TabType = strings.TrimSpace(req.TabType)
	if req.ItemID == "" || req.TabType == "" {
		return models.Favorite{}, ErrInvalid
	}

	var out models.Favorite
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)

		var existing *models.Favorite
		err := b.ForEach(func(_, v []byte) error {
			var f models.Favorite
			if err := json.Unmarshal(v, &f); err != nil {
				return err
			}
			if f.ItemID == req.ItemID && f.TabType == req.TabType {
				existing = &f
			}
			return nil
		})
		if err != nil {
			return err
		}
		if existing != nil {
			out = *existing
			return nil
		}

		out = models.Favorite{
			ID:        uuid.NewString(),
			Name:      req.Name,
			ImageURL:  req.ImageURL,
			ItemID:    req.ItemID,
			TabType:   req.TabType,
			SubType:   req.SubType,
			CreatedAt: s.now().UTC(),
		}
		data, err := json.Marshal(out)
		if err != nil {
			return err
		}
		return b.Put([]byte(out.ID), data)
	})
	if err != nil {
		return models.Favorite{}, fmt.Errorf("favorites: add: %w", err)
	}
	return out, nil
}

// List returns every favourite, oldest first. A non-empty tabType keeps only
// that tab's favourites.
func (s *Store) List(tabType string) ([]models.Favorite, error) {
	out := []models.Favorite{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).ForEach(func(_, v []byte) error {
			var f models.Favorite
			if err := json.Unmarshal(v, &f); err != nil {
				return err
			}
			if tabType == "" || f.TabType == tabType {
				out = append(out, f)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("favorites: list: %w", err)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Remove deletes the favourite with the given id.
func (s *Store) Remove(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b.Get([]byte(id)) == nil {
			return ErrNotFound
		}
		return b.Delete([]byte(id))
	})
}
