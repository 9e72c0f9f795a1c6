package cache

import (
	"encoding/json"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

// companyKeyedNamespaces lists the namespaces clear_company must sweep.
// company_search is deliberately excluded — it is keyed by normalized
// query text, not company id, per §4.1/§6's namespace definitions.
var companyKeyedNamespaces = []string{NamespaceCompanySubmissions, NamespaceCompanyFacts, NamespaceFilingText}

var allNamespaces = []string{NamespaceCompanySearch, NamespaceCompanySubmissions, NamespaceCompanyFacts, NamespaceFilingText}

// BoltStore is the durable, on-disk-file backend for the fetch cache,
// satisfying §6's "Location: on-disk file" requirement directly — one
// bbolt bucket per namespace.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (creating if absent) a single-file bbolt database at
// path and ensures every namespace bucket exists.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, ns := range allNamespaces {
			if _, err := tx.CreateBucketIfNotExists([]byte(ns)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltStore{db: db}, nil
}

func (b *BoltStore) Get(namespace, key string, maxAge time.Duration) ([]byte, bool) {
	var raw []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(namespace))
		if bkt == nil {
			return nil
		}
		v := bkt.Get([]byte(key))
		if v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil || raw == nil {
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, false
	}
	if time.Since(e.InsertedAt) > maxAge {
		return nil, false
	}
	return e.Value, true
}

func (b *BoltStore) Put(namespace, key string, value []byte) error {
	e := entry{Value: value, InsertedAt: time.Now().UTC()}
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		bkt, err := tx.CreateBucketIfNotExists([]byte(namespace))
		if err != nil {
			return err
		}
		return bkt.Put([]byte(key), raw)
	})
}

func (b *BoltStore) ClearCompany(companyID string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		for _, ns := range companyKeyedNamespaces {
			bkt := tx.Bucket([]byte(ns))
			if bkt == nil {
				continue
			}
			var stale [][]byte
			err := bkt.ForEach(func(k, _ []byte) error {
				ks := string(k)
				if ks == companyID || strings.HasPrefix(ks, companyID+"_") {
					stale = append(stale, append([]byte(nil), k...))
				}
				return nil
			})
			if err != nil {
				return err
			}
			for _, k := range stale {
				if err := bkt.Delete(k); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (b *BoltStore) Close() error { return b.db.Close() }
