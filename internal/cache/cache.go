// Package cache implements the content-addressed fetch cache (C1): a
// durable key-value table with three logical namespaces (plus a fourth,
// company_search, for company-name lookups), each with its own TTL. The
// lookup command reads SEC's ticker file directly and does not go through
// this cache.
package cache

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/codekshitij/toshi/internal/obs"
)

// Namespaces match the persisted-state layout.
const (
	NamespaceCompanySearch      = "company_search"
	NamespaceCompanySubmissions = "company_submissions"
	NamespaceCompanyFacts       = "company_facts"
	NamespaceFilingText         = "filing_text"
)

// Store is satisfied by BoltStore; a separate in-memory implementation
// backs tests.
type Store interface {
	Get(namespace, key string, maxAge time.Duration) (value []byte, ok bool)
	Put(namespace, key string, value []byte) error
	ClearCompany(companyID string) error
	Close() error
}

// entry is the on-disk row shape: value plus insertion timestamp.
type entry struct {
	Value     []byte    `json:"value"`
	InsertedAt time.Time `json:"inserted_at"`
}

// Cache wraps a Store with structured logging. Reads never surface a
// backend error as stale data — a read failure is reported as absent,
// matching §4.1's contract.
type Cache struct {
	store Store
	log   zerolog.Logger
	clock obs.Clock
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger overrides the default no-op logger.
func WithLogger(l zerolog.Logger) Option { return func(c *Cache) { c.log = l } }

// WithClock overrides the default system clock.
func WithClock(clk obs.Clock) Option { return func(c *Cache) { c.clock = clk } }

// New builds a Cache over the given backing Store.
func New(store Store, opts ...Option) *Cache {
	c := &Cache{store: store, log: zerolog.Nop(), clock: obs.SystemClock{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value for (namespace, key) if present and not
// older than maxAge.
func (c *Cache) Get(namespace, key string, maxAge time.Duration) ([]byte, bool) {
	v, ok := c.store.Get(namespace, key, maxAge)
	if !ok {
		c.log.Debug().Str("namespace", namespace).Str("key", key).Msg("cache_miss")
	}
	return v, ok
}

// Put upserts a value under (namespace, key).
func (c *Cache) Put(namespace, key string, value []byte) error {
	if err := c.store.Put(namespace, key, value); err != nil {
		c.log.Error().Err(err).Str("namespace", namespace).Str("key", key).Msg("cache_put_error")
		return err
	}
	return nil
}

// ClearCompany removes every namespace's rows keyed by companyID. Called
// by the CLI's clear command; the orchestrator never calls it.
func (c *Cache) ClearCompany(companyID string) error {
	if err := c.store.ClearCompany(companyID); err != nil {
		c.log.Error().Err(err).Str("company_id", companyID).Msg("cache_clear_company_error")
		return err
	}
	return nil
}

// Close releases the backing store's resources.
func (c *Cache) Close() error { return c.store.Close() }
