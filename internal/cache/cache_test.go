package cache

import (
	"testing"
	"time"
)

func TestGetAfterPutWithinTTL(t *testing.T) {
	c := New(NewMemoryStore())
	if err := c.Put(NamespaceCompanyFacts, "0000320193", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	v, ok := c.Get(NamespaceCompanyFacts, "0000320193", time.Hour)
	if !ok {
		t.Fatalf("expected hit within TTL")
	}
	if string(v) != `{"a":1}` {
		t.Fatalf("unexpected value: %s", v)
	}
}

func TestGetOutsideTTLReturnsAbsent(t *testing.T) {
	store := NewMemoryStore()
	c := New(store)
	if err := c.Put(NamespaceCompanyFacts, "k", []byte("v")); err != nil {
		t.Fatalf("put: %v", err)
	}
	// Force staleness by back-dating the entry directly.
	store.mu.Lock()
	e := store.data[NamespaceCompanyFacts]["k"]
	e.InsertedAt = time.Now().Add(-2 * time.Hour)
	store.data[NamespaceCompanyFacts]["k"] = e
	store.mu.Unlock()

	if _, ok := c.Get(NamespaceCompanyFacts, "k", time.Hour); ok {
		t.Fatalf("expected miss past TTL")
	}
}

func TestClearCompanySweepsKeyedNamespacesOnly(t *testing.T) {
	c := New(NewMemoryStore())
	mustPut := func(ns, key string) {
		if err := c.Put(ns, key, []byte("x")); err != nil {
			t.Fatalf("put %s/%s: %v", ns, key, err)
		}
	}
	mustPut(NamespaceCompanyFacts, "0000320193")
	mustPut(NamespaceFilingText, "0000320193_0000320193-24-000081")
	mustPut(NamespaceCompanySearch, "apple inc")

	if err := c.ClearCompany("0000320193"); err != nil {
		t.Fatalf("clear: %v", err)
	}

	if _, ok := c.Get(NamespaceCompanyFacts, "0000320193", time.Hour); ok {
		t.Fatalf("facts should be cleared")
	}
	if _, ok := c.Get(NamespaceFilingText, "0000320193_0000320193-24-000081", time.Hour); ok {
		t.Fatalf("filing text should be cleared")
	}
	if _, ok := c.Get(NamespaceCompanySearch, "apple inc", time.Hour); !ok {
		t.Fatalf("company_search is not company-keyed and should survive")
	}
}
