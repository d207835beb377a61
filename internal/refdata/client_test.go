package refdata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"pindrome/internal/catalog"
	"pindrome/internal/refcache"
)

func testCache(t *testing.T) *refcache.Cache {
	t.Helper()
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		t.Fatalf("open badger: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return refcache.New(db, zerolog.Nop())
}

// fastPolicy keeps retry tests well under a second.
var fastPolicy = Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, Multiplier: 1}

const machinesBody = `[
	{
		"opdb_id": "G1-M1",
		"name": "Medieval Madness",
		"manufacturer": {"name": "Williams"},
		"manufacture_date": "1997-06-01",
		"display": "dmd",
		"features": ["Flipper gap (standard)"],
		"images": [{"urls": {"large": "https://img/l.jpg", "medium": "https://img/m.jpg", "small": "https://img/s.jpg"}}]
	},
	{"opdb_id": "", "name": "no id, dropped"},
	{"opdb_id": "G2-M1", "name": "Genie", "manufacturer": {"name": "Gottlieb"}}
]`

const groupsBody = `[
	{"opdb_id": "G1", "name": "Medieval Madness"},
	{"opdb_id": "", "name": "dropped"},
	{"opdb_id": "G2", "name": "Genie"}
]`

func TestPolicyRetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := fastPolicy.Do(context.Background(), zerolog.Nop(), "op", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestPolicyReturnsLastError(t *testing.T) {
	last := errors.New("still broken")
	calls := 0
	err := fastPolicy.Do(context.Background(), zerolog.Nop(), "op", func(context.Context) error {
		calls++
		return last
	})
	if !errors.Is(err, last) {
		t.Fatalf("err = %v, want %v", err, last)
	}
	if calls != fastPolicy.MaxAttempts {
		t.Fatalf("calls = %d, want %d", calls, fastPolicy.MaxAttempts)
	}
}

func TestPolicyStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	p := Policy{MaxAttempts: 5, BaseDelay: 10 * time.Millisecond, Multiplier: 1}
	err := p.Do(ctx, zerolog.Nop(), "op", func(context.Context) error {
		calls++
		cancel()
		return errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestMachinesDecodesWireFormat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(machinesBody))
	}))
	defer srv.Close()

	c := NewClient(Config{MachinesURL: srv.URL, TTL: time.Hour, Retry: fastPolicy}, testCache(t), zerolog.Nop())
	machines, err := c.Machines(context.Background())
	if err != nil {
		t.Fatalf("Machines: %v", err)
	}
	if len(machines) != 2 {
		t.Fatalf("got %d machines, want 2 (blank ids dropped)", len(machines))
	}

	m := machines[0]
	if m.ID != "G1-M1" || m.Name != "Medieval Madness" || m.Manufacturer != "Williams" {
		t.Fatalf("unexpected machine %+v", m)
	}
	if m.Display != catalog.DisplayDMD {
		t.Fatalf("Display = %q, want %q", m.Display, catalog.DisplayDMD)
	}
	if len(m.Images) != 1 || m.Images[0].Large != "https://img/l.jpg" {
		t.Fatalf("unexpected images %+v", m.Images)
	}
	if machines[1].Display != catalog.DisplayUnknown {
		t.Fatalf("missing display should default to %q, got %q", catalog.DisplayUnknown, machines[1].Display)
	}
}

func TestGroupsDecodesWireFormat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(groupsBody))
	}))
	defer srv.Close()

	c := NewClient(Config{GroupsURL: srv.URL, TTL: time.Hour, Retry: fastPolicy}, testCache(t), zerolog.Nop())
	groups, err := c.Groups(context.Background())
	if err != nil {
		t.Fatalf("Groups: %v", err)
	}
	if len(groups) != 2 || groups[0].ID != "G1" || groups[1].Name != "Genie" {
		t.Fatalf("unexpected groups %+v", groups)
	}
}

func TestMachinesServedFromCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(machinesBody))
	}))
	defer srv.Close()

	c := NewClient(Config{MachinesURL: srv.URL, TTL: time.Hour, Retry: fastPolicy}, testCache(t), zerolog.Nop())
	if _, err := c.Machines(context.Background()); err != nil {
		t.Fatalf("first Machines: %v", err)
	}
	if _, err := c.Machines(context.Background()); err != nil {
		t.Fatalf("second Machines: %v", err)
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("upstream hits = %d, want 1", got)
	}
}

func TestRefreshRefetches(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/groups" {
			_, _ = w.Write([]byte(groupsBody))
			return
		}
		_, _ = w.Write([]byte(machinesBody))
	}))
	defer srv.Close()

	cfg := Config{MachinesURL: srv.URL + "/machines", GroupsURL: srv.URL + "/groups", TTL: time.Hour, Retry: fastPolicy}
	c := NewClient(cfg, testCache(t), zerolog.Nop())
	if _, err := c.Machines(context.Background()); err != nil {
		t.Fatalf("Machines: %v", err)
	}
	if _, err := c.Groups(context.Background()); err != nil {
		t.Fatalf("Groups: %v", err)
	}
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if got := hits.Load(); got != 4 {
		t.Fatalf("upstream hits = %d, want 4", got)
	}
}

func TestFetchFailureSurfacesAsDataUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(Config{MachinesURL: srv.URL, TTL: time.Hour, Retry: fastPolicy}, testCache(t), zerolog.Nop())
	_, err := c.Machines(context.Background())
	if !errors.Is(err, ErrDataUnavailable) {
		t.Fatalf("err = %v, want ErrDataUnavailable", err)
	}
}
