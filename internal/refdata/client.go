// Package refdata fetches the two static reference documents, the machine
// list and the group list, through the read-through cache, with a shared
// retry budget and a circuit breaker in front of the remote store.
package refdata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"pindrome/internal/catalog"
	"pindrome/internal/refcache"
)

// ErrDataUnavailable reports that a reference fetch failed after the retry
// budget was exhausted. Retryable from the caller's point of view.
var ErrDataUnavailable = errors.New("reference data unavailable")

const (
	machinesKey = "machines"
	groupsKey   = "groups"

	fetchTimeout = 30 * time.Second
)

type Config struct {
	MachinesURL string
	GroupsURL   string
	TTL         time.Duration
	Retry       Policy
}

type Client struct {
	cfg     Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	cache   *refcache.Cache
	log     zerolog.Logger
}

func NewClient(cfg Config, cache *refcache.Cache, log zerolog.Logger) *Client {
	if cfg.TTL <= 0 {
		cfg.TTL = refcache.DefaultTTL
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = DefaultPolicy
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: fetchTimeout},
		breaker: gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
			Name:    "refdata",
			Timeout: 60 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
		cache: cache,
		log:   log.With().Str("component", "refdata").Logger(),
	}
}

// Machines returns the full machine list, served from cache within the TTL.
func (c *Client) Machines(ctx context.Context) ([]catalog.Machine, error) {
	return refcache.Get(ctx, c.cache, machinesKey, c.cfg.TTL, c.fetchMachines)
}

// Groups returns the group list, served from cache within the TTL.
func (c *Client) Groups(ctx context.Context) ([]catalog.MachineGroup, error) {
	return refcache.Get(ctx, c.cache, groupsKey, c.cfg.TTL, c.fetchGroups)
}

// Refresh drops both cached documents and fetches them anew.
func (c *Client) Refresh(ctx context.Context) error {
	c.cache.Clear(machinesKey)
	c.cache.Clear(groupsKey)
	if _, err := c.Machines(ctx); err != nil {
		return err
	}
	_, err := c.Groups(ctx)
	return err
}

// machineDoc mirrors the wire shape of one machine record.
type machineDoc struct {
	ID           string `json:"opdb_id"`
	Name         string `json:"name"`
	Manufacturer struct {
		Name string `json:"name"`
	} `json:"manufacturer"`
	ManufactureDate string   `json:"manufacture_date"`
	Display         string   `json:"display"`
	Features        []string `json:"features"`
	Images          []struct {
		URLs struct {
			Large  string `json:"large"`
			Medium string `json:"medium"`
			Small  string `json:"small"`
		} `json:"urls"`
	} `json:"images"`
}

type groupDoc struct {
	ID   string `json:"opdb_id"`
	Name string `json:"name"`
}

func (c *Client) fetchMachines(ctx context.Context) ([]catalog.Machine, error) {
	body, err := c.fetch(ctx, "machines", c.cfg.MachinesURL)
	if err != nil {
		return nil, err
	}
	var docs []machineDoc
	if err := json.Unmarshal(body, &docs); err != nil {
		return nil, fmt.Errorf("decode machine list: %w", err)
	}
	out := make([]catalog.Machine, 0, len(docs))
	for _, d := range docs {
		if d.ID == "" {
			continue
		}
		m := catalog.Machine{
			ID:           d.ID,
			Name:         d.Name,
			Manufacturer: d.Manufacturer.Name,
			ReleaseDate:  d.ManufactureDate,
			Display:      catalog.Display(d.Display),
			Features:     d.Features,
		}
		if m.Display == "" {
			m.Display = catalog.DisplayUnknown
		}
		for _, img := range d.Images {
			m.Images = append(m.Images, catalog.ImageRef{
				Large:  img.URLs.Large,
				Medium: img.URLs.Medium,
				Small:  img.URLs.Small,
			})
		}
		out = append(out, m)
	}
	return out, nil
}

func (c *Client) fetchGroups(ctx context.Context) ([]catalog.MachineGroup, error) {
	body, err := c.fetch(ctx, "groups", c.cfg.GroupsURL)
	if err != nil {
		return nil, err
	}
	var docs []groupDoc
	if err := json.Unmarshal(body, &docs); err != nil {
		return nil, fmt.Errorf("decode group list: %w", err)
	}
	out := make([]catalog.MachineGroup, 0, len(docs))
	for _, d := range docs {
		if d.ID == "" {
			continue
		}
		out = append(out, catalog.MachineGroup{ID: d.ID, Name: d.Name})
	}
	return out, nil
}

// fetch runs one retried, breaker-guarded GET. Exhaustion of the retry
// budget surfaces as ErrDataUnavailable with the last cause attached.
func (c *Client) fetch(ctx context.Context, op, url string) ([]byte, error) {
	var body []byte
	err := c.cfg.Retry.Do(ctx, c.log, op, func(ctx context.Context) error {
		b, err := c.breaker.Execute(func() ([]byte, error) {
			return c.get(ctx, url)
		})
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDataUnavailable, op, err)
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
