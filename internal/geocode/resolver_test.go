package geocode_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"casework-backend/internal/geocode"
	"casework-backend/internal/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeStore is an in-memory ClientStore for unit tests.
type fakeStore struct {
	mu      sync.Mutex
	clients map[int]*models.Client
	// failWrites marks ids whose coordinate writes should error
	failWrites map[int]bool
	writes     int
}

func newFakeStore(clients ...*models.Client) *fakeStore {
	s := &fakeStore{
		clients:    make(map[int]*models.Client),
		failWrites: make(map[int]bool),
	}
	for _, c := range clients {
		s.clients[c.ID] = c
	}
	return s
}

func (s *fakeStore) NextUnresolved(ctx context.Context, skip []int) (*models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	skipped := make(map[int]bool, len(skip))
	for _, id := range skip {
		skipped[id] = true
	}

	var ids []int
	for id, c := range s.clients {
		if c.Latitude == nil && !skipped[id] {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, geocode.ErrNoCandidate
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ids)))
	c := *s.clients[ids[0]]
	return &c, nil
}

func (s *fakeStore) SentinelIDs(ctx context.Context) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []int
	for id, c := range s.clients {
		if c.Latitude != nil && c.Longitude != nil && *c.Latitude == 0 && *c.Longitude == 0 {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids, nil
}

func (s *fakeStore) Get(ctx context.Context, id int) (*models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients[id]
	if !ok {
		return nil, fmt.Errorf("client %d not found", id)
	}
	copied := *c
	return &copied, nil
}

func (s *fakeStore) UpdateCoordinates(ctx context.Context, id int, lat, lon float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWrites[id] {
		return errors.New("write failed")
	}
	c, ok := s.clients[id]
	if !ok {
		return fmt.Errorf("client %d not found", id)
	}
	c.Latitude = &lat
	c.Longitude = &lon
	s.writes++
	return nil
}

// fakeGeocoder answers queries from a canned table and records every query.
type fakeGeocoder struct {
	results map[string][]geocode.Result
	errs    map[string]error
	queries []string
}

func newFakeGeocoder() *fakeGeocoder {
	return &fakeGeocoder{
		results: make(map[string][]geocode.Result),
		errs:    make(map[string]error),
	}
}

func (g *fakeGeocoder) Search(ctx context.Context, query string) ([]geocode.Result, error) {
	g.queries = append(g.queries, query)
	if err, ok := g.errs[query]; ok {
		return nil, err
	}
	return g.results[query], nil
}

func (g *fakeGeocoder) Reverse(ctx context.Context, lat, lon float64) (*geocode.Address, error) {
	return nil, errors.New("not implemented")
}

func newTestResolver(store geocode.ClientStore, g geocode.Geocoder) *geocode.Resolver {
	r := geocode.NewResolver(store, g, zap.NewNop())
	r.ClientDelay = 0
	r.VariantDelay = 0
	return r
}

func clientWithAddress(id int, street, city string) *models.Client {
	return &models.Client{ID: id, FirstName: "Test", LastName: "Client", Street: street, City: city}
}

func TestResolveOneVariantOrdering(t *testing.T) {
	client := clientWithAddress(1, "Hrdinů278 (vchod B)", "Teplice")
	store := newFakeStore(client)
	g := newFakeGeocoder()
	// Literal fails, cleaned variant matches.
	g.results["Hrdinů 278, Teplice, Česká republika"] = []geocode.Result{{Latitude: 50.64, Longitude: 13.82}}

	r := newTestResolver(store, g)
	outcome, err := r.ResolveOne(context.Background(), client)
	require.NoError(t, err)
	require.Equal(t, geocode.OutcomeResolved, outcome)

	require.Equal(t, []string{
		"Hrdinů278 (vchod B), Teplice, Česká republika",
		"Hrdinů 278, Teplice, Česká republika",
	}, g.queries)

	saved, err := store.Get(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 50.64, *saved.Latitude)
	require.Equal(t, 13.82, *saved.Longitude)
}

func TestResolveOneCleanedFallback(t *testing.T) {
	client := clientWithAddress(7, "K. J. Erbena1097/8", "Teplice")
	store := newFakeStore(client)
	g := newFakeGeocoder()
	g.results["K. J. Erbena 1097/8, Teplice, Česká republika"] = []geocode.Result{{Latitude: 50.64, Longitude: 13.82}}

	r := newTestResolver(store, g)
	outcome, err := r.ResolveOne(context.Background(), client)
	require.NoError(t, err)
	require.Equal(t, geocode.OutcomeResolved, outcome)

	// The literal and the cleaned variant, nothing more.
	require.Len(t, g.queries, 2)

	saved, _ := store.Get(context.Background(), 7)
	require.Equal(t, 50.64, *saved.Latitude)
	require.Equal(t, 13.82, *saved.Longitude)
}

func TestResolveOneForwardProgress(t *testing.T) {
	// Whatever happens, one call leaves the coordinates non-null.
	cases := []struct {
		name   string
		client *models.Client
		setup  func(*fakeGeocoder)
		want   geocode.Outcome
	}{
		{
			name:   "all variants miss",
			client: clientWithAddress(1, "Neexistující 99", "Nikde"),
			setup:  func(g *fakeGeocoder) {},
			want:   geocode.OutcomeSentinel,
		},
		{
			name:   "geocoder errors on every variant",
			client: clientWithAddress(2, "Dlouhá 1", "Most"),
			setup: func(g *fakeGeocoder) {
				g.errs["Dlouhá 1, Most, Česká republika"] = errors.New("timeout")
			},
			want: geocode.OutcomeSentinel,
		},
		{
			name:   "empty address",
			client: clientWithAddress(3, "", ""),
			setup:  func(g *fakeGeocoder) {},
			want:   geocode.OutcomeSentinel,
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore(tt.client)
			g := newFakeGeocoder()
			tt.setup(g)

			r := newTestResolver(store, g)
			outcome, err := r.ResolveOne(context.Background(), tt.client)
			require.NoError(t, err)
			require.Equal(t, tt.want, outcome)

			saved, _ := store.Get(context.Background(), tt.client.ID)
			require.NotNil(t, saved.Latitude)
			require.NotNil(t, saved.Longitude)
			require.Zero(t, *saved.Latitude)
			require.Zero(t, *saved.Longitude)
		})
	}
}

func TestBasicPassProcessesNewestFirst(t *testing.T) {
	store := newFakeStore(
		clientWithAddress(1, "Masarykova 1", "Most"),
		clientWithAddress(2, "Masarykova 2", "Most"),
		clientWithAddress(3, "Masarykova 3", "Most"),
	)
	g := newFakeGeocoder()
	for i := 1; i <= 3; i++ {
		g.results[fmt.Sprintf("Masarykova %d, Most, Česká republika", i)] =
			[]geocode.Result{{Latitude: 50.5, Longitude: 13.6}}
	}

	r := newTestResolver(store, g)
	summary, err := r.RunBasicPass(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, summary.Processed)
	require.Equal(t, 3, summary.Resolved)
	require.Zero(t, summary.Failed)
	require.Zero(t, summary.Errors)

	// Descending id order.
	require.Equal(t, []string{
		"Masarykova 3, Most, Česká republika",
		"Masarykova 2, Most, Česká republika",
		"Masarykova 1, Most, Česká republika",
	}, g.queries)
}

func TestBasicPassSkipsClientAfterWriteError(t *testing.T) {
	store := newFakeStore(
		clientWithAddress(1, "Masarykova 1", "Most"),
		clientWithAddress(2, "Masarykova 2", "Most"),
	)
	store.failWrites[2] = true
	g := newFakeGeocoder()
	g.results["Masarykova 1, Most, Česká republika"] = []geocode.Result{{Latitude: 50.5, Longitude: 13.6}}
	g.results["Masarykova 2, Most, Česká republika"] = []geocode.Result{{Latitude: 50.5, Longitude: 13.6}}

	r := newTestResolver(store, g)
	summary, err := r.RunBasicPass(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, summary.Processed)
	require.Equal(t, 1, summary.Resolved)
	require.Equal(t, 1, summary.Errors)

	// Client 2 was attempted exactly once, then skipped.
	require.Equal(t, []string{
		"Masarykova 2, Most, Česká republika",
		"Masarykova 1, Most, Česká republika",
	}, g.queries)
}

func TestRecoveryPassScope(t *testing.T) {
	zero := 0.0
	resolvedLat, resolvedLon := 50.1, 14.4

	unresolved := clientWithAddress(1, "Masarykova 1", "Most")
	sentinel := clientWithAddress(2, "Hrdinů278", "Teplice")
	sentinel.Latitude, sentinel.Longitude = &zero, &zero
	resolved := clientWithAddress(3, "Dlouhá 3", "Praha")
	resolved.Latitude, resolved.Longitude = &resolvedLat, &resolvedLon

	store := newFakeStore(unresolved, sentinel, resolved)
	g := newFakeGeocoder()
	g.results["Hrdinů 278, Teplice, Česká republika"] = []geocode.Result{{Latitude: 50.64, Longitude: 13.82}}

	r := newTestResolver(store, g)
	summary, err := r.RunRecoveryPass(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, summary.Processed)
	require.Equal(t, 1, summary.Resolved)

	// Only the sentinel client was queried; the unresolved and resolved
	// records belong to the basic pass and to nobody, respectively.
	for _, q := range g.queries {
		require.Contains(t, q, "Teplice")
	}

	promoted, _ := store.Get(context.Background(), 2)
	require.Equal(t, 50.64, *promoted.Latitude)

	untouched, _ := store.Get(context.Background(), 1)
	require.Nil(t, untouched.Latitude)
}

func TestRecoveryPassVisitsEachRecordOnce(t *testing.T) {
	zero := 0.0
	stillBad := clientWithAddress(5, "Neznámá 1", "Nikde")
	stillBad.Latitude, stillBad.Longitude = &zero, &zero

	store := newFakeStore(stillBad)
	g := newFakeGeocoder()

	r := newTestResolver(store, g)
	summary, err := r.RunRecoveryPass(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, summary.Processed)
	require.Equal(t, 1, summary.Failed)

	// The single variant was tried exactly once, never revisited.
	require.Len(t, g.queries, 1)
}
