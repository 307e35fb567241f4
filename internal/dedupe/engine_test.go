package dedupe

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"testing"
	"time"

	"casework-backend/internal/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeStore is an in-memory Store. WithTx works on a copy of the data and
// swaps it in only when fn succeeds, so a failed pair rolls back.
type fakeStore struct {
	clients map[int]*models.Client
	visits  map[int]*models.Visit
	logs    []*models.MergeLog

	lockHeld         bool
	failDeleteClient map[int]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		clients:          make(map[int]*models.Client),
		visits:           make(map[int]*models.Visit),
		failDeleteClient: make(map[int]bool),
	}
}

func (s *fakeStore) addClient(c models.Client) {
	s.clients[c.ID] = &c
}

func (s *fakeStore) addVisit(v models.Visit) {
	s.visits[v.ID] = &v
}

func (s *fakeStore) visitsOf(clientID int) []*models.Visit {
	var out []*models.Visit
	for _, v := range s.visits {
		if v.ClientID == clientID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *fakeStore) TryLock(ctx context.Context) (bool, error) {
	if s.lockHeld {
		return false, nil
	}
	s.lockHeld = true
	return true, nil
}

func (s *fakeStore) Unlock(ctx context.Context) error {
	s.lockHeld = false
	return nil
}

func (s *fakeStore) Snapshot(ctx context.Context) ([]*models.Client, error) {
	out := make([]*models.Client, 0, len(s.clients))
	for _, c := range s.clients {
		copied := *c
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeStore) WithTx(ctx context.Context, fn func(Tx) error) error {
	work := &fakeTx{
		clients:          make(map[int]*models.Client, len(s.clients)),
		visits:           make(map[int]*models.Visit, len(s.visits)),
		logs:             append([]*models.MergeLog(nil), s.logs...),
		failDeleteClient: s.failDeleteClient,
	}
	for id, c := range s.clients {
		copied := *c
		work.clients[id] = &copied
	}
	for id, v := range s.visits {
		copied := *v
		work.visits[id] = &copied
	}

	if err := fn(work); err != nil {
		return err
	}
	s.clients = work.clients
	s.visits = work.visits
	s.logs = work.logs
	return nil
}

type fakeTx struct {
	clients          map[int]*models.Client
	visits           map[int]*models.Visit
	logs             []*models.MergeLog
	failDeleteClient map[int]bool
}

func (t *fakeTx) GetClient(ctx context.Context, id int) (*models.Client, error) {
	c, ok := t.clients[id]
	if !ok {
		return nil, fmt.Errorf("client %d not found", id)
	}
	copied := *c
	return &copied, nil
}

func (t *fakeTx) ApplyBackfill(ctx context.Context, survivorID int, bf Backfill) error {
	c, ok := t.clients[survivorID]
	if !ok {
		return fmt.Errorf("client %d not found", survivorID)
	}
	if c.CehupoID == nil && bf.CehupoID != nil {
		c.CehupoID = bf.CehupoID
	}
	if c.Email == nil && bf.Email != nil {
		c.Email = bf.Email
	}
	if c.ArrivalDate == nil && bf.ArrivalDate != nil {
		c.ArrivalDate = bf.ArrivalDate
	}
	if c.RegistrationDate == nil && bf.RegistrationDate != nil {
		c.RegistrationDate = bf.RegistrationDate
	}
	return nil
}

func (t *fakeTx) VisitsByClient(ctx context.Context, clientID int) ([]*models.Visit, error) {
	var out []*models.Visit
	for _, v := range t.visits {
		if v.ClientID == clientID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *fakeTx) ReparentVisits(ctx context.Context, visitIDs []int, newClientID int) error {
	for _, id := range visitIDs {
		v, ok := t.visits[id]
		if !ok {
			return fmt.Errorf("visit %d not found", id)
		}
		v.ClientID = newClientID
	}
	return nil
}

func (t *fakeTx) DeleteVisits(ctx context.Context, visitIDs []int) error {
	for _, id := range visitIDs {
		delete(t.visits, id)
	}
	return nil
}

func (t *fakeTx) DeleteClient(ctx context.Context, id int) error {
	if t.failDeleteClient[id] {
		return fmt.Errorf("forced failure deleting client %d", id)
	}
	if _, ok := t.clients[id]; !ok {
		return fmt.Errorf("client %d not deleted", id)
	}
	delete(t.clients, id)
	return nil
}

func (t *fakeTx) InsertMergeLog(ctx context.Context, log *models.MergeLog) error {
	t.logs = append(t.logs, log)
	return nil
}

func newTestEngine(store *fakeStore) *Engine {
	return NewEngine(store, NameStrategy{}, zap.NewNop())
}

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestRunMergesOldestWinsAndBackfills(t *testing.T) {
	cehupo := 1937
	store := newFakeStore()
	store.addClient(models.Client{
		ID: 1, FirstName: "Olena", LastName: "Kovalenko",
		CreatedAt: day("2024-01-01"),
	})
	store.addClient(models.Client{
		ID: 2, FirstName: "Olena", LastName: "Kovalenko",
		CehupoID: &cehupo, CreatedAt: day("2024-06-01"),
	})
	store.addVisit(models.Visit{ID: 10, ClientID: 2, VisitDate: day("2024-03-01"), Subject: "Konzultace"})

	summary, err := newTestEngine(store).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, summary.Pairs)
	require.Equal(t, 1, summary.Merged)
	require.Equal(t, 0, summary.Failed)
	require.Equal(t, 1, summary.VisitsMoved)
	require.Equal(t, 0, summary.VisitsDiscarded)

	// The older record survives and inherits the newer one's cehupo id.
	survivor := store.clients[1]
	require.NotNil(t, survivor)
	require.NotNil(t, survivor.CehupoID)
	require.Equal(t, 1937, *survivor.CehupoID)

	// The newer record is gone; its visit now belongs to the survivor.
	require.NotContains(t, store.clients, 2)
	visits := store.visitsOf(1)
	require.Len(t, visits, 1)
	require.Equal(t, "Konzultace", visits[0].Subject)

	require.Len(t, store.logs, 1)
	log := store.logs[0]
	require.Equal(t, 1, log.SurvivorID)
	require.Equal(t, 2, log.LoserID)
	require.Equal(t, "olena|kovalenko", log.MatchKey)
	require.Equal(t, []string{"cehupo_id"}, log.FieldsBackfilled)

	// The snapshot preserves the deleted row in full.
	var snapshot models.Client
	require.NoError(t, json.Unmarshal(log.LoserSnapshot, &snapshot))
	require.Equal(t, 2, snapshot.ID)
	require.Equal(t, "Olena", snapshot.FirstName)
	require.Equal(t, "Kovalenko", snapshot.LastName)
	require.NotNil(t, snapshot.CehupoID)
	require.Equal(t, 1937, *snapshot.CehupoID)
}

func TestRunIsIdempotent(t *testing.T) {
	store := newFakeStore()
	store.addClient(models.Client{ID: 1, FirstName: "Ivan", LastName: "Petrov", CreatedAt: day("2023-02-01")})
	store.addClient(models.Client{ID: 2, FirstName: "Ivan", LastName: "Petrov", CreatedAt: day("2023-05-01")})

	engine := newTestEngine(store)

	first, err := engine.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, first.Merged)

	second, err := engine.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, second.Pairs)
	require.Equal(t, 0, second.Merged)
	require.Len(t, store.clients, 1)
	require.Len(t, store.logs, 1)
}

func TestRunPreservesVisitCount(t *testing.T) {
	store := newFakeStore()
	store.addClient(models.Client{ID: 1, FirstName: "Maria", LastName: "Shevchenko", CreatedAt: day("2022-01-01")})
	store.addClient(models.Client{ID: 2, FirstName: "Maria", LastName: "Shevchenko", CreatedAt: day("2023-01-01")})
	store.addClient(models.Client{ID: 3, FirstName: "Maria", LastName: "Shevchenko", CreatedAt: day("2024-01-01")})

	// Seven visits across the group, all distinct (date, subject) pairs.
	store.addVisit(models.Visit{ID: 10, ClientID: 1, VisitDate: day("2024-01-10"), Subject: "Konzultace"})
	store.addVisit(models.Visit{ID: 11, ClientID: 1, VisitDate: day("2024-01-17"), Subject: "Konzultace"})
	store.addVisit(models.Visit{ID: 12, ClientID: 2, VisitDate: day("2024-02-01"), Subject: "Tlumočení"})
	store.addVisit(models.Visit{ID: 13, ClientID: 2, VisitDate: day("2024-02-08"), Subject: "Doprovod"})
	store.addVisit(models.Visit{ID: 14, ClientID: 3, VisitDate: day("2024-03-01"), Subject: "Konzultace"})
	store.addVisit(models.Visit{ID: 15, ClientID: 3, VisitDate: day("2024-03-08"), Subject: "Tlumočení"})
	store.addVisit(models.Visit{ID: 16, ClientID: 3, VisitDate: day("2024-03-15"), Subject: "Konzultace"})

	summary, err := newTestEngine(store).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, summary.Merged)
	require.Equal(t, 5, summary.VisitsMoved)
	require.Equal(t, 0, summary.VisitsDiscarded)

	// No visit was lost; all seven belong to the survivor.
	require.Len(t, store.clients, 1)
	require.Len(t, store.visitsOf(1), 7)
}

func TestRunDiscardsTrueDuplicateVisits(t *testing.T) {
	store := newFakeStore()
	store.addClient(models.Client{ID: 1, FirstName: "Anna", LastName: "Bondar", CreatedAt: day("2023-01-01")})
	store.addClient(models.Client{ID: 2, FirstName: "Anna", LastName: "Bondar", CreatedAt: day("2024-01-01")})

	store.addVisit(models.Visit{ID: 10, ClientID: 1, VisitDate: day("2024-03-01"), Subject: "Konzultace"})
	store.addVisit(models.Visit{ID: 11, ClientID: 2, VisitDate: day("2024-03-01"), Subject: "Konzultace"})
	store.addVisit(models.Visit{ID: 12, ClientID: 2, VisitDate: day("2024-04-01"), Subject: "Konzultace"})

	summary, err := newTestEngine(store).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, summary.VisitsMoved)
	require.Equal(t, 1, summary.VisitsDiscarded)

	visits := store.visitsOf(1)
	require.Len(t, visits, 2)
	require.NotContains(t, store.visits, 11)
}

func TestRunNeverOverwritesSurvivorFields(t *testing.T) {
	oldMail := "olena.k@example.org"
	newMail := "olena.other@example.org"
	store := newFakeStore()
	store.addClient(models.Client{
		ID: 1, FirstName: "Olena", LastName: "Kovalenko",
		Email: &oldMail, CreatedAt: day("2023-01-01"),
	})
	store.addClient(models.Client{
		ID: 2, FirstName: "Olena", LastName: "Kovalenko",
		Email: &newMail, CreatedAt: day("2024-01-01"),
	})

	_, err := newTestEngine(store).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, oldMail, *store.clients[1].Email)
}

func TestRunContinuesAfterPairFailure(t *testing.T) {
	store := newFakeStore()
	store.addClient(models.Client{ID: 1, FirstName: "Ivan", LastName: "Petrov", CreatedAt: day("2023-01-01")})
	store.addClient(models.Client{ID: 2, FirstName: "Ivan", LastName: "Petrov", CreatedAt: day("2024-01-01")})
	store.addClient(models.Client{ID: 3, FirstName: "Maria", LastName: "Shevchenko", CreatedAt: day("2023-01-01")})
	store.addClient(models.Client{ID: 4, FirstName: "Maria", LastName: "Shevchenko", CreatedAt: day("2024-01-01")})
	store.addVisit(models.Visit{ID: 10, ClientID: 2, VisitDate: day("2024-05-01"), Subject: "Konzultace"})
	store.failDeleteClient[2] = true

	summary, err := newTestEngine(store).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, summary.Pairs)
	require.Equal(t, 1, summary.Merged)
	require.Equal(t, 1, summary.Failed)

	// The failed pair rolled back in full: the loser and its visit remain.
	require.Contains(t, store.clients, 2)
	require.Len(t, store.visitsOf(2), 1)
	// The other pair went through.
	require.NotContains(t, store.clients, 4)
	require.Len(t, store.logs, 1)
}

func TestRunRefusesConcurrentBatch(t *testing.T) {
	store := newFakeStore()
	store.lockHeld = true

	_, err := newTestEngine(store).Run(context.Background())
	require.ErrorIs(t, err, ErrAlreadyRunning)
}

func TestPlanPairsSkipsNamelessRecords(t *testing.T) {
	store := newFakeStore()
	store.addClient(models.Client{ID: 1, CreatedAt: day("2023-01-01")})
	store.addClient(models.Client{ID: 2, CreatedAt: day("2024-01-01")})

	pairs, err := newTestEngine(store).PlanPairs(context.Background())
	require.NoError(t, err)
	require.Empty(t, pairs)
}
