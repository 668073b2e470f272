package insights

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/mmdatafocus/insights_backend/models"
	"github.com/mmdatafocus/insights_backend/shopsync"
	"github.com/sirupsen/logrus"
)

// NOTE: These tests are intentionally DB- and Redis-free. They validate the
// engine semantics against fakes:
// - fetch failures degrade to empty collections, never to a failed run
// - duplicate triggers coalesce onto the stored result
// - a store outage costs persistence, not the response

type fakeSource struct {
	mu            sync.Mutex
	orderCalls    int
	productCalls  int
	customerCalls int
	orders        []shopsync.RawOrder
	products      []shopsync.RawProduct
	customers     []shopsync.RawCustomer
	orderErr      error
	productErr    error
	customerErr   error
}

func (s *fakeSource) FetchOrders(ctx context.Context, storeId string, since, until time.Time) ([]shopsync.RawOrder, error) {
	s.mu.Lock()
	s.orderCalls++
	s.mu.Unlock()
	return s.orders, s.orderErr
}

func (s *fakeSource) FetchProducts(ctx context.Context, storeId string) ([]shopsync.RawProduct, error) {
	s.mu.Lock()
	s.productCalls++
	s.mu.Unlock()
	return s.products, s.productErr
}

func (s *fakeSource) FetchCustomers(ctx context.Context, storeId string) ([]shopsync.RawCustomer, error) {
	s.mu.Lock()
	s.customerCalls++
	s.mu.Unlock()
	return s.customers, s.customerErr
}

type fakeStore struct {
	mu        sync.Mutex
	bundle    *models.InsightBundle
	summaries []*models.InsightSummary
	freshness time.Duration
	putErr    error
	putCalls  int
	getCalls  int
}

func (s *fakeStore) Put(ctx context.Context, bundle *models.InsightBundle, summaries []*models.InsightSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putCalls++
	if s.putErr != nil {
		return s.putErr
	}
	s.bundle = bundle
	s.summaries = summaries
	return nil
}

func (s *fakeStore) Get(ctx context.Context, businessId string, timeframe models.Timeframe) (*models.InsightBundle, []*models.InsightSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getCalls++
	return s.bundle, s.summaries, nil
}

func (s *fakeStore) IsFresh(ctx context.Context, businessId string, timeframe models.Timeframe, asOf time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bundle != nil && Fresh(s.bundle.GeneratedAt, asOf, s.freshness)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testEngine(source shopsync.Source, store Store) *Engine {
	engine := NewEngine(source, store, testTuning(), quietLogger(), nil)
	engine.now = func() time.Time { return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC) }
	return engine
}

func rawOrderFixture(id, total string) shopsync.RawOrder {
	return shopsync.RawOrder{
		Id:         id,
		TotalPrice: total,
		Currency:   "USD",
		CreatedAt:  "2026-08-25T10:00:00Z",
	}
}

func TestRun_ProducesBundleAndStoresIt(t *testing.T) {
	source := &fakeSource{orders: []shopsync.RawOrder{rawOrderFixture("o-1", "100.00"), rawOrderFixture("o-2", "50.00")}}
	store := &fakeStore{freshness: 6 * time.Hour}
	engine := testEngine(source, store)

	bundle, summaries, err := engine.Run(context.Background(), RunParams{
		BusinessId: "biz-1",
		StoreId:    "store-1",
		Timeframe:  models.TimeframeMonth,
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if bundle == nil || bundle.Id == "" {
		t.Fatal("expected a bundle with an id")
	}
	if bundle.Sales.OrderCount != 2 || bundle.Sales.Revenue.InexactFloat64() != 150 {
		t.Fatalf("unexpected sales block: %+v", bundle.Sales)
	}
	if len(summaries) != 3 {
		t.Fatalf("expected 3 summaries, got %d", len(summaries))
	}
	if store.putCalls != 1 || store.bundle == nil {
		t.Fatalf("expected the bundle persisted, putCalls=%d", store.putCalls)
	}
}

func TestRun_ValidatesParams(t *testing.T) {
	engine := testEngine(&fakeSource{}, &fakeStore{freshness: 6 * time.Hour})

	if _, _, err := engine.Run(context.Background(), RunParams{Timeframe: models.TimeframeMonth}); err == nil {
		t.Fatal("expected error for missing business id")
	}
	if _, _, err := engine.Run(context.Background(), RunParams{BusinessId: "biz-1", Timeframe: 14}); err == nil {
		t.Fatal("expected error for invalid timeframe")
	}
}

func TestRun_FetchFailureDegradesToEmpty(t *testing.T) {
	source := &fakeSource{
		orders:     []shopsync.RawOrder{rawOrderFixture("o-1", "100.00")},
		productErr: errors.New("upstream 503"),
	}
	store := &fakeStore{freshness: 6 * time.Hour}
	engine := testEngine(source, store)

	bundle, _, err := engine.Run(context.Background(), RunParams{
		BusinessId: "biz-1",
		StoreId:    "store-1",
		Timeframe:  models.TimeframeWeek,
	})
	if err != nil {
		t.Fatalf("run must not fail on a fetch error: %v", err)
	}
	if bundle.Sales.OrderCount != 1 {
		t.Fatalf("order data must survive a product fetch failure, got %+v", bundle.Sales)
	}
	if len(bundle.Inventory.LowStock) != 0 || len(bundle.Inventory.OutOfStock) != 0 {
		t.Fatalf("expected empty inventory on fetch failure, got %+v", bundle.Inventory)
	}
}

func TestRun_AllSourcesDownYieldsZeroBundle(t *testing.T) {
	boom := errors.New("upstream down")
	source := &fakeSource{orderErr: boom, productErr: boom, customerErr: boom}
	store := &fakeStore{freshness: 6 * time.Hour}
	engine := testEngine(source, store)

	bundle, summaries, err := engine.Run(context.Background(), RunParams{
		BusinessId: "biz-1",
		StoreId:    "store-1",
		Timeframe:  models.TimeframeMonth,
	})
	if err != nil {
		t.Fatalf("run must not fail when every source is down: %v", err)
	}
	if bundle.Sales.OrderCount != 0 || !bundle.Sales.Revenue.IsZero() {
		t.Fatalf("expected an all-zero bundle, got %+v", bundle.Sales)
	}
	for _, s := range summaries {
		if s.Urgency != models.UrgencyLow {
			t.Fatalf("zero bundle must not raise urgency, domain %s got %s", s.Domain, s.Urgency)
		}
	}
}

func TestRun_StoreOutageStillReturnsBundle(t *testing.T) {
	source := &fakeSource{orders: []shopsync.RawOrder{rawOrderFixture("o-1", "100.00")}}
	store := &fakeStore{freshness: 6 * time.Hour, putErr: errors.New("mysql down")}
	engine := testEngine(source, store)

	bundle, _, err := engine.Run(context.Background(), RunParams{
		BusinessId: "biz-1",
		StoreId:    "store-1",
		Timeframe:  models.TimeframeMonth,
	})
	if err != nil {
		t.Fatalf("store outage must not fail the run: %v", err)
	}
	if bundle == nil || bundle.Sales.OrderCount != 1 {
		t.Fatalf("expected the computed bundle back, got %+v", bundle)
	}
}

func TestFreshOrRun_ServesFreshBundleWithoutFetching(t *testing.T) {
	source := &fakeSource{}
	store := &fakeStore{
		freshness: 6 * time.Hour,
		bundle: &models.InsightBundle{
			Id:          "stored",
			BusinessId:  "biz-1",
			Timeframe:   models.TimeframeMonth,
			GeneratedAt: time.Date(2026, 8, 29, 11, 0, 0, 0, time.UTC), // 1h old
		},
	}
	engine := testEngine(source, store)

	bundle, _, err := engine.FreshOrRun(context.Background(), RunParams{
		BusinessId: "biz-1",
		StoreId:    "store-1",
		Timeframe:  models.TimeframeMonth,
	})
	if err != nil {
		t.Fatalf("FreshOrRun error: %v", err)
	}
	if bundle.Id != "stored" {
		t.Fatalf("expected the stored bundle, got %s", bundle.Id)
	}
	if source.orderCalls != 0 {
		t.Fatalf("fresh bundle must not trigger upstream fetches, got %d", source.orderCalls)
	}
}

func TestFreshOrRun_StaleBundleTriggersRun(t *testing.T) {
	source := &fakeSource{orders: []shopsync.RawOrder{rawOrderFixture("o-1", "100.00")}}
	store := &fakeStore{
		freshness: 6 * time.Hour,
		bundle: &models.InsightBundle{
			Id:          "stale",
			BusinessId:  "biz-1",
			Timeframe:   models.TimeframeMonth,
			GeneratedAt: time.Date(2026, 8, 29, 5, 0, 0, 0, time.UTC), // 7h old
		},
	}
	engine := testEngine(source, store)

	bundle, _, err := engine.FreshOrRun(context.Background(), RunParams{
		BusinessId: "biz-1",
		StoreId:    "store-1",
		Timeframe:  models.TimeframeMonth,
	})
	if err != nil {
		t.Fatalf("FreshOrRun error: %v", err)
	}
	if bundle.Id == "stale" {
		t.Fatal("expected a recomputed bundle, got the stale one")
	}
	if source.orderCalls == 0 {
		t.Fatal("stale bundle must trigger upstream fetches")
	}
}

func TestRun_ConcurrentTriggersCoalesce(t *testing.T) {
	source := &fakeSource{orders: []shopsync.RawOrder{rawOrderFixture("o-1", "100.00")}}
	store := &fakeStore{freshness: 6 * time.Hour}
	engine := testEngine(source, store)

	params := RunParams{BusinessId: "biz-1", StoreId: "store-1", Timeframe: models.TimeframeMonth}

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := engine.Run(context.Background(), params); err != nil {
				t.Errorf("Run error: %v", err)
			}
		}()
	}
	wg.Wait()

	// One compute = two order fetches (current + previous window). Every
	// other trigger must have coalesced onto the stored result.
	if source.orderCalls != 2 {
		t.Fatalf("expected exactly 2 order fetches, got %d", source.orderCalls)
	}
	if store.putCalls != 1 {
		t.Fatalf("expected exactly 1 store write, got %d", store.putCalls)
	}
}

func TestRun_ForceBypassesCoalescing(t *testing.T) {
	source := &fakeSource{orders: []shopsync.RawOrder{rawOrderFixture("o-1", "100.00")}}
	store := &fakeStore{freshness: 6 * time.Hour}
	engine := testEngine(source, store)

	params := RunParams{BusinessId: "biz-1", StoreId: "store-1", Timeframe: models.TimeframeMonth, Force: true}
	for i := 0; i < 3; i++ {
		if _, _, err := engine.Run(context.Background(), params); err != nil {
			t.Fatalf("Run %d error: %v", i, err)
		}
	}

	if store.putCalls != 3 {
		t.Fatalf("forced runs must recompute every time, got %d store writes", store.putCalls)
	}
}

func TestFresh_StrictWindow(t *testing.T) {
	window := 6 * time.Hour
	generatedAt := time.Date(2026, 8, 29, 6, 0, 0, 0, time.UTC)

	cases := []struct {
		asOf     time.Time
		expected bool
	}{
		{generatedAt.Add(5*time.Hour + 59*time.Minute), true},
		{generatedAt.Add(6 * time.Hour), false}, // exactly the window is stale
		{generatedAt.Add(6*time.Hour + 1*time.Minute), false},
		{generatedAt, true},
	}
	for _, tc := range cases {
		if got := Fresh(generatedAt, tc.asOf, window); got != tc.expected {
			t.Fatalf("Fresh at %s: expected %v, got %v", tc.asOf.Sub(generatedAt), tc.expected, got)
		}
	}
}
