package insights

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/google/uuid"
	"github.com/mmdatafocus/insights_backend/config"
	"github.com/mmdatafocus/insights_backend/models"
	"github.com/mmdatafocus/insights_backend/shopsync"
	"github.com/mmdatafocus/insights_backend/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Engine runs the insight pipeline for one business at a time: fetch the
// four collections concurrently, normalize, aggregate, summarize, store.
// A run is a pure computation over the fetched snapshot; the engine holds no
// mutable state between runs.
type Engine struct {
	source shopsync.Source
	store  Store
	tuning config.InsightTuning
	logger *logrus.Logger
	// locker serializes runs per business across instances; nil degrades to
	// in-process serialization only.
	locker *redislock.Client
	now    func() time.Time

	mu      sync.Mutex
	tenants map[string]*sync.Mutex
}

func NewEngine(source shopsync.Source, store Store, tuning config.InsightTuning, logger *logrus.Logger, locker *redislock.Client) *Engine {
	return &Engine{
		source:  source,
		store:   store,
		tuning:  tuning,
		logger:  logger,
		locker:  locker,
		now:     time.Now,
		tenants: map[string]*sync.Mutex{},
	}
}

type RunParams struct {
	BusinessId string
	StoreId    string
	Timeframe  models.Timeframe
	// Force skips the freshness coalescing check after the lock is acquired.
	Force bool
}

// FreshOrRun returns the stored bundle when it is still fresh and only
// triggers a pipeline run when it is stale or missing.
func (e *Engine) FreshOrRun(ctx context.Context, params RunParams) (*models.InsightBundle, []*models.InsightSummary, error) {
	if e.store.IsFresh(ctx, params.BusinessId, params.Timeframe, e.now()) {
		bundle, summaries, err := e.store.Get(ctx, params.BusinessId, params.Timeframe)
		if err == nil && bundle != nil {
			return bundle, summaries, nil
		}
	}
	params.Force = false
	return e.Run(ctx, params)
}

// Run executes one pipeline run. Per business+timeframe at most one run is
// in flight; a duplicate trigger blocks on the lock and then—unless
// forced—returns the bundle the first run just stored instead of issuing
// redundant upstream calls.
func (e *Engine) Run(ctx context.Context, params RunParams) (*models.InsightBundle, []*models.InsightSummary, error) {
	if params.BusinessId == "" {
		return nil, nil, fmt.Errorf("business id is required")
	}
	if !params.Timeframe.Valid() {
		return nil, nil, fmt.Errorf("invalid timeframe %d", params.Timeframe)
	}

	unlock, err := e.acquire(ctx, params.BusinessId, params.Timeframe)
	if err != nil {
		return nil, nil, err
	}
	defer unlock()

	// Coalesce: if another trigger finished while we waited on the lock,
	// reuse its result.
	if !params.Force && e.store.IsFresh(ctx, params.BusinessId, params.Timeframe, e.now()) {
		bundle, summaries, err := e.store.Get(ctx, params.BusinessId, params.Timeframe)
		if err == nil && bundle != nil {
			return bundle, summaries, nil
		}
	}

	bundle, summaries := e.compute(ctx, params)

	if err := e.store.Put(ctx, bundle, summaries); err != nil {
		// The computation succeeded; losing the write only costs a recompute
		// on the next request.
		storeErr := &StoreUnavailableError{Err: err}
		config.LogWarn(e.logger, "insights", "Run", "persisting bundle", storeErr)
	}
	return bundle, summaries, nil
}

// compute fetches, normalizes and aggregates one immutable snapshot. It
// never fails: every fetch error degrades that collection to empty and the
// worst outcome is an all-zero bundle.
func (e *Engine) compute(ctx context.Context, params RunParams) (*models.InsightBundle, []*models.InsightSummary) {
	asOf := e.now()
	curStart, curEnd, prevStart, prevEnd := utils.GetPeriodRange(asOf, params.Timeframe.Days())

	var (
		rawOrders     []shopsync.RawOrder
		rawPrevOrders []shopsync.RawOrder
		rawProducts   []shopsync.RawProduct
		rawCustomers  []shopsync.RawCustomer
	)

	// The four fetches are independent: run them concurrently and isolate
	// failures per branch. No branch may cancel its siblings, so the group
	// is not bound to a shared cancel context and every branch returns nil.
	var group errgroup.Group
	group.Go(func() error {
		var err error
		rawOrders, err = e.source.FetchOrders(ctx, params.StoreId, curStart, curEnd)
		e.noteFetchError(ctx, "orders", err)
		return nil
	})
	group.Go(func() error {
		var err error
		rawPrevOrders, err = e.source.FetchOrders(ctx, params.StoreId, prevStart, prevEnd)
		e.noteFetchError(ctx, "previous orders", err)
		return nil
	})
	group.Go(func() error {
		var err error
		rawProducts, err = e.source.FetchProducts(ctx, params.StoreId)
		e.noteFetchError(ctx, "products", err)
		return nil
	})
	group.Go(func() error {
		var err error
		rawCustomers, err = e.source.FetchCustomers(ctx, params.StoreId)
		e.noteFetchError(ctx, "customers", err)
		return nil
	})
	_ = group.Wait()

	orders := shopsync.NormalizeOrders(rawOrders, e.logger)
	prevOrders := shopsync.NormalizeOrders(rawPrevOrders, e.logger)
	products := shopsync.NormalizeProducts(rawProducts, e.logger)
	customers := shopsync.NormalizeCustomers(rawCustomers, e.logger)

	if len(orders) == 0 && len(products) == 0 && len(customers) == 0 {
		config.LogWarn(e.logger, "insights", "compute", "business "+params.BusinessId, ErrInsufficientData)
	}

	bundle := &models.InsightBundle{
		Id:          uuid.NewString(),
		BusinessId:  params.BusinessId,
		StoreId:     params.StoreId,
		GeneratedAt: asOf,
		Timeframe:   params.Timeframe,
		Sales:       AggregateSales(orders, prevOrders),
		TopProducts: RankTopProducts(orders, products, e.tuning.TopProductsCap),
		Customers:   AggregateCustomers(customers, orders, curStart, asOf, e.tuning),
		Fulfillment: AggregateFulfillment(orders, asOf, e.tuning),
		Conversion:  AggregateConversion(orders, e.tuning),
		Inventory:   ClassifyInventory(products, e.tuning),
		Trend:       AnalyzeTrend(orders, prevOrders, products, e.tuning),
	}

	return bundle, Summarize(bundle, e.tuning)
}

func (e *Engine) noteFetchError(ctx context.Context, entity string, err error) {
	if err == nil {
		return
	}
	cid, _ := utils.GetCorrelationIdFromContext(ctx)
	fetchErr := &UpstreamFetchError{Entity: entity, Err: err}
	config.LogError(e.logger, "insights", "compute", "degrading to empty collection, correlationId "+cid, entity, fetchErr)
}

// acquire serializes runs for one business+timeframe. The in-process mutex
// always applies; the redis lock extends the guarantee across instances when
// redis is available.
func (e *Engine) acquire(ctx context.Context, businessId string, timeframe models.Timeframe) (func(), error) {
	key := fmt.Sprintf("insights:run:%s:%d", businessId, timeframe.Days())

	e.mu.Lock()
	tenant := e.tenants[key]
	if tenant == nil {
		tenant = &sync.Mutex{}
		e.tenants[key] = tenant
	}
	e.mu.Unlock()

	tenant.Lock()

	if e.locker == nil {
		return tenant.Unlock, nil
	}

	lock, err := e.locker.Obtain(ctx, key, 2*time.Minute, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(time.Second), 120),
	})
	if err != nil {
		tenant.Unlock()
		return nil, fmt.Errorf("acquiring run lock for %s: %w", businessId, err)
	}
	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := lock.Release(releaseCtx); err != nil {
			config.LogWarn(e.logger, "insights", "acquire", "releasing run lock", err)
		}
		tenant.Unlock()
	}, nil
}
