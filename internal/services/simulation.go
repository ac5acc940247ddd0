package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/yungbote/leontief-backend/internal/access"
	"github.com/yungbote/leontief-backend/internal/data/repos"
	types "github.com/yungbote/leontief-backend/internal/domain"
	"github.com/yungbote/leontief-backend/internal/observability"
	"github.com/yungbote/leontief-backend/internal/pkg/dbctx"
	"github.com/yungbote/leontief-backend/internal/platform/logger"
	"github.com/yungbote/leontief-backend/internal/simulation"
)

type SimulationService interface {
	Simulate(ctx context.Context, p access.Principal, ref types.ModelRef, req simulation.Request) (simulation.Result, error)
}

type SimulationConfig struct {
	Workers  int
	CacheTTL time.Duration
}

type simulationService struct {
	log     *logger.Logger
	store   *modelStore
	sem     *semaphore.Weighted
	group   singleflight.Group
	cache   *goredis.Client
	ttl     time.Duration
	metrics *observability.Metrics
}

// NewSimulationService bounds concurrent computations to cfg.Workers and
// coalesces identical in-flight requests. cache may be nil.
func NewSimulationService(
	db *gorm.DB,
	log *logger.Logger,
	resolver *access.Resolver,
	modelRepo repos.ModelRepo,
	workspaceRepo repos.WorkspaceRepo,
	cache *goredis.Client,
	metrics *observability.Metrics,
	cfg SimulationConfig,
) SimulationService {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &simulationService{
		log:     log.With("service", "SimulationService"),
		store:   &modelStore{db: db, resolver: resolver, models: modelRepo, workspaces: workspaceRepo},
		sem:     semaphore.NewWeighted(int64(workers)),
		cache:   cache,
		ttl:     ttl,
		metrics: metrics,
	}
}

func (ss *simulationService) Simulate(ctx context.Context, p access.Principal, ref types.ModelRef, req simulation.Request) (simulation.Result, error) {
	ctx, span := observability.Tracer().Start(ctx, "simulation.Simulate")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("model.id", ref.Encode()),
		attribute.Bool("simulation.perturbed", req.Change != nil),
	)

	t, err := ss.store.consistent(dbctx.Context{Ctx: ctx}, p, ref)
	if err != nil {
		return simulation.Result{}, err
	}
	snap := t.snapshot()
	span.SetAttributes(attribute.Int("model.sectors", snap.N()), attribute.Int("model.categories", snap.M()))

	key, err := cacheKey(ref, t.updatedAt(), req)
	if err != nil {
		return simulation.Result{}, err
	}

	if res, ok := ss.cached(ctx, key); ok {
		ss.metrics.IncSimulation("hit")
		return res, nil
	}

	// Detached so callers that joined the flight outlive the one that started it.
	work := context.WithoutCancel(ctx)
	ch := ss.group.DoChan(key, func() (interface{}, error) {
		if err := ss.sem.Acquire(work, 1); err != nil {
			return simulation.Result{}, err
		}
		defer ss.sem.Release(1)

		start := time.Now()
		res, err := simulation.Run(snap, req)
		if simulation.NeedsInversion(req) {
			ss.metrics.ObserveInversion(inversionResult(err), time.Since(start))
		}
		if err != nil {
			return simulation.Result{}, err
		}
		ss.remember(work, key, res)
		return res, nil
	})

	var out singleflight.Result
	select {
	case out = <-ch:
	case <-ctx.Done():
		err := ctx.Err()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return simulation.Result{}, err
	}
	if out.Err != nil {
		span.RecordError(out.Err)
		span.SetStatus(codes.Error, out.Err.Error())
		return simulation.Result{}, out.Err
	}

	switch {
	case out.Shared:
		ss.metrics.IncSimulation("shared")
	case ss.cache == nil:
		ss.metrics.IncSimulation("off")
	default:
		ss.metrics.IncSimulation("miss")
	}
	return out.Val.(simulation.Result), nil
}

func (ss *simulationService) cached(ctx context.Context, key string) (simulation.Result, bool) {
	if ss.cache == nil {
		return simulation.Result{}, false
	}
	raw, err := ss.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			ss.log.Warn("simulation cache read failed", "error", err)
		}
		return simulation.Result{}, false
	}
	var res simulation.Result
	if err := json.Unmarshal(raw, &res); err != nil {
		ss.log.Warn("simulation cache entry unreadable", "error", err)
		return simulation.Result{}, false
	}
	return res, true
}

func (ss *simulationService) remember(ctx context.Context, key string, res simulation.Result) {
	if ss.cache == nil {
		return
	}
	raw, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := ss.cache.Set(ctx, key, raw, ss.ttl).Err(); err != nil {
		ss.log.Warn("simulation cache write failed", "error", err)
	}
}

// cacheKey changes whenever the model is saved, so entries never outlive the
// matrices they were computed from.
func cacheKey(ref types.ModelRef, version time.Time, req simulation.Request) (string, error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode simulation request: %w", err)
	}
	sum := sha256.Sum256(raw)
	return "leontief:sim:" + strconv.FormatInt(ref.Encode(), 10) + ":" +
		strconv.FormatInt(version.UnixNano(), 10) + ":" + hex.EncodeToString(sum[:]), nil
}
