package services

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	types "github.com/yungbote/leontief-backend/internal/domain"
	pkgerrors "github.com/yungbote/leontief-backend/internal/pkg/errors"
	"github.com/yungbote/leontief-backend/internal/pkg/matrix"
	"github.com/yungbote/leontief-backend/internal/simulation"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestSimulationService_Simulate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.sims.Simulate(ctx, f.anon, f.public.Ref(), simulation.Request{Values: map[int]float64{0: 100}})
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if len(res.Result) != 2 || !approx(res.Result[0], 1000.0/9) || !approx(res.Result[1], 200.0/9) {
		t.Fatalf("Result = %v", res.Result)
	}
	if len(res.Detailed) != 1 || !approx(res.Detailed[0], 0.01*1000.0/9+0.1*200.0/9) {
		t.Fatalf("Detailed = %v", res.Detailed)
	}
	if len(res.Categories) != 1 || res.Categories[0].Name != "jobs" {
		t.Fatalf("Categories = %+v", res.Categories)
	}

	_, err = f.sims.Simulate(ctx, f.anon, f.private.Ref(), simulation.Request{Values: map[int]float64{0: 1}})
	if !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("invisible model: want NotFound, got %v", err)
	}
	_, err = f.sims.Simulate(ctx, f.anon, f.public.Ref(), simulation.Request{Values: map[int]float64{2: 1}})
	if !errors.Is(err, pkgerrors.ErrOutOfRange) {
		t.Fatalf("bad pos: want OutOfRange, got %v", err)
	}
	bad := matrix.Zeros(3, 3)
	_, err = f.sims.Simulate(ctx, f.anon, f.public.Ref(), simulation.Request{Values: map[int]float64{0: 1}, Change: &bad})
	if !errors.Is(err, pkgerrors.ErrDimensionMismatch) {
		t.Fatalf("bad change: want DimensionMismatch, got %v", err)
	}
}

func TestSimulationService_ChangeDoesNotPersist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	change, _ := matrix.FromRows([][]float64{{0, 1}, {0, 0}})
	req := simulation.Request{Values: map[int]float64{1: 10}, Change: &change}
	res, err := f.sims.Simulate(ctx, f.analyst, f.public.Ref(), req)
	if err != nil {
		t.Fatalf("Simulate with change: %v", err)
	}
	// A' = [[0,1],[0.2,0]], det(I-A') = 0.8
	if !approx(res.Result[0], 10/0.8) || !approx(res.Result[1], 10/0.8) {
		t.Fatalf("Result = %v", res.Result)
	}

	stored, err := f.models.Get(f.dbc, f.admin, f.public.Ref())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !stored.EconomicMatrix.Equal(f.public.EconomicMatrix, 0) {
		t.Fatalf("simulation modified the stored model")
	}
}

func TestSimulationService_WorkspaceAndConcurrency(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ws, err := f.workspaces.Clone(f.dbc, f.analyst, f.public.ID)
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	ref := types.ParseModelRef(ws.ID)
	if _, err := f.sims.Simulate(ctx, f.outsider, ref, simulation.Request{Values: map[int]float64{0: 1}}); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("foreign workspace: want NotFound, got %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.sims.Simulate(ctx, f.analyst, ref, simulation.Request{Values: map[int]float64{0: 100}})
			if err == nil && !approx(res.Result[0], 1000.0/9) {
				err = errors.New("unexpected result")
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent Simulate: %v", err)
		}
	}
}

func TestCacheKeyDependsOnRequestAndVersion(t *testing.T) {
	f := newFixture(t)
	ref := f.public.Ref()
	a, err := cacheKey(ref, f.public.UpdatedAt, simulation.Request{Values: map[int]float64{0: 1}})
	if err != nil {
		t.Fatalf("cacheKey: %v", err)
	}
	b, _ := cacheKey(ref, f.public.UpdatedAt, simulation.Request{Values: map[int]float64{0: 2}})
	c, _ := cacheKey(ref, f.public.UpdatedAt.Add(1), simulation.Request{Values: map[int]float64{0: 1}})
	again, _ := cacheKey(ref, f.public.UpdatedAt, simulation.Request{Values: map[int]float64{0: 1}})
	if a == b || a == c || a != again {
		t.Fatalf("cache keys: %q %q %q %q", a, b, c, again)
	}
}

func TestSimulationService_JoinedCallerSurvivesStarterCancel(t *testing.T) {
	f := newFixture(t)
	ss := f.sims.(*simulationService)
	req := simulation.Request{Values: map[int]float64{0: 100}}

	// hold every worker so the first flight parks on the semaphore
	if err := ss.sem.Acquire(context.Background(), 2); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	released := false
	release := func() {
		if !released {
			released = true
			ss.sem.Release(2)
		}
	}
	defer release()

	startCtx, cancel := context.WithCancel(context.Background())
	starterErr := make(chan error, 1)
	go func() {
		_, err := f.sims.Simulate(startCtx, f.anon, f.public.Ref(), req)
		starterErr <- err
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-starterErr:
		if err == nil {
			t.Fatalf("cancelled caller returned no error while workers were busy")
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("cancelled caller did not return")
	}

	type outcome struct {
		res simulation.Result
		err error
	}
	joined := make(chan outcome, 1)
	go func() {
		res, err := f.sims.Simulate(context.Background(), f.anon, f.public.Ref(), req)
		joined <- outcome{res, err}
	}()
	time.Sleep(50 * time.Millisecond)
	release()

	select {
	case o := <-joined:
		if o.err != nil {
			t.Fatalf("live caller failed after another caller cancelled: %v", o.err)
		}
		if !approx(o.res.Result[0], 1000.0/9) {
			t.Fatalf("Result = %v", o.res.Result)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("live caller did not return")
	}
}
