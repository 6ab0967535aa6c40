package scenario

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/picogrid/uav-deconfliction/pkg/deconfliction"
	"github.com/picogrid/uav-deconfliction/pkg/models"
)

// Run registers the scenario's simulated missions with e and validates the
// primary against them
func Run(s *Scenario, e *deconfliction.Engine, now time.Time) (Missions, models.ValidationResult, error) {
	missions, err := s.Build(now)
	if err != nil {
		return Missions{}, models.ValidationResult{}, err
	}
	if _, err := e.RegisterAll(missions.Simulated); err != nil {
		return missions, models.ValidationResult{}, fmt.Errorf("failed to register %s traffic: %w", s.Name, err)
	}
	return missions, e.Validate(missions.Primary), nil
}

// BenchOptions configures a performance benchmark run
type BenchOptions struct {
	Sizes     []int
	Seed      int64
	Generator GeneratorConfig
	Epoch     time.Time
	// Progress, when set, is called after each size is validated
	Progress func(BenchResult)
}

// BenchResult is the outcome of validating against one registry size
type BenchResult struct {
	Size         int
	Status       models.ValidationStatus
	Conflicts    int
	CacheEntries int
	Metrics      models.ValidationMetrics
}

// RunBench registers n random missions for each size on a fresh engine and
// times validation of the first one. Mission sets are generated concurrently;
// validations run one at a time so timings do not interfere.
func RunBench(ctx context.Context, opts BenchOptions, newEngine func() (*deconfliction.Engine, error)) ([]BenchResult, error) {
	epoch := opts.Epoch
	if epoch.IsZero() {
		epoch = time.Now()
	}

	for _, n := range opts.Sizes {
		if n < 0 {
			return nil, fmt.Errorf("benchmark size must not be negative, got %d", n)
		}
	}

	sets := make([][]*models.Mission, len(opts.Sizes))
	g, gctx := errgroup.WithContext(ctx)
	for i, n := range opts.Sizes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			gen := NewGenerator(opts.Generator, opts.Seed+int64(i), epoch)
			ms, err := gen.Missions(fmt.Sprintf("drone-%d", n), n)
			if err != nil {
				return fmt.Errorf("failed to generate %d missions: %w", n, err)
			}
			sets[i] = ms
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]BenchResult, 0, len(opts.Sizes))
	for i, n := range opts.Sizes {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if n == 0 {
			continue
		}

		e, err := newEngine()
		if err != nil {
			return results, err
		}
		if _, err := e.RegisterAll(sets[i]); err != nil {
			return results, fmt.Errorf("failed to register %d missions: %w", n, err)
		}

		res := e.Validate(sets[i][0])
		results = append(results, BenchResult{
			Size:         n,
			Status:       res.Status,
			Conflicts:    len(res.Conflicts),
			CacheEntries: e.CacheStats().Entries,
			Metrics:      res.Metrics,
		})
		if opts.Progress != nil {
			opts.Progress(results[len(results)-1])
		}
	}
	return results, nil
}
