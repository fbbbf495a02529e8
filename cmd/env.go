package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/rescue-router/internal/category"
	"github.com/sells-group/rescue-router/internal/config"
	"github.com/sells-group/rescue-router/internal/dedup"
	"github.com/sells-group/rescue-router/internal/planner"
	"github.com/sells-group/rescue-router/internal/resilience"
	"github.com/sells-group/rescue-router/internal/route"
	"github.com/sells-group/rescue-router/internal/search"
	"github.com/sells-group/rescue-router/internal/selector"
	"github.com/sells-group/rescue-router/internal/sink"
	"github.com/sells-group/rescue-router/pkg/amap"
	anthropicpkg "github.com/sells-group/rescue-router/pkg/anthropic"
)

// plannerEnv holds the lookup tables, the sink and the planner needed by the
// points/survey/plan/serve commands.
type plannerEnv struct {
	Table   *category.Table
	Sink    sink.Sink
	Planner *planner.Planner
}

// Close releases resources held by the environment.
func (pe *plannerEnv) Close() {
	if pe.Sink != nil {
		if err := pe.Sink.Close(); err != nil {
			zap.L().Warn("close sink", zap.Error(err))
		}
	}
}

// initPlanner validates the config for mode, loads the lookup tables once,
// opens the sink and wires every component behind one shared AMap throttle.
// Callers should defer env.Close().
func initPlanner(ctx context.Context, mode string) (*plannerEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	table, err := category.Load(cfg.Tables.Categories, cfg.Tables.Cities)
	if err != nil {
		return nil, eris.Wrap(err, "load lookup tables")
	}
	zap.L().Info("lookup tables loaded", zap.Int("categories", table.Len()))

	sk, err := sink.New(ctx, cfg.Sink)
	if err != nil {
		return nil, err
	}

	oracle, err := initOracle()
	if err != nil {
		_ = sk.Close()
		return nil, err
	}

	throttle := resilience.NewThrottle(resilience.ThrottleConfig{
		RatePerSecond: cfg.AMap.RateLimit.RPS,
		Burst:         cfg.AMap.RateLimit.Burst,
		MaxConcurrent: cfg.AMap.RateLimit.MaxConcurrent,
	})
	client := amap.NewClient(cfg.AMap.Key,
		amap.WithBaseURL(cfg.AMap.BaseURL),
		amap.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.AMap.TimeoutSecs) * time.Second}),
	)

	engine := dedup.NewEngine(dedup.Policy{PartnerRadiusKM: cfg.Dedup.PartnerRadiusKM}, oracle)
	sel := selector.New(selector.Markers{
		Tier1:    cfg.Selector.Tier1,
		General:  cfg.Selector.General,
		Exclude:  cfg.Selector.Exclude,
		Excluded: cfg.Selector.Excluded,
	})
	composer := route.New(client, throttle, route.Config{
		MinStepM:   cfg.Route.MinStepM,
		Strategy:   cfg.Route.Strategy,
		MaxRegions: cfg.Route.MaxRegions,
		MaxPoints:  cfg.Route.MaxPoints,
	})
	aggregator := search.NewAggregator(table, search.NewAMapSearcher(client), throttle, sk)

	p := planner.New(cfg, table, client, throttle, aggregator, engine, sel, composer)

	return &plannerEnv{Table: table, Sink: sk, Planner: p}, nil
}

// initOracle returns the dedup oracle for the configured mode. A nil oracle
// leaves judgment to the engine's own policy.
func initOracle() (dedup.Oracle, error) {
	switch cfg.Dedup.Oracle {
	case "", config.OracleRules:
		return nil, nil
	case config.OracleAnthropic:
		var opts []anthropicpkg.Option
		if cfg.Anthropic.BaseURL != "" {
			opts = append(opts, anthropicpkg.WithBaseURL(cfg.Anthropic.BaseURL))
		}
		client := anthropicpkg.NewClient(cfg.Anthropic.Key, opts...)
		throttle := resilience.NewThrottle(resilience.ThrottleConfig{
			RatePerSecond: cfg.Anthropic.RateLimit.RPS,
			Burst:         cfg.Anthropic.RateLimit.Burst,
			MaxConcurrent: cfg.Anthropic.RateLimit.MaxConcurrent,
		})
		zap.L().Info("dedup oracle enabled",
			zap.String("model", cfg.Anthropic.Model),
			zap.Duration("interval", throttle.Interval()),
		)
		return dedup.NewLLMOracle(client, throttle, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens), nil
	default:
		return nil, eris.Errorf("unsupported dedup oracle %q", cfg.Dedup.Oracle)
	}
}
