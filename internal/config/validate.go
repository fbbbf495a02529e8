package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Validate checks that the settings a command mode depends on are present.
// Modes: points, survey, plan, serve.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "points":
	case "survey":
		errs = append(errs, c.requireAMap()...)
		errs = append(errs, c.checkSink()...)
	case "plan":
		errs = append(errs, c.requireAMap()...)
		errs = append(errs, c.checkSink()...)
		errs = append(errs, c.checkDedup()...)
		if c.Directions.RadiusKM <= 0 {
			errs = append(errs, "directions.radius_km must be > 0")
		}
		if c.Directions.Category == "" {
			errs = append(errs, "directions.category is required")
		}
		if c.Route.MinStepM < 0 {
			errs = append(errs, "route.min_step_m must be >= 0")
		}
	case "serve":
		errs = append(errs, c.requireAMap()...)
		errs = append(errs, c.checkSink()...)
		errs = append(errs, c.checkDedup()...)
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	errs = append(errs, checkRateLimit("amap", c.AMap.RateLimit)...)
	errs = append(errs, checkRateLimit("anthropic", c.Anthropic.RateLimit)...)

	if len(errs) > 0 {
		return eris.New(fmt.Sprintf("config: %s", strings.Join(errs, "; ")))
	}
	return nil
}

func checkRateLimit(section string, rl RateLimitConfig) []string {
	var errs []string
	if rl.RPS < 0 {
		errs = append(errs, section+".rate_limit.rps must be >= 0")
	}
	if rl.MaxConcurrent < 0 || rl.MaxConcurrent > 64 {
		errs = append(errs, section+".rate_limit.max_concurrent must be between 0 and 64")
	}
	return errs
}

func (c *Config) requireAMap() []string {
	if c.AMap.Key == "" {
		return []string{"amap.key is required"}
	}
	return nil
}

func (c *Config) checkSink() []string {
	switch c.Sink.Driver {
	case "", "csv", "none":
		return nil
	case "sqlite", "postgres":
		if c.Sink.DSN == "" {
			return []string{fmt.Sprintf("sink.dsn is required for driver %s", c.Sink.Driver)}
		}
		return nil
	default:
		return []string{fmt.Sprintf("sink.driver %q is not supported", c.Sink.Driver)}
	}
}

func (c *Config) checkDedup() []string {
	var errs []string
	switch c.Dedup.Oracle {
	case "", OracleRules:
	case OracleAnthropic:
		if c.Anthropic.Key == "" {
			errs = append(errs, "anthropic.key is required when dedup.oracle is anthropic")
		}
	default:
		errs = append(errs, fmt.Sprintf("dedup.oracle %q is not supported", c.Dedup.Oracle))
	}
	if c.Dedup.PartnerRadiusKM < 0 {
		errs = append(errs, "dedup.partner_radius_km must be >= 0")
	}
	return errs
}
