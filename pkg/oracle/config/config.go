package config

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xxusd-labs/lst-oracle/pkg/oracle/db"
	"github.com/xxusd-labs/lst-oracle/pkg/oracle/logger"
)

// Global oracle defaults.
var defaultConfigSet = configSet{
	UpdateInterval:        time.Minute,                // minimum gap between accepted updates per asset
	StaleThreshold:        5 * time.Minute,            // max age of a feed round
	MaxConfidenceInterval: decimal.NewFromInt(5),      // absolute std deviation bound on a round
	PriceChangeLimit:      decimal.NewFromFloat(0.20), // 20% swing limit between consecutive prices
	MinFeedResults:        1,                          // minimum successful oracle responses per round
}

type Config interface {
	UpdateInterval() time.Duration
	StaleThreshold() time.Duration
	MaxConfidenceInterval() decimal.Decimal
	PriceChangeLimit() decimal.Decimal
	MinFeedResults() uint32

	// Update sets new override values.
	Update(db.OracleCfg)
}

type configSet struct {
	UpdateInterval        time.Duration
	StaleThreshold        time.Duration
	MaxConfidenceInterval decimal.Decimal
	PriceChangeLimit      decimal.Decimal
	MinFeedResults        uint32
}

var _ Config = (*config)(nil)

type config struct {
	defaults configSet
	cfg      db.OracleCfg
	cfgMu    sync.RWMutex
	lggr     logger.Logger
}

// NewConfig returns a Config with defaults overridden by dbcfg.
func NewConfig(dbcfg db.OracleCfg, lggr logger.Logger) *config {
	return &config{
		defaults: defaultConfigSet,
		cfg:      dbcfg,
		lggr:     lggr,
	}
}

func (c *config) Update(dbcfg db.OracleCfg) {
	if err := dbcfg.Validate(); err != nil {
		c.lggr.Warnf("invalid oracle config overrides, keeping previous values: %s", err)
		return
	}
	c.cfgMu.Lock()
	c.cfg = dbcfg
	c.cfgMu.Unlock()
}

func (c *config) UpdateInterval() time.Duration {
	c.cfgMu.RLock()
	ch := c.cfg.UpdateInterval
	c.cfgMu.RUnlock()
	if ch != nil {
		return ch.Duration()
	}
	return c.defaults.UpdateInterval
}

func (c *config) StaleThreshold() time.Duration {
	c.cfgMu.RLock()
	ch := c.cfg.StaleThreshold
	c.cfgMu.RUnlock()
	if ch != nil {
		return ch.Duration()
	}
	return c.defaults.StaleThreshold
}

func (c *config) MaxConfidenceInterval() decimal.Decimal {
	c.cfgMu.RLock()
	ch := c.cfg.MaxConfidenceInterval
	c.cfgMu.RUnlock()
	if ch.Valid {
		if d, err := decimal.NewFromString(ch.String); err == nil {
			return d
		}
		c.lggr.Warnf("could not parse MaxConfidenceInterval override %q, using default", ch.String)
	}
	return c.defaults.MaxConfidenceInterval
}

func (c *config) PriceChangeLimit() decimal.Decimal {
	c.cfgMu.RLock()
	ch := c.cfg.PriceChangeLimit
	c.cfgMu.RUnlock()
	if ch.Valid {
		if d, err := decimal.NewFromString(ch.String); err == nil {
			return d
		}
		c.lggr.Warnf("could not parse PriceChangeLimit override %q, using default", ch.String)
	}
	return c.defaults.PriceChangeLimit
}

func (c *config) MinFeedResults() uint32 {
	c.cfgMu.RLock()
	ch := c.cfg.MinFeedResults
	c.cfgMu.RUnlock()
	if ch.Valid && ch.Int64 >= 0 {
		return uint32(ch.Int64)
	}
	return c.defaults.MinFeedResults
}
