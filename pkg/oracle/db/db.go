package db

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gopkg.in/guregu/null.v4"
)

// OracleCfg holds runtime overrides for the validation engine. Unset fields
// fall back to the compiled-in defaults.
type OracleCfg struct {
	UpdateInterval *Duration
	StaleThreshold *Duration

	MaxConfidenceInterval null.String // decimal string, absolute std deviation bound
	PriceChangeLimit      null.String // decimal string, relative swing limit
	MinFeedResults        null.Int
}

// Validate reports every malformed override instead of stopping at the first.
func (c OracleCfg) Validate() (err error) {
	if c.MaxConfidenceInterval.Valid {
		if d, convErr := decimal.NewFromString(c.MaxConfidenceInterval.String); convErr != nil {
			err = multierr.Append(err, errors.Wrap(convErr, "MaxConfidenceInterval is not a decimal"))
		} else if d.IsNegative() {
			err = multierr.Append(err, errors.New("MaxConfidenceInterval must not be negative"))
		}
	}
	if c.PriceChangeLimit.Valid {
		if d, convErr := decimal.NewFromString(c.PriceChangeLimit.String); convErr != nil {
			err = multierr.Append(err, errors.Wrap(convErr, "PriceChangeLimit is not a decimal"))
		} else if d.IsNegative() {
			err = multierr.Append(err, errors.New("PriceChangeLimit must not be negative"))
		}
	}
	if c.MinFeedResults.Valid && c.MinFeedResults.Int64 < 0 {
		err = multierr.Append(err, errors.New("MinFeedResults must not be negative"))
	}
	return
}

func (c *OracleCfg) Scan(value interface{}) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, c)
}

func (c OracleCfg) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Duration is a time.Duration that marshals as a duration string.
type Duration struct {
	d time.Duration
}

func NewDuration(d time.Duration) *Duration {
	return &Duration{d: d}
}

func (d Duration) Duration() time.Duration {
	return d.d
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.d.String())
}

func (d *Duration) UnmarshalJSON(input []byte) error {
	var s string
	if err := json.Unmarshal(input, &s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.d = parsed
	return nil
}
