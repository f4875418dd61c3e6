package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gopkg.in/guregu/null.v4"

	"github.com/xxusd-labs/lst-oracle/pkg/oracle/db"
	"github.com/xxusd-labs/lst-oracle/pkg/oracle/logger"
)

// testing configs
var (
	testUpdateInterval       = db.NewDuration(30 * time.Second)
	testStaleThreshold       = db.NewDuration(2 * time.Minute)
	testConfidence           = "2.5"
	testSwingLimit           = "0.1"
	testMinResults     int64 = 3
)

func TestConfig_ExpectedDefaults(t *testing.T) {
	cfg := NewConfig(db.OracleCfg{}, logger.Test(t))
	configSet := configSet{
		UpdateInterval:        cfg.UpdateInterval(),
		StaleThreshold:        cfg.StaleThreshold(),
		MaxConfidenceInterval: cfg.MaxConfidenceInterval(),
		PriceChangeLimit:      cfg.PriceChangeLimit(),
		MinFeedResults:        cfg.MinFeedResults(),
	}
	assert.Equal(t, defaultConfigSet, configSet)
}

func TestConfig_NewConfig(t *testing.T) {
	dbCfg := db.OracleCfg{
		UpdateInterval:        testUpdateInterval,
		StaleThreshold:        testStaleThreshold,
		MaxConfidenceInterval: null.StringFrom(testConfidence),
		PriceChangeLimit:      null.StringFrom(testSwingLimit),
		MinFeedResults:        null.IntFrom(testMinResults),
	}
	cfg := NewConfig(dbCfg, logger.Test(t))

	assert.Equal(t, 30*time.Second, cfg.UpdateInterval())
	assert.Equal(t, 2*time.Minute, cfg.StaleThreshold())
	assert.Equal(t, testConfidence, cfg.MaxConfidenceInterval().String())
	assert.Equal(t, testSwingLimit, cfg.PriceChangeLimit().String())
	assert.Equal(t, uint32(testMinResults), cfg.MinFeedResults())
}

func TestConfig_Update(t *testing.T) {
	cfg := NewConfig(db.OracleCfg{}, logger.Test(t))
	cfg.Update(db.OracleCfg{
		UpdateInterval:   testUpdateInterval,
		PriceChangeLimit: null.StringFrom(testSwingLimit),
	})

	assert.Equal(t, 30*time.Second, cfg.UpdateInterval())
	assert.Equal(t, testSwingLimit, cfg.PriceChangeLimit().String())
	// untouched values keep defaults
	assert.Equal(t, defaultConfigSet.StaleThreshold, cfg.StaleThreshold())
	assert.Equal(t, defaultConfigSet.MinFeedResults, cfg.MinFeedResults())
}

func TestConfig_UpdateRejectsInvalid(t *testing.T) {
	cfg := NewConfig(db.OracleCfg{}, logger.Test(t))
	cfg.Update(db.OracleCfg{
		PriceChangeLimit: null.StringFrom("not-a-decimal"),
	})

	// invalid override set is dropped wholesale
	assert.Equal(t, defaultConfigSet.PriceChangeLimit, cfg.PriceChangeLimit())
}

func TestConfig_ParseFailureFallsBack(t *testing.T) {
	// overrides installed at construction bypass Update validation
	cfg := NewConfig(db.OracleCfg{
		MaxConfidenceInterval: null.StringFrom("garbage"),
	}, logger.Test(t))

	assert.Equal(t, defaultConfigSet.MaxConfidenceInterval, cfg.MaxConfidenceInterval())
}

func TestOracleCfg_Validate(t *testing.T) {
	assert.NoError(t, db.OracleCfg{}.Validate())
	assert.NoError(t, db.OracleCfg{
		MaxConfidenceInterval: null.StringFrom("1.5"),
		PriceChangeLimit:      null.StringFrom("0.2"),
	}.Validate())

	err := db.OracleCfg{
		MaxConfidenceInterval: null.StringFrom("oops"),
		PriceChangeLimit:      null.StringFrom("-0.2"),
		MinFeedResults:        null.IntFrom(-1),
	}.Validate()
	assert.Error(t, err)
}
