// Package oracle implements the price/APY oracle for the tracked LSTs and
// SOL: it decodes aggregator feed rounds, validates candidates against
// throttle, staleness, confidence and swing-limit rules and keeps the last
// accepted values in a fixed seven-slot store guarded by an authority
// identity and a global emergency stop.
package oracle

import (
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/xxusd-labs/lst-oracle/pkg/oracle/config"
	"github.com/xxusd-labs/lst-oracle/pkg/oracle/logger"
	"github.com/xxusd-labs/lst-oracle/pkg/oracle/monitor"
	"github.com/xxusd-labs/lst-oracle/pkg/oracle/switchboard"
)

// usdcPrice is a compile-time constant, USDC never occupies a store slot.
var usdcPrice = decimal.New(100, -2)

// Oracle is the validate-then-apply state machine over the header and the
// price store. Every operation is a single atomic transition: either all
// checks pass and the full write is applied, or nothing changes.
type Oracle struct {
	mu          sync.RWMutex
	initialized bool
	header      Header
	data        Data

	cfg  config.Config
	lggr logger.Logger

	// injectable for tests
	now func() time.Time
}

func New(cfg config.Config, lggr logger.Logger) *Oracle {
	return &Oracle{
		cfg:  cfg,
		lggr: lggr,
		now:  time.Now,
	}
}

// Restore rebuilds an oracle from persisted header and data partitions.
func Restore(header Header, data Data, cfg config.Config, lggr logger.Logger) *Oracle {
	o := New(cfg, lggr)
	o.header = header
	o.data = data
	o.initialized = !header.Authority.IsZero()
	return o
}

// Initialize creates the header and the zeroed store. The caller becomes the
// authority. Callable exactly once.
func (o *Oracle) Initialize(authority, feedProvider solana.PublicKey) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.initialized {
		return ErrAlreadyInitialized
	}
	o.header = Header{
		Authority:    authority,
		FeedProvider: feedProvider,
		AssetCount:   AssetCount,
	}
	o.data = Data{}
	o.initialized = true
	monitor.SetEmergencyStop(false)
	o.lggr.Infof("Price oracle initialized with authority: %s", authority)
	return nil
}

// candidate is a decoded value pending validation for one slot.
type candidate struct {
	asset    AssetType
	slot     int
	price    decimal.Decimal
	apy      decimal.Decimal
	hasPrice bool
	hasAPY   bool
}

// UpdatePriceAndAPY commits a validated (price, apy) pair for a single LST
// from a multi-asset feed round.
func (o *Oracle) UpdatePriceAndAPY(caller solana.PublicKey, asset AssetType, feed *switchboard.Feed) error {
	return o.updateSingle(caller, asset, feed, true, true)
}

// UpdatePrice commits a validated price for a single LST, keeping the stored
// APY.
func (o *Oracle) UpdatePrice(caller solana.PublicKey, asset AssetType, feed *switchboard.Feed) error {
	return o.updateSingle(caller, asset, feed, true, false)
}

// UpdateAPY commits a validated APY for a single LST, keeping the stored
// price.
func (o *Oracle) UpdateAPY(caller solana.PublicKey, asset AssetType, feed *switchboard.Feed) error {
	return o.updateSingle(caller, asset, feed, false, true)
}

func (o *Oracle) updateSingle(caller solana.PublicKey, asset AssetType, feed *switchboard.Feed, wantPrice, wantAPY bool) (err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	defer func() { o.observeRejection(asset, err) }()

	if err = o.guardMutation(caller); err != nil {
		return err
	}
	if asset == SOL {
		// SOL has no batch entry and its APY is pinned to zero
		return errors.Wrap(ErrInvalidAssetType, "SOL is updated from its own feed")
	}
	slot, err := asset.Slot()
	if err != nil {
		return err
	}
	if err = o.guardFeed(feed); err != nil {
		return err
	}

	c := candidate{asset: asset, slot: slot, hasPrice: wantPrice, hasAPY: wantAPY}
	if wantPrice {
		if c.price, err = switchboard.DecodeAssetPrice(feed.Envelope, slot); err != nil {
			return err
		}
	}
	if wantAPY {
		if c.apy, err = switchboard.DecodeAssetAPY(feed.Envelope, slot); err != nil {
			return err
		}
	}

	now := o.now()
	if err = o.validate(c, feed, now); err != nil {
		return err
	}
	o.apply(c, now)
	o.header.LastGlobalUpdate = now.Unix()
	o.lggr.Infof("Updated %s. Price: %s, APY: %s", asset, o.data.PriceData[slot].Price, o.data.PriceData[slot].APY)
	return nil
}

// UpdateAll commits one multi-asset round for every LST. All six candidates
// are validated before any slot is written; a single failure aborts the
// whole round with no partial state change.
func (o *Oracle) UpdateAll(caller solana.PublicKey, feed *switchboard.Feed) (err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err = o.guardMutation(caller); err != nil {
		o.observeBatchRejection(err)
		return err
	}
	if err = o.guardFeed(feed); err != nil {
		o.observeBatchRejection(err)
		return err
	}

	now := o.now()
	assets := BatchAssets()
	candidates := make([]candidate, 0, len(assets))
	for _, asset := range assets {
		slot, slotErr := asset.Slot()
		if slotErr != nil {
			return slotErr
		}
		c := candidate{asset: asset, slot: slot, hasPrice: true, hasAPY: true}
		if c.price, c.apy, err = switchboard.DecodeAssetPair(feed.Envelope, slot); err != nil {
			o.observeRejection(asset, err)
			return err
		}
		if err = o.validate(c, feed, now); err != nil {
			o.observeRejection(asset, err)
			return err
		}
		candidates = append(candidates, c)
	}
	for _, c := range candidates {
		o.apply(c, now)
	}
	o.header.LastGlobalUpdate = now.Unix()
	o.lggr.Infof("All prices and APYs updated successfully at timestamp: %d", now.Unix())
	return nil
}

// UpdateSOLPrice commits a validated SOL price from the single-value feed.
// SOL carries no yield, its APY is written as zero.
func (o *Oracle) UpdateSOLPrice(caller solana.PublicKey, feed *switchboard.Feed) (err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	defer func() { o.observeRejection(SOL, err) }()

	if err = o.guardMutation(caller); err != nil {
		return err
	}
	if err = o.guardFeed(feed); err != nil {
		return err
	}

	c := candidate{asset: SOL, slot: int(SOL), hasPrice: true, hasAPY: true}
	if c.price, err = switchboard.DecodeResult(feed.Envelope); err != nil {
		return err
	}

	now := o.now()
	if err = o.validate(c, feed, now); err != nil {
		return err
	}
	o.apply(c, now)
	o.header.LastGlobalUpdate = now.Unix()
	o.lggr.Infof("SOL price updated successfully. New price: %s", o.data.PriceData[SOL].Price)
	return nil
}

// guardMutation applies the emergency-stop gate before the authority gate.
func (o *Oracle) guardMutation(caller solana.PublicKey) error {
	if !o.initialized {
		return ErrNotInitialized
	}
	if o.header.EmergencyStop {
		return ErrEmergencyStop
	}
	if !caller.Equals(o.header.Authority) {
		return errors.Wrapf(ErrUnauthorizedAccess, "caller %s", caller)
	}
	return nil
}

// guardFeed performs the final provider equality check on an
// already-authenticated payload.
func (o *Oracle) guardFeed(feed *switchboard.Feed) error {
	if feed == nil {
		return errors.Wrap(switchboard.ErrInvalidAccountData, "no feed payload")
	}
	if !feed.Provider.IsZero() && !feed.Provider.Equals(o.header.FeedProvider) {
		return errors.Wrapf(ErrInvalidSwitchboardAccount, "expected %s, found %s", o.header.FeedProvider, feed.Provider)
	}
	return nil
}

func (o *Oracle) validate(c candidate, feed *switchboard.Feed, now time.Time) error {
	pd := &o.data.PriceData[c.slot]

	if elapsed := time.Duration(now.Unix()-pd.LastUpdateTime) * time.Second; elapsed < o.cfg.UpdateInterval() {
		return errors.Wrapf(ErrUpdateTooFrequent, "%s updated %s ago, interval %s", c.asset, elapsed, o.cfg.UpdateInterval())
	}
	if feed.Timestamp > 0 {
		if age := time.Duration(now.Unix()-feed.Timestamp) * time.Second; age > o.cfg.StaleThreshold() {
			return errors.Wrapf(ErrStaleData, "round is %s old", age)
		}
	}
	if min := o.cfg.MinFeedResults(); min > 0 && feed.NumSuccess < min {
		return errors.Wrapf(ErrInsufficientFeedResponses, "%d of %d", feed.NumSuccess, min)
	}
	if feed.StdDeviation.GreaterThan(o.cfg.MaxConfidenceInterval()) {
		return errors.Wrapf(ErrExceedsConfidenceInterval, "std deviation %s, bound %s", feed.StdDeviation, o.cfg.MaxConfidenceInterval())
	}
	if c.hasPrice && c.price.IsNegative() {
		return errors.Wrapf(ErrInvalidFeedValue, "negative price %s", c.price)
	}
	if c.hasAPY && c.apy.IsNegative() {
		return errors.Wrapf(ErrInvalidFeedValue, "negative apy %s", c.apy)
	}
	if c.hasPrice && pd.Price.IsPositive() {
		change := c.price.Sub(pd.Price).Abs().Div(pd.Price)
		if change.GreaterThan(o.cfg.PriceChangeLimit()) {
			return errors.Wrapf(ErrPriceChangeExceedsLimit, "%s -> %s for %s", pd.Price, c.price, c.asset)
		}
	}
	return nil
}

func (o *Oracle) apply(c candidate, now time.Time) {
	pd := &o.data.PriceData[c.slot]
	if c.hasPrice {
		pd.LastPrice = pd.Price
		pd.Price = c.price
		monitor.SetPrice(c.asset.String(), c.price.InexactFloat64())
	}
	if c.hasAPY {
		pd.APY = c.apy
		monitor.SetAPY(c.asset.String(), c.apy.InexactFloat64())
	}
	pd.LastUpdateTime = now.Unix()
}

func (o *Oracle) observeRejection(asset AssetType, err error) {
	if err == nil {
		return
	}
	monitor.IncRejected(asset.String(), RejectionReason(err))
	o.lggr.Warnf("update rejected for %s: %s", asset, err)
}

func (o *Oracle) observeBatchRejection(err error) {
	if err == nil {
		return
	}
	monitor.IncRejected("batch", RejectionReason(err))
	o.lggr.Warnf("batch update rejected: %s", err)
}

// CurrentPrice reads the last accepted price for the asset. Reads are always
// permitted, regardless of the emergency-stop state.
func (o *Oracle) CurrentPrice(asset AssetType) (decimal.Decimal, error) {
	slot, err := asset.Slot()
	if err != nil {
		return decimal.Decimal{}, err
	}
	o.mu.RLock()
	price := o.data.PriceData[slot].Price
	o.mu.RUnlock()
	o.lggr.Infof("Current price for %s: %s", asset, price)
	return price, nil
}

// CurrentAPY reads the last accepted APY for the asset.
func (o *Oracle) CurrentAPY(asset AssetType) (decimal.Decimal, error) {
	slot, err := asset.Slot()
	if err != nil {
		return decimal.Decimal{}, err
	}
	o.mu.RLock()
	apy := o.data.PriceData[slot].APY
	o.mu.RUnlock()
	o.lggr.Infof("Current APY for %s: %s", asset, apy)
	return apy, nil
}

// SOLPrice reads the last accepted SOL price.
func (o *Oracle) SOLPrice() (decimal.Decimal, error) {
	return o.CurrentPrice(SOL)
}

// USDCPrice always reports 1.00 without consulting any feed or store.
func (o *Oracle) USDCPrice() decimal.Decimal {
	o.lggr.Infof("Current price for USDC: %s", usdcPrice.StringFixed(2))
	return usdcPrice
}

// LastUpdateTime reads the last accepted update time for the asset.
func (o *Oracle) LastUpdateTime(asset AssetType) (int64, error) {
	slot, err := asset.Slot()
	if err != nil {
		return 0, err
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.data.PriceData[slot].LastUpdateTime, nil
}

// SetEmergencyStop flips the global gate. Authority-only, and deliberately
// not blocked by an active stop so the authority can always recover.
func (o *Oracle) SetEmergencyStop(caller solana.PublicKey, stop bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.initialized {
		return ErrNotInitialized
	}
	if !caller.Equals(o.header.Authority) {
		return errors.Wrapf(ErrUnauthorizedAccess, "caller %s", caller)
	}
	o.header.EmergencyStop = stop
	monitor.SetEmergencyStop(stop)
	o.lggr.Infof("Emergency stop set to: %v", stop)
	return nil
}

// EmergencyStopped reports the state of the global gate.
func (o *Oracle) EmergencyStopped() bool {
	o.mu.RLock()
	stopped := o.header.EmergencyStop
	o.mu.RUnlock()
	o.lggr.Infof("Emergency stop is: %v", stopped)
	return stopped
}

// SetFeedProvider reassigns the trusted feed source identity.
func (o *Oracle) SetFeedProvider(caller, feedProvider solana.PublicKey) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.guardMutation(caller); err != nil {
		return err
	}
	o.header.FeedProvider = feedProvider
	o.lggr.Infof("Feed provider updated to: %s", feedProvider)
	return nil
}

// SetAuthority hands the oracle to a new authority.
func (o *Oracle) SetAuthority(caller, authority solana.PublicKey) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.guardMutation(caller); err != nil {
		return err
	}
	o.header.Authority = authority
	o.lggr.Infof("Authority updated to: %s", authority)
	return nil
}

// Snapshot returns copies of the two persisted partitions.
func (o *Oracle) Snapshot() (Header, Data) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.header, o.data
}
