package oracle

import (
	"github.com/pkg/errors"
)

// Every error below aborts the whole operation with no partial mutation.
// Retry and backoff after a rejection belong to the caller.
var (
	// authorization failures
	ErrUnauthorizedAccess = errors.New("unauthorized access")

	// state failures
	ErrEmergencyStop      = errors.New("emergency stop activated")
	ErrAlreadyInitialized = errors.New("oracle already initialized")
	ErrNotInitialized     = errors.New("oracle not initialized")
	ErrAssetNotFound      = errors.New("asset not found")
	ErrInvalidAssetType   = errors.New("invalid asset type")
	ErrInvalidIndex       = errors.New("invalid slot index")
	ErrMaxAssetsReached   = errors.New("max assets reached")

	// validation failures
	ErrUpdateTooFrequent         = errors.New("update too frequent")
	ErrStaleData                 = errors.New("stale data")
	ErrExceedsConfidenceInterval = errors.New("exceeds confidence interval")
	ErrPriceChangeExceedsLimit   = errors.New("price change exceeds limit")
	ErrInsufficientFeedResponses = errors.New("insufficient feed responses")
	ErrInvalidFeedValue          = errors.New("invalid feed value")
	ErrInvalidSwitchboardAccount = errors.New("invalid switchboard account")
)

// RejectionReason maps a rejection to a stable label for metrics.
func RejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrUnauthorizedAccess):
		return "unauthorized"
	case errors.Is(err, ErrEmergencyStop):
		return "emergency_stop"
	case errors.Is(err, ErrUpdateTooFrequent):
		return "throttled"
	case errors.Is(err, ErrStaleData):
		return "stale"
	case errors.Is(err, ErrExceedsConfidenceInterval):
		return "confidence"
	case errors.Is(err, ErrPriceChangeExceedsLimit):
		return "swing_limit"
	case errors.Is(err, ErrInsufficientFeedResponses):
		return "min_responses"
	case errors.Is(err, ErrInvalidSwitchboardAccount):
		return "provider_mismatch"
	case errors.Is(err, ErrInvalidFeedValue):
		return "invalid_value"
	default:
		return "decode"
	}
}
