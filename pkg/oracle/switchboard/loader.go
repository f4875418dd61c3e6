package switchboard

import (
	"context"
	"crypto/sha256"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

// feedAccountDiscriminator guards against decoding an account of the wrong
// type (first 8 bytes of sha256 of the account ident).
var feedAccountDiscriminator = accountDiscriminator("AggregatorAccountData")

func accountDiscriminator(name string) [8]byte {
	sum := sha256.Sum256([]byte("account:" + name))
	var d [8]byte
	copy(d[:], sum[:8])
	return d
}

// feedAccount is the on-chain layout of an aggregator round consumed here.
type feedAccount struct {
	Discriminator      [8]byte
	LatestResult       Decimal
	StdDeviation       Decimal
	RoundOpenTimestamp int64
	NumSuccess         uint32
	Payload            []byte // JSON envelope published with the round
}

// Loader fetches and deserializes aggregator feed accounts over RPC.
type Loader struct {
	rpc      *rpc.Client
	provider solana.PublicKey

	// provides a duplicate function call suppression mechanism
	requestGroup *singleflight.Group
}

// NewLoader bundles the RPC client with the trusted feed provider identity.
func NewLoader(rpcEndpoint string, provider solana.PublicKey) *Loader {
	return &Loader{
		rpc:          rpc.New(rpcEndpoint),
		provider:     provider,
		requestGroup: &singleflight.Group{},
	}
}

// LoadFeed fetches the feed account, verifies ownership and account type and
// returns the decoded round. Concurrent requests for the same account are
// coalesced.
func (l *Loader) LoadFeed(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*Feed, error) {
	v, err, _ := l.requestGroup.Do("LoadFeed:"+account.String(), func() (interface{}, error) {
		return l.loadFeed(ctx, account, commitment)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Feed), nil
}

func (l *Loader) loadFeed(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*Feed, error) {
	res, err := l.rpc.GetAccountInfoWithOpts(ctx, account, &rpc.GetAccountInfoOpts{
		Encoding:   "base64",
		Commitment: commitment,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch feed account at address '%s'", account.String())
	}
	if !res.Value.Owner.Equals(l.provider) {
		return nil, errors.Wrapf(ErrInvalidSwitchboardProgram, "expected %s, found %s", l.provider, res.Value.Owner)
	}

	var acct feedAccount
	if err := bin.NewBorshDecoder(res.Value.Data.GetBinary()).Decode(&acct); err != nil {
		return nil, errors.Wrap(ErrInvalidAccountData, err.Error())
	}
	if acct.Discriminator != feedAccountDiscriminator {
		return nil, errors.Wrap(ErrInvalidAccountData, "account discriminator mismatch")
	}

	env, err := ParseEnvelope(acct.Payload)
	if err != nil {
		return nil, err
	}

	return &Feed{
		Provider:     res.Value.Owner,
		Envelope:     env,
		Timestamp:    acct.RoundOpenTimestamp,
		StdDeviation: acct.StdDeviation.Decimal(),
		NumSuccess:   acct.NumSuccess,
	}, nil
}
