// Package store persists the oracle's two partitions, a fixed-size header
// account and the price-data account, addressed by program-derived addresses
// from static seeds. The engine never sees raw bytes or derivation, only
// already-decoded state.
package store

import (
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"

	"github.com/xxusd-labs/lst-oracle/pkg/oracle"
)

// Static naming keys for the two partitions.
const (
	HeaderSeed = "price_oracle_header"
	DataSeed   = "price_oracle_data"
)

var ErrNotFound = errors.New("account not found")

// HeaderAddress derives the header partition address for the program.
func HeaderAddress(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{[]byte(HeaderSeed)}, programID)
}

// DataAddress derives the data partition address for the program.
func DataAddress(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{[]byte(DataSeed)}, programID)
}

// Storage reads and writes raw account payloads at resolved addresses.
type Storage interface {
	Get(address solana.PublicKey) ([]byte, error)
	Put(address solana.PublicKey, data []byte) error
}

var _ Storage = (*Memory)(nil)

// Memory is an in-process Storage used by tests and the CLI harness.
type Memory struct {
	mu       sync.RWMutex
	accounts map[solana.PublicKey][]byte
}

func NewMemory() *Memory {
	return &Memory{accounts: map[solana.PublicKey][]byte{}}
}

func (m *Memory) Get(address solana.PublicKey) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.accounts[address]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "address %s", address)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *Memory) Put(address solana.PublicKey, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	m.mu.Lock()
	m.accounts[address] = cp
	m.mu.Unlock()
	return nil
}

// Save writes both partitions atomically with respect to the snapshot taken
// by the caller.
func Save(st Storage, programID solana.PublicKey, header oracle.Header, data oracle.Data) error {
	headerAddr, _, err := HeaderAddress(programID)
	if err != nil {
		return errors.Wrap(err, "error deriving header address")
	}
	dataAddr, _, err := DataAddress(programID)
	if err != nil {
		return errors.Wrap(err, "error deriving data address")
	}

	headerBytes, err := EncodeHeader(header)
	if err != nil {
		return err
	}
	dataBytes, err := EncodeData(data)
	if err != nil {
		return err
	}

	if err := st.Put(headerAddr, headerBytes); err != nil {
		return errors.Wrap(err, "error writing header partition")
	}
	return errors.Wrap(st.Put(dataAddr, dataBytes), "error writing data partition")
}

// Load reads and decodes both partitions.
func Load(st Storage, programID solana.PublicKey) (oracle.Header, oracle.Data, error) {
	headerAddr, _, err := HeaderAddress(programID)
	if err != nil {
		return oracle.Header{}, oracle.Data{}, errors.Wrap(err, "error deriving header address")
	}
	dataAddr, _, err := DataAddress(programID)
	if err != nil {
		return oracle.Header{}, oracle.Data{}, errors.Wrap(err, "error deriving data address")
	}

	headerBytes, err := st.Get(headerAddr)
	if err != nil {
		return oracle.Header{}, oracle.Data{}, errors.Wrap(err, "error reading header partition")
	}
	dataBytes, err := st.Get(dataAddr)
	if err != nil {
		return oracle.Header{}, oracle.Data{}, errors.Wrap(err, "error reading data partition")
	}

	header, err := DecodeHeader(headerBytes)
	if err != nil {
		return oracle.Header{}, oracle.Data{}, err
	}
	data, err := DecodeData(dataBytes)
	if err != nil {
		return oracle.Header{}, oracle.Data{}, err
	}
	return header, data, nil
}
