package simulator

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github/chapool/go-hwkeyring/internal/keyring/protocol"
	"github/chapool/go-hwkeyring/internal/keyring/txnorm"
)

// Device is a software stand-in for the external signer, for development and tests only.
// It answers protocol envelopes with keys derived from a mnemonic.
type Device struct {
	seed seedStore
	log  zerolog.Logger

	mu       sync.Mutex
	requests map[protocol.CommandType]int

	reportAddress  *common.Address
	signPathSuffix string
	rejectWith     string
	silent         bool
}

type Option func(*Device)

// WithReportedAddress makes the device claim addr as signer regardless of the key it used.
func WithReportedAddress(addr common.Address) Option {
	return func(d *Device) {
		d.reportAddress = &addr
	}
}

// WithWrongKey makes the device sign with a sibling key below the requested path
// while still reporting the requested account.
func WithWrongKey() Option {
	return func(d *Device) {
		d.signPathSuffix = "/1"
	}
}

// WithRejection makes the device answer every signing request with message as error.
func WithRejection(message string) Option {
	return func(d *Device) {
		d.rejectWith = message
	}
}

// WithSilence makes the device never answer.
func WithSilence() Option {
	return func(d *Device) {
		d.silent = true
	}
}

func New(mnemonic string, password string, opts ...Option) *Device {
	d := &Device{
		log:      log.With().Str("component", "device_simulator").Logger(),
		requests: make(map[protocol.CommandType]int),
	}
	d.seed.load(mnemonic, password)

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Close wipes the seed; subsequent requests fail.
func (d *Device) Close() {
	d.seed.clear()
}

// Requests returns how often a command was received.
func (d *Device) Requests(cmd protocol.CommandType) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.requests[cmd]
}

// Address returns the account at path, for tests and the CLI.
func (d *Device) Address(path string) (common.Address, error) {
	_, addr, err := signingKey(d.seed.get(), path)
	return addr, err
}

// Handle answers one envelope. A nil reply means the device stays silent.
func (d *Device) Handle(_ context.Context, env *protocol.Envelope) *protocol.Reply {
	d.mu.Lock()
	d.requests[env.Type]++
	d.mu.Unlock()

	if d.silent {
		return nil
	}

	log := d.log.With().Str("type", string(env.Type)).Str("id", env.ID).Logger()

	payload, err := d.dispatch(env)
	if err != nil {
		log.Debug().Err(err).Msg("Rejecting request")
		return &protocol.Reply{ID: env.ID, Type: env.Type, Error: err.Error()}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return &protocol.Reply{ID: env.ID, Type: env.Type, Error: err.Error()}
	}

	log.Debug().Msg("Answered request")

	return &protocol.Reply{ID: env.ID, Type: env.Type, Payload: raw}
}

func (d *Device) dispatch(env *protocol.Envelope) (any, error) {
	switch env.Type {
	case protocol.GetEthereumPublicKey:
		var param protocol.GetPublicKeyParam
		if err := json.Unmarshal(env.Param, &param); err != nil {
			return nil, errors.Wrap(err, "invalid param")
		}

		return d.publicKey(param.Path)

	case protocol.SignTransaction:
		if d.rejectWith != "" {
			return nil, errors.New(d.rejectWith)
		}

		var param struct {
			Path        string           `json:"path"`
			Transaction txnorm.Canonical `json:"transaction"`
		}
		if err := json.Unmarshal(env.Param, &param); err != nil {
			return nil, errors.Wrap(err, "invalid param")
		}

		return d.signTransaction(param.Path, &param.Transaction)

	case protocol.SignMessage:
		if d.rejectWith != "" {
			return nil, errors.New(d.rejectWith)
		}

		var param protocol.SignMessageParam
		if err := json.Unmarshal(env.Param, &param); err != nil {
			return nil, errors.Wrap(err, "invalid param")
		}

		return d.signMessage(param)

	default:
		return nil, errors.Errorf("unsupported command %q", env.Type)
	}
}

func (d *Device) publicKey(path string) (*protocol.PublicKeyReply, error) {
	key, err := keyAt(d.seed.get(), path)
	if err != nil {
		return nil, err
	}

	return &protocol.PublicKeyReply{XPub: key.PublicKey().B58Serialize()}, nil
}

func (d *Device) signTransaction(path string, c *txnorm.Canonical) (*protocol.SignatureReply, error) {
	priv, addr, err := d.keys(path)
	if err != nil {
		return nil, err
	}

	tx, err := c.Transaction()
	if err != nil {
		return nil, err
	}

	signed, err := types.SignTx(tx, c.Signer(), priv)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign transaction")
	}

	v, r, s := signed.RawSignatureValues()

	return &protocol.SignatureReply{
		V:       (*hexutil.Big)(v),
		R:       (*hexutil.Big)(r),
		S:       (*hexutil.Big)(s),
		Address: addr.Hex(),
	}, nil
}

func (d *Device) signMessage(param protocol.SignMessageParam) (*protocol.SignatureReply, error) {
	priv, addr, err := d.keys(param.Path)
	if err != nil {
		return nil, err
	}

	digest, err := txnorm.MessageDigest(param.Message, param.Personal)
	if err != nil {
		return nil, err
	}

	sig, err := crypto.Sign(digest, priv)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign message")
	}

	return &protocol.SignatureReply{
		R:       (*hexutil.Big)(new(big.Int).SetBytes(sig[:32])),
		S:       (*hexutil.Big)(new(big.Int).SetBytes(sig[32:64])),
		V:       (*hexutil.Big)(big.NewInt(int64(sig[crypto.RecoveryIDOffset]) + 27)),
		Address: addr.Hex(),
	}, nil
}

// keys returns the signing key for path and the address the device will report.
func (d *Device) keys(path string) (*ecdsa.PrivateKey, common.Address, error) {
	_, requested, err := signingKey(d.seed.get(), path)
	if err != nil {
		return nil, common.Address{}, err
	}

	priv, _, err := signingKey(d.seed.get(), path+d.signPathSuffix)
	if err != nil {
		return nil, common.Address{}, err
	}

	if d.reportAddress != nil {
		requested = *d.reportAddress
	}

	return priv, requested, nil
}
