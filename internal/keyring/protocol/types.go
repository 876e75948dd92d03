package protocol

import (
	"context"
	"encoding/json"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
)

// CommandType names a device operation on the wire.
type CommandType string

const (
	GetEthereumPublicKey CommandType = "GetEthereumPublicKey"
	SignTransaction      CommandType = "SignTransaction"
	SignMessage          CommandType = "SignMessage"

	// Declared by the link page protocol; the keyring derives addresses itself and never sends these.
	GetAddress   CommandType = "GetAddress"
	GetAddresses CommandType = "GetAddresses"
)

// Envelope is one request to the device.
type Envelope struct {
	ID    string          `json:"id"`
	Type  CommandType     `json:"type"`
	Param json.RawMessage `json:"param"`
}

// Reply is the device's answer to an Envelope. Link pages that predate correlation ids
// send the bare payload; DecodeReply handles both.
type Reply struct {
	ID      string          `json:"id,omitempty"`
	Type    CommandType     `json:"type,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Message is anything arriving on the transport, tagged with the origin that sent it.
type Message struct {
	Origin string
	Data   []byte
}

// Transport delivers envelopes to the device and fans incoming messages out to subscribers.
type Transport interface {
	Send(ctx context.Context, env *Envelope) error
	Subscribe(handler func(*Message)) (unsubscribe func())
}

// DecodeReply parses a message body. A body with neither payload nor error is a legacy bare payload.
func DecodeReply(data []byte) (*Reply, error) {
	var r Reply
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, errors.Wrap(err, "failed to decode device reply")
	}

	if len(r.Payload) == 0 && r.Error == "" {
		r.Payload = append(json.RawMessage(nil), data...)
	}

	return &r, nil
}

type GetPublicKeyParam struct {
	Path string `json:"path"`
}

type PublicKeyReply struct {
	XPub string `json:"xpub"`
}

// SignTransactionParam carries a canonical transaction; the keyring encodes it, the device decodes it.
type SignTransactionParam struct {
	Path        string `json:"path"`
	Transaction any    `json:"transaction"`
}

type SignMessageParam struct {
	Path     string        `json:"path"`
	Message  hexutil.Bytes `json:"message"`
	Personal bool          `json:"personal"`
}

// SignatureReply holds raw signature components and the signer the device claims.
type SignatureReply struct {
	V       *hexutil.Big `json:"v"`
	R       *hexutil.Big `json:"r"`
	S       *hexutil.Big `json:"s"`
	Address string       `json:"address"`
}
