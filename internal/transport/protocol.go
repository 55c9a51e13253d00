package transport

import (
	"encoding/json"

	"github.com/coder/websocket"
)

// Supported websocket subprotocols.
const (
	// ProtocolTransportWS is the graphql-transport-ws protocol.
	ProtocolTransportWS = "graphql-transport-ws"
	// ProtocolLegacyWS is the legacy graphql-ws protocol of subscriptions-transport-ws.
	ProtocolLegacyWS = "graphql-ws"
)

// Message types shared by both protocols.
const (
	typeConnectionInit = "connection_init"
	typeConnectionAck  = "connection_ack"
	typeError          = "error"
	typeComplete       = "complete"
)

// graphql-transport-ws message types.
const (
	typePing      = "ping"
	typePong      = "pong"
	typeSubscribe = "subscribe"
	typeNext      = "next"
)

// graphql-ws message types.
const (
	typeKeepAlive           = "ka"
	typeStart               = "start"
	typeStop                = "stop"
	typeData                = "data"
	typeConnectionTerminate = "connection_terminate"
)

// Close codes sent to clients that break the protocol.
const (
	StatusBadRequest        websocket.StatusCode = 4400
	StatusUnauthorized      websocket.StatusCode = 4401
	StatusInitTimeout       websocket.StatusCode = 4408
	StatusSubscriberExists  websocket.StatusCode = 4409
	StatusTooManyInitialise websocket.StatusCode = 4429
)

// Frame is one protocol message on the wire.
type Frame struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ErrorPayload is the shape of one GraphQL error sent outside a result.
type ErrorPayload struct {
	Message string `json:"message"`
}

// dialect maps the generic operation events onto a protocol's message types.
type dialect struct {
	name      string
	start     string
	stop      string
	result    string
	keepAlive string
}

var dialects = map[string]dialect{
	ProtocolTransportWS: {
		name:   ProtocolTransportWS,
		start:  typeSubscribe,
		stop:   typeComplete,
		result: typeNext,
	},
	ProtocolLegacyWS: {
		name:      ProtocolLegacyWS,
		start:     typeStart,
		stop:      typeStop,
		result:    typeData,
		keepAlive: typeKeepAlive,
	},
}

// legacy reports whether the connection speaks graphql-ws.
func (d dialect) legacy() bool {
	return d.name == ProtocolLegacyWS
}

func dialectFor(subprotocol string) dialect {
	if d, ok := dialects[subprotocol]; ok {
		return d
	}
	return dialects[ProtocolTransportWS]
}

func encodeFrame(f Frame) ([]byte, error) {
	return json.Marshal(f)
}

// errorPayload encodes errs the way the dialect expects: graphql-ws carries a
// single error object, graphql-transport-ws an array.
func (d dialect) errorPayload(errs []ErrorPayload) json.RawMessage {
	var v any = errs
	if d.legacy() && len(errs) > 0 {
		v = errs[0]
	}
	data, _ := json.Marshal(v)
	return data
}
