package legacyx

import (
	"encoding/json"
)

// SigningRequest is an intent to be signed by the wallet holder. The
// transaction JSON is whatever the ledger expects; we never interpret it
// beyond handing it to the signing provider. Immutable once submitted.
type SigningRequest struct {
	TxJSON json.RawMessage `json:"txjson"`
}

// PaymentTx is the ledger payment transaction shape built locally.
// Amount is expressed in drops as a decimal string.
type PaymentTx struct {
	TransactionType string `json:"TransactionType"`
	Destination     string `json:"Destination"`
	Amount          string `json:"Amount"`
}

// PayloadRefs are the human-presentable artifacts the provider attaches to a
// created payload.
type PayloadRefs struct {
	QRPNG           string `json:"qr_png"`
	WebsocketStatus string `json:"websocket_status,omitempty"`
}

// CreatedPayload is the provider response to a payload creation call.
type CreatedPayload struct {
	UUID string      `json:"uuid"`
	Refs PayloadRefs `json:"refs"`
}

// PayloadMeta carries the resolution state of a payload as reported by the
// provider on a confirming fetch.
type PayloadMeta struct {
	Resolved bool `json:"resolved"`
	Signed   bool `json:"signed"`
}

// ResolvedPayload is the provider response to a payload fetch.
type ResolvedPayload struct {
	Meta PayloadMeta `json:"meta"`
}

// StatusEvent is a single message from the provider's payload status stream.
// Signed is nil for keepalive/informational messages.
type StatusEvent struct {
	Signed *bool `json:"signed,omitempty"`
}

// Event is the orchestrator-side notification published when a signing
// session changes state. Consumed by the realtime socket and the signal bus.
type Event struct {
	SessionID string `json:"sessionId"`
	Flow      string `json:"flow,omitempty"`
	State     string `json:"state"`
	Message   string `json:"message,omitempty"`
}
