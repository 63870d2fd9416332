package domain

// Signing session states as reported to callers. Terminal states are final;
// retrying requires a fresh request, never the same session.
const (
	SessionPending  = "pending"
	SessionSigned   = "signed"
	SessionRejected = "rejected"
	SessionExpired  = "expired"
	SessionFailed   = "failed"
)

// Flow names used when recording and publishing session outcomes.
const (
	FlowFee         = "fee"
	FlowEscrow      = "escrow"
	FlowClaim       = "claim"
	FlowCertificate = "certificate"
)

const (
	RequesterAddressCtxKey = "lx-requesterAddress"
)

// FlowState models the per-flow step machine. Steps only ever move forward;
// a failed or rejected flow must be restarted from Idle with fresh inputs.
type FlowState int

const (
	FlowIdle FlowState = iota
	FlowRequested
	FlowAwaitingSignature
	FlowConfirmed
	FlowRejected
	FlowFailed
)

func (s FlowState) String() string {
	switch s {
	case FlowIdle:
		return "Idle"
	case FlowRequested:
		return "Requested"
	case FlowAwaitingSignature:
		return "AwaitingSignature"
	case FlowConfirmed:
		return "Confirmed"
	case FlowRejected:
		return "Rejected"
	case FlowFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}
