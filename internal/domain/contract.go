package domain

// SigningSession correlates one signing request with the provider-issued
// session identifier and the scannable proof artifact shown to the signer.
type SigningSession struct {
	ID       string `json:"id"`
	ProofURI string `json:"proofUri"`
	State    string `json:"state"`
}

// Terminal reports whether the session has reached a final state.
func (s SigningSession) Terminal() bool {
	return s.State != "" && s.State != SessionPending
}

// EscrowAccount is the jointly controlled ledger account generated by the
// backend. It cannot be derived locally.
type EscrowAccount struct {
	Address   string `json:"address"`
	Activated bool   `json:"activated"`
}

// InheritanceContract is the bound triple created exactly once by contract
// activation. Immutable from the client's point of view.
type InheritanceContract struct {
	Testator  string `json:"testatorAddress"`
	Inheritor string `json:"inheritorAddress"`
	Escrow    string `json:"escrowAddress"`
}

// DeathCertificateCredential is an opaque verifiable credential plus the
// identifiers of the claim it supports. Verified, never mutated.
type DeathCertificateCredential struct {
	Credential  string `json:"vc"`
	DeceasedDID string `json:"deceasedDid"`
	Inheritor   string `json:"inheritorAddress"`
}
