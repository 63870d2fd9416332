package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hliosone/legacyx"
	"github.com/hliosone/legacyx/internal/domain"
)

func TestIssueSubmitsPreparedTransaction(t *testing.T) {
	prepared := legacyx.SigningRequest{TxJSON: json.RawMessage(`{"TransactionType":"DIDSet","Data":"cert"}`)}
	provider := &mockProvider{created: pendingPayload("uuid-cert")}
	backend := &mockBackend{prepared: prepared}
	uc := NewCertificateUsecase(backend, NewSigningUsecase(provider, nil, nil))

	session, err := uc.Issue(context.Background(), "did:example:123", "rGovXk9mDx4vGqVKbQRST7VWXYZ2bcdeCgt")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if session.ProofURI == "" {
		t.Errorf("certificate proof artifact must be exposed")
	}

	provider.mu.Lock()
	submitted := provider.submitted[0]
	provider.mu.Unlock()
	if string(submitted.TxJSON) != string(prepared.TxJSON) {
		t.Errorf("the prepared transaction must be submitted untouched")
	}
}

func TestIssuePreparationFailureAborts(t *testing.T) {
	provider := &mockProvider{created: pendingPayload("uuid-cert")}
	backend := &mockBackend{prepareErr: domain.BackendRejectedError{Message: "unknown DID"}}
	uc := NewCertificateUsecase(backend, NewSigningUsecase(provider, nil, nil))

	_, err := uc.Issue(context.Background(), "did:example:123", "rGovXk9mDx4vGqVKbQRST7VWXYZ2bcdeCgt")
	if !errors.Is(err, domain.ErrBackendRejected) {
		t.Fatalf("expected backend rejection, got %v", err)
	}
	if provider.submitCount() != 0 {
		t.Errorf("nothing may be submitted when preparation fails")
	}
}

func TestIssueMissingInputs(t *testing.T) {
	uc := NewCertificateUsecase(&mockBackend{}, NewSigningUsecase(&mockProvider{}, nil, nil))
	if _, err := uc.Issue(context.Background(), "", "rGovXk9mDx4vGqVKbQRST7VWXYZ2bcdeCgt"); !errors.Is(err, domain.ErrPrecondition) {
		t.Errorf("expected precondition violation, got %v", err)
	}
}
