package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hliosone/legacyx"
	"github.com/hliosone/legacyx/internal/domain"
)

func testConfig() domain.Config {
	return domain.Config{
		PlatformAddress:  "rPT1Sjq2YGrBMTttX4GZHjKu9dyfzbpAYe",
		FeeAmount:        5,
		ActivationAmount: 20,
	}
}

func TestProvisionSequence(t *testing.T) {
	provider := &mockProvider{created: pendingPayload("uuid-escrow")}
	backend := &mockBackend{escrowAddress: "rEscrowXk9mDx4vGqVKbQRST7VWXYZ2bcde"}
	uc := NewEscrowUsecase(backend, NewSigningUsecase(provider, nil, nil), testConfig())

	result, err := uc.Provision(context.Background())
	if err != nil {
		t.Fatalf("provision failed: %v", err)
	}

	if result.Escrow.Address != backend.escrowAddress {
		t.Errorf("unexpected escrow address %s", result.Escrow.Address)
	}
	if result.Escrow.Activated {
		t.Errorf("fresh escrow must start unfunded")
	}
	if result.Session.ProofURI == "" {
		t.Errorf("activation proof artifact must be exposed")
	}

	var tx legacyx.PaymentTx
	provider.mu.Lock()
	submitted := provider.submitted[0]
	provider.mu.Unlock()
	if err := json.Unmarshal(submitted.TxJSON, &tx); err != nil {
		t.Fatalf("unmarshal submitted tx: %v", err)
	}
	if tx.Destination != backend.escrowAddress {
		t.Errorf("activation payment must target the escrow address")
	}
	if tx.Amount != "20000000" {
		t.Errorf("activation amount must be 20 units in drops, got %s", tx.Amount)
	}
}

func TestProvisionGenerationFailureAborts(t *testing.T) {
	provider := &mockProvider{created: pendingPayload("uuid-escrow")}
	backend := &mockBackend{escrowErr: domain.BackendUnavailableError{Reason: "dial tcp"}}
	uc := NewEscrowUsecase(backend, NewSigningUsecase(provider, nil, nil), testConfig())

	_, err := uc.Provision(context.Background())
	if !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("expected backend error, got %v", err)
	}
	if provider.submitCount() != 0 {
		t.Errorf("no payment may be submitted when generation fails")
	}
}

func TestProvisionSigningFailureAborts(t *testing.T) {
	provider := &mockProvider{createErr: errBoom}
	backend := &mockBackend{escrowAddress: "rEscrowXk9mDx4vGqVKbQRST7VWXYZ2bcde"}
	uc := NewEscrowUsecase(backend, NewSigningUsecase(provider, nil, nil), testConfig())

	_, err := uc.Provision(context.Background())
	if !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestProvisionAlwaysGeneratesFresh(t *testing.T) {
	provider := &mockProvider{created: pendingPayload("uuid-escrow")}
	backend := &mockBackend{escrowAddress: "rEscrowXk9mDx4vGqVKbQRST7VWXYZ2bcde"}
	uc := NewEscrowUsecase(backend, NewSigningUsecase(provider, nil, nil), testConfig())

	if _, err := uc.Provision(context.Background()); err != nil {
		t.Fatalf("provision failed: %v", err)
	}
	if _, err := uc.Provision(context.Background()); err != nil {
		t.Fatalf("second provision failed: %v", err)
	}
	if backend.escrowCalls != 2 {
		t.Errorf("each provision must request a fresh address, got %d calls", backend.escrowCalls)
	}
}
