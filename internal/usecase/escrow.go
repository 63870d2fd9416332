package usecase

import (
	"context"

	"github.com/pkg/errors"

	"github.com/hliosone/legacyx/internal/domain"
)

// EscrowUsecase provisions the jointly controlled inheritance account:
// backend generation, then an activation payment submitted for signing. The
// proof artifact is exposed for display; settlement confirmation of the
// funding is deferred to the ledger. An address is never regenerated
// implicitly: each Provision call yields a fresh, unrelated account.
type EscrowUsecase struct {
	backend Backend
	signing *SigningUsecase
	config  domain.Config
}

func NewEscrowUsecase(backend Backend, signing *SigningUsecase, config domain.Config) *EscrowUsecase {
	return &EscrowUsecase{
		backend: backend,
		signing: signing,
		config:  config,
	}
}

// ProvisionResult is the outcome of a successful provisioning sequence.
type ProvisionResult struct {
	Escrow  domain.EscrowAccount  `json:"escrow"`
	Session domain.SigningSession `json:"session"`
}

// Provision runs the gated sequence: generate, build activation payment,
// submit. Any failure aborts without advancing escrow state.
func (uc *EscrowUsecase) Provision(ctx context.Context) (ProvisionResult, error) {
	ctx, span := tracer.Start(ctx, "Escrow.Usecase.Provision")
	defer span.End()

	address, err := uc.backend.GenerateEscrow(ctx)
	if err != nil {
		span.RecordError(err)
		return ProvisionResult{}, errors.Wrap(err, "escrow generation failed")
	}

	req, err := BuildPayment(address, uc.config.ActivationAmount)
	if err != nil {
		span.RecordError(err)
		return ProvisionResult{}, err
	}

	session, err := uc.signing.Submit(ctx, req, domain.FlowEscrow)
	if err != nil {
		span.RecordError(err)
		return ProvisionResult{}, err
	}

	return ProvisionResult{
		Escrow:  domain.EscrowAccount{Address: address},
		Session: session,
	}, nil
}
