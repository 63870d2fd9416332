package usecase

import (
	"context"

	"github.com/hliosone/legacyx/internal/domain"
)

// FeeUsecase handles the platform service fee: submitting the fee payment
// for signing and confirming receipt with the backend. Verification is a
// pure query and may be repeated while the user waits for settlement.
type FeeUsecase struct {
	backend Backend
	signing *SigningUsecase
	config  domain.Config
}

func NewFeeUsecase(backend Backend, signing *SigningUsecase, config domain.Config) *FeeUsecase {
	return &FeeUsecase{
		backend: backend,
		signing: signing,
		config:  config,
	}
}

// RequestFeePayment builds and submits the fee payment, surfacing only the
// proof artifact. No settlement wait at this step.
func (uc *FeeUsecase) RequestFeePayment(ctx context.Context) (domain.SigningSession, error) {
	ctx, span := tracer.Start(ctx, "Fee.Usecase.RequestFeePayment")
	defer span.End()

	if uc.config.PlatformAddress == "" {
		err := domain.PreconditionViolationError{Reason: "platform fee destination is not configured"}
		span.RecordError(err)
		return domain.SigningSession{}, err
	}

	req, err := BuildPayment(uc.config.PlatformAddress, uc.config.FeeAmount)
	if err != nil {
		span.RecordError(err)
		return domain.SigningSession{}, err
	}

	return uc.signing.Submit(ctx, req, domain.FlowFee)
}

// VerifyFeeReceived asks the backend whether payer has paid the service fee.
// A negative answer is a plain false, never an error; only transport and
// backend failures surface as errors.
func (uc *FeeUsecase) VerifyFeeReceived(ctx context.Context, payerAddress string) (bool, error) {
	ctx, span := tracer.Start(ctx, "Fee.Usecase.VerifyFeeReceived")
	defer span.End()

	if payerAddress == "" {
		err := domain.PreconditionViolationError{Reason: "payer address is empty"}
		span.RecordError(err)
		return false, err
	}

	received, err := uc.backend.VerifyFee(ctx, payerAddress)
	if err != nil {
		span.RecordError(err)
		return false, err
	}
	return received, nil
}
