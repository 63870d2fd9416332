package usecase

import (
	"context"

	"github.com/hliosone/legacyx/internal/domain"
)

// CredentialUsecase verifies a held death-certificate credential and, only
// on a valid result, constructs the inheritor-side transfer request. The
// backend is the sole authority on validity: absence of a positive
// confirmation is invalid, never an error.
type CredentialUsecase struct {
	backend Backend
	signing *SigningUsecase
}

func NewCredentialUsecase(backend Backend, signing *SigningUsecase) *CredentialUsecase {
	return &CredentialUsecase{
		backend: backend,
		signing: signing,
	}
}

// Verify submits the credential and claimed identifiers to the backend
// verifier and reports the binary result.
func (uc *CredentialUsecase) Verify(ctx context.Context, cred domain.DeathCertificateCredential) (bool, error) {
	ctx, span := tracer.Start(ctx, "Credential.Usecase.Verify")
	defer span.End()

	if cred.Credential == "" || cred.DeceasedDID == "" || cred.Inheritor == "" {
		err := domain.PreconditionViolationError{Reason: "credential, deceased DID and inheritor address are all required"}
		span.RecordError(err)
		return false, err
	}

	valid, err := uc.backend.VerifyCertificate(ctx, cred)
	if err != nil {
		span.RecordError(err)
		return false, err
	}
	return valid, nil
}

// Claim re-verifies the credential and, when valid, builds and submits the
// inheritor transfer for signing. An invalid credential never reaches
// request construction.
func (uc *CredentialUsecase) Claim(ctx context.Context, cred domain.DeathCertificateCredential, amountUnits int64) (domain.SigningSession, error) {
	ctx, span := tracer.Start(ctx, "Credential.Usecase.Claim")
	defer span.End()

	valid, err := uc.Verify(ctx, cred)
	if err != nil {
		return domain.SigningSession{}, err
	}
	if !valid {
		err := domain.PreconditionViolationError{Reason: "claim requires a valid death certificate"}
		span.RecordError(err)
		return domain.SigningSession{}, err
	}

	req, err := BuildPayment(cred.Inheritor, amountUnits)
	if err != nil {
		span.RecordError(err)
		return domain.SigningSession{}, err
	}

	return uc.signing.Submit(ctx, req, domain.FlowClaim)
}
