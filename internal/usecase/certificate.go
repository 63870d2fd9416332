package usecase

import (
	"context"

	"github.com/hliosone/legacyx/internal/domain"
)

// CertificateUsecase drives the government-issuance flow: the backend
// prepares the signable death-certificate transaction, the authority signs
// it through the provider, and the flow awaits full settlement confirmation.
type CertificateUsecase struct {
	backend Backend
	signing *SigningUsecase
}

func NewCertificateUsecase(backend Backend, signing *SigningUsecase) *CertificateUsecase {
	return &CertificateUsecase{
		backend: backend,
		signing: signing,
	}
}

// Issue prepares and submits the certificate transaction, returning the
// pending session with its proof artifact for display.
func (uc *CertificateUsecase) Issue(ctx context.Context, deceasedDID, inheritor string) (domain.SigningSession, error) {
	ctx, span := tracer.Start(ctx, "Certificate.Usecase.Issue")
	defer span.End()

	if deceasedDID == "" || inheritor == "" {
		err := domain.PreconditionViolationError{Reason: "certificate issuance requires deceased DID and inheritor address"}
		span.RecordError(err)
		return domain.SigningSession{}, err
	}

	req, err := uc.backend.PrepareCertificate(ctx, deceasedDID, inheritor)
	if err != nil {
		span.RecordError(err)
		return domain.SigningSession{}, err
	}

	return uc.signing.Submit(ctx, req, domain.FlowCertificate)
}

// Await drives the issuance session to its terminal outcome. This is the one
// flow that requires caller-visible settlement of the signed transaction.
func (uc *CertificateUsecase) Await(ctx context.Context, session domain.SigningSession) (domain.SigningSession, error) {
	return uc.signing.Await(ctx, session, domain.FlowCertificate)
}
