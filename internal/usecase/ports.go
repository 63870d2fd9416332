package usecase

import (
	"context"

	"github.com/hliosone/legacyx"
	"github.com/hliosone/legacyx/internal/domain"
)

// Subscription is a cancellable handle to a provider event stream. Cancel is
// idempotent and must be called on every terminal path.
type Subscription interface {
	Cancel()
}

// Provider identity events pushed while a wallet session exists.
const (
	ProviderEventSuccess   = "success"
	ProviderEventRetrieved = "retrieved"
	ProviderEventError     = "error"
)

// SigningProvider mediates human signature approval of transactions and
// credentials.
type SigningProvider interface {
	CurrentAccount(ctx context.Context) (string, error)
	OnSessionChange(fn func(event string)) (Subscription, error)
	CreatePayload(ctx context.Context, req legacyx.SigningRequest) (legacyx.CreatedPayload, error)
	Subscribe(sessionID string, fn func(legacyx.StatusEvent)) (Subscription, error)
	GetPayload(ctx context.Context, sessionID string) (legacyx.ResolvedPayload, error)
	Logout(ctx context.Context) error
}

// Backend defines the LegacyX backend operations the flows depend on.
// Transport failures surface as domain.BackendUnavailableError, non-2xx
// responses as domain.BackendRejectedError with the body text verbatim.
type Backend interface {
	GenerateEscrow(ctx context.Context) (string, error)
	VerifyFee(ctx context.Context, payerAddress string) (bool, error)
	ActivateContract(ctx context.Context, contract domain.InheritanceContract) (string, error)
	PrepareCertificate(ctx context.Context, deceasedDID, inheritor string) (legacyx.SigningRequest, error)
	VerifyCertificate(ctx context.Context, cred domain.DeathCertificateCredential) (bool, error)
}

// HistoryRepository persists the client-side record of activated contracts
// and terminal signing sessions.
type HistoryRepository interface {
	SaveContract(ctx context.Context, contract domain.InheritanceContract, message string) error
	SaveSession(ctx context.Context, session domain.SigningSession, flow string) error
	ListContracts(ctx context.Context, address string) ([]domain.InheritanceContract, error)
}

// SignalPublisher broadcasts signing-session state changes to interested
// observers (the realtime socket, operational tooling).
type SignalPublisher interface {
	Publish(ctx context.Context, channel string, event legacyx.Event) error
}
