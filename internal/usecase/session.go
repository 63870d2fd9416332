package usecase

import (
	"context"
	"log/slog"
	"sync"

	"github.com/hliosone/legacyx/internal/domain"
)

// SessionUsecase owns the wallet identity. It adopts an existing provider
// session on start, tracks provider-pushed identity events, and clears the
// identity on logout or provider error. Flows read the identity through
// Current and never mutate it.
type SessionUsecase struct {
	provider SigningProvider

	mu       sync.RWMutex
	identity domain.Identity
	sub      Subscription
}

func NewSessionUsecase(provider SigningProvider) *SessionUsecase {
	return &SessionUsecase{provider: provider}
}

// Start queries the provider for an existing session and subscribes to
// identity events. Failure to fetch the identity is not an error: it simply
// remains absent until the provider reports a session.
func (uc *SessionUsecase) Start(ctx context.Context) error {
	uc.refresh(ctx)

	sub, err := uc.provider.OnSessionChange(func(event string) {
		switch event {
		case ProviderEventSuccess, ProviderEventRetrieved:
			uc.refresh(context.Background())
		case ProviderEventError:
			uc.clear()
		default:
			slog.Debug("ignoring provider event",
				slog.String("event", event),
				slog.String("module", "session"),
			)
		}
	})
	if err != nil {
		return domain.ProviderUnavailableError{Reason: err.Error()}
	}

	uc.mu.Lock()
	uc.sub = sub
	uc.mu.Unlock()

	return nil
}

// Current returns the active identity, which may be absent.
func (uc *SessionUsecase) Current() domain.Identity {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.identity
}

// Logout invalidates the provider session and clears the identity locally.
// The local clear happens regardless of the provider call outcome.
func (uc *SessionUsecase) Logout(ctx context.Context) error {
	err := uc.provider.Logout(ctx)
	uc.clear()
	if err != nil {
		return domain.ProviderUnavailableError{Reason: err.Error()}
	}
	return nil
}

// Close unsubscribes from provider events. Safe to call more than once.
func (uc *SessionUsecase) Close() {
	uc.mu.Lock()
	sub := uc.sub
	uc.sub = nil
	uc.mu.Unlock()

	if sub != nil {
		sub.Cancel()
	}
}

func (uc *SessionUsecase) refresh(ctx context.Context) {
	account, err := uc.provider.CurrentAccount(ctx)
	if err != nil {
		slog.Debug("identity fetch failed, leaving absent",
			slog.String("error", err.Error()),
			slog.String("module", "session"),
		)
		return
	}

	uc.mu.Lock()
	uc.identity = domain.Identity{Address: account}
	uc.mu.Unlock()
}

func (uc *SessionUsecase) clear() {
	uc.mu.Lock()
	uc.identity = domain.Identity{}
	uc.mu.Unlock()
}
