package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/hliosone/legacyx"
	"github.com/hliosone/legacyx/internal/domain"
)

// --- shared mocks ---

type mockSubscription struct {
	mu        sync.Mutex
	cancelled int
}

func (s *mockSubscription) Cancel() {
	s.mu.Lock()
	s.cancelled++
	s.mu.Unlock()
}

func (s *mockSubscription) cancelCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}

type mockProvider struct {
	mu sync.Mutex

	account    string
	accountErr error

	sessionFn  func(event string)
	sessionSub mockSubscription

	created    legacyx.CreatedPayload
	createErr  error
	submitted  []legacyx.SigningRequest
	statusFn   func(legacyx.StatusEvent)
	statusSub  mockSubscription
	preload    []legacyx.StatusEvent
	resolved   legacyx.ResolvedPayload
	resolveErr error

	loggedOut bool
	logoutErr error
}

func (p *mockProvider) CurrentAccount(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.account, p.accountErr
}

func (p *mockProvider) OnSessionChange(fn func(event string)) (Subscription, error) {
	p.mu.Lock()
	p.sessionFn = fn
	p.mu.Unlock()
	return &p.sessionSub, nil
}

func (p *mockProvider) CreatePayload(ctx context.Context, req legacyx.SigningRequest) (legacyx.CreatedPayload, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.submitted = append(p.submitted, req)
	if p.createErr != nil {
		return legacyx.CreatedPayload{}, p.createErr
	}
	return p.created, nil
}

func (p *mockProvider) Subscribe(sessionID string, fn func(legacyx.StatusEvent)) (Subscription, error) {
	p.mu.Lock()
	p.statusFn = fn
	preload := p.preload
	p.mu.Unlock()
	// delivered before the caller regains control, like a stream with
	// backlogged messages
	for _, ev := range preload {
		fn(ev)
	}
	return &p.statusSub, nil
}

func (p *mockProvider) waitSubscribed(t testing.TB) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		p.mu.Lock()
		fn := p.statusFn
		p.mu.Unlock()
		if fn != nil {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("status subscription never opened")
}

func (p *mockProvider) GetPayload(ctx context.Context, sessionID string) (legacyx.ResolvedPayload, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.resolved, p.resolveErr
}

func (p *mockProvider) Logout(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loggedOut = true
	return p.logoutErr
}

func (p *mockProvider) pushSessionEvent(event string) {
	p.mu.Lock()
	fn := p.sessionFn
	p.mu.Unlock()
	if fn != nil {
		fn(event)
	}
}

func (p *mockProvider) pushStatus(signed bool) {
	p.mu.Lock()
	fn := p.statusFn
	p.mu.Unlock()
	if fn != nil {
		fn(legacyx.StatusEvent{Signed: &signed})
	}
}

func (p *mockProvider) submitCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.submitted)
}

type mockBackend struct {
	escrowAddress string
	escrowErr     error
	escrowCalls   int

	feePaid     map[string]bool
	feeErr      error
	feeCalls    int
	activateMsg string
	activateErr error
	activated   []domain.InheritanceContract

	prepared   legacyx.SigningRequest
	prepareErr error

	certValid   bool
	certErr     error
	verifyCalls int
}

func (b *mockBackend) GenerateEscrow(ctx context.Context) (string, error) {
	b.escrowCalls++
	if b.escrowErr != nil {
		return "", b.escrowErr
	}
	return b.escrowAddress, nil
}

func (b *mockBackend) VerifyFee(ctx context.Context, payerAddress string) (bool, error) {
	b.feeCalls++
	if b.feeErr != nil {
		return false, b.feeErr
	}
	return b.feePaid[payerAddress], nil
}

func (b *mockBackend) ActivateContract(ctx context.Context, contract domain.InheritanceContract) (string, error) {
	if b.activateErr != nil {
		return "", b.activateErr
	}
	b.activated = append(b.activated, contract)
	return b.activateMsg, nil
}

func (b *mockBackend) PrepareCertificate(ctx context.Context, deceasedDID, inheritor string) (legacyx.SigningRequest, error) {
	if b.prepareErr != nil {
		return legacyx.SigningRequest{}, b.prepareErr
	}
	return b.prepared, nil
}

func (b *mockBackend) VerifyCertificate(ctx context.Context, cred domain.DeathCertificateCredential) (bool, error) {
	b.verifyCalls++
	if b.certErr != nil {
		return false, b.certErr
	}
	return b.certValid, nil
}

type mockHistory struct {
	mu        sync.Mutex
	contracts []domain.InheritanceContract
	sessions  []domain.SigningSession
}

func (h *mockHistory) SaveContract(ctx context.Context, contract domain.InheritanceContract, message string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.contracts = append(h.contracts, contract)
	return nil
}

func (h *mockHistory) SaveSession(ctx context.Context, session domain.SigningSession, flow string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions = append(h.sessions, session)
	return nil
}

func (h *mockHistory) ListContracts(ctx context.Context, address string) ([]domain.InheritanceContract, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.contracts, nil
}

type mockSignal struct {
	mu     sync.Mutex
	events []legacyx.Event
}

func (s *mockSignal) Publish(ctx context.Context, channel string, event legacyx.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *mockSignal) states() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.State)
	}
	return out
}

var errBoom = fmt.Errorf("boom")
