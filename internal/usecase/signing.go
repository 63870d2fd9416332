package usecase

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/hliosone/legacyx"
	"github.com/hliosone/legacyx/internal/domain"
)

var tracer = otel.Tracer("usecase")

// SignalChannel is the bus channel signing-session events are published on.
const SignalChannel = "legacyx:sessions"

// SigningUsecase coordinates the round trip of a signing request: one
// submission call yielding a proof artifact, and an optional await phase that
// drives a one-shot status subscription to exactly one terminal outcome.
// It imposes no timeout; bounded waiting is the caller's policy via ctx.
type SigningUsecase struct {
	provider SigningProvider
	history  HistoryRepository
	signal   SignalPublisher
}

// NewSigningUsecase wires the coordinator. history and signal are optional;
// a nil value disables recording or broadcasting respectively.
func NewSigningUsecase(provider SigningProvider, history HistoryRepository, signal SignalPublisher) *SigningUsecase {
	return &SigningUsecase{
		provider: provider,
		history:  history,
		signal:   signal,
	}
}

// Submit performs the single provider call that creates a signing session.
// A transport failure or a response without a proof artifact yields
// ProviderUnavailable and no session is created.
func (uc *SigningUsecase) Submit(ctx context.Context, req legacyx.SigningRequest, flow string) (domain.SigningSession, error) {
	ctx, span := tracer.Start(ctx, "Signing.Usecase.Submit")
	defer span.End()

	created, err := uc.provider.CreatePayload(ctx, req)
	if err != nil {
		span.RecordError(errors.Wrap(err, "payload creation failed"))
		return domain.SigningSession{}, domain.ProviderUnavailableError{Reason: err.Error()}
	}
	if created.UUID == "" || created.Refs.QRPNG == "" {
		err := domain.ProviderUnavailableError{Reason: "payload response missing proof artifact"}
		span.RecordError(err)
		return domain.SigningSession{}, err
	}

	session := domain.SigningSession{
		ID:       created.UUID,
		ProofURI: created.Refs.QRPNG,
		State:    domain.SessionPending,
	}
	uc.record(ctx, session, flow)

	return session, nil
}

// Await blocks until the session reaches a terminal state or ctx is
// cancelled. The status subscription is cancelled on every return path, and
// exactly one terminal outcome is reported per session: nil for signed and
// confirmed, RejectedError for a signer decline, SubmissionFailedError when
// the confirming fetch does not report a resolved, signed session.
func (uc *SigningUsecase) Await(ctx context.Context, session domain.SigningSession, flow string) (domain.SigningSession, error) {
	ctx, span := tracer.Start(ctx, "Signing.Usecase.Await")
	defer span.End()

	if session.ID == "" {
		return session, domain.PreconditionViolationError{Reason: "await requires a submitted session"}
	}

	events := make(chan legacyx.StatusEvent, 8)
	sub, err := uc.provider.Subscribe(session.ID, func(ev legacyx.StatusEvent) {
		if ev.Signed == nil {
			// keepalives may be dropped when the buffer is full
			select {
			case events <- ev:
			default:
			}
			return
		}
		// a decisive event must reach the loop even behind queued keepalives;
		// the stream delivers events one at a time, so one eviction frees a slot
		for {
			select {
			case events <- ev:
				return
			default:
				select {
				case <-events:
				default:
				}
			}
		}
	})
	if err != nil {
		span.RecordError(errors.Wrap(err, "status subscription failed"))
		return session, domain.ProviderUnavailableError{Reason: err.Error()}
	}
	defer sub.Cancel()

	for {
		select {
		case <-ctx.Done():
			return session, ctx.Err()
		case ev := <-events:
			if ev.Signed == nil {
				continue
			}

			if !*ev.Signed {
				session.State = domain.SessionRejected
				session.ProofURI = ""
				uc.record(ctx, session, flow)
				return session, domain.RejectedError{}
			}

			resolved, err := uc.provider.GetPayload(ctx, session.ID)
			if err != nil || !resolved.Meta.Resolved || !resolved.Meta.Signed {
				if err != nil {
					span.RecordError(errors.Wrap(err, "resolved session fetch failed"))
				}
				session.State = domain.SessionFailed
				uc.record(ctx, session, flow)
				return session, domain.SubmissionFailedError{}
			}

			session.State = domain.SessionSigned
			uc.record(ctx, session, flow)
			return session, nil
		}
	}
}

func (uc *SigningUsecase) record(ctx context.Context, session domain.SigningSession, flow string) {
	if uc.history != nil {
		if err := uc.history.SaveSession(ctx, session, flow); err != nil {
			slog.Warn("failed to record signing session",
				slog.String("session", session.ID),
				slog.String("error", err.Error()),
				slog.String("module", "signing"),
			)
		}
	}
	if uc.signal != nil {
		event := legacyx.Event{
			SessionID: session.ID,
			Flow:      flow,
			State:     session.State,
		}
		if err := uc.signal.Publish(ctx, SignalChannel, event); err != nil {
			slog.Warn("failed to publish session event",
				slog.String("session", session.ID),
				slog.String("error", err.Error()),
				slog.String("module", "signing"),
			)
		}
	}
}
