package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/hliosone/legacyx"
	"github.com/hliosone/legacyx/internal/domain"
	"github.com/hliosone/legacyx/internal/present/rest/middleware"
	"github.com/hliosone/legacyx/internal/present/rest/presenter"
	"github.com/hliosone/legacyx/internal/service"
	"github.com/hliosone/legacyx/internal/usecase"
)

// defaultSettleAwait bounds a background settlement wait when no limit is
// configured.
const defaultSettleAwait = 15 * time.Minute

// Handler is the REST boundary the presentation layer talks to. It holds no
// flow state of its own: every route maps onto one orchestrator operation.
// Background settlement waits derive from awaitCtx so Close stops them all.
type Handler struct {
	config      domain.Config
	session     *usecase.SessionUsecase
	fee         *usecase.FeeUsecase
	escrow      *usecase.EscrowUsecase
	credential  *usecase.CredentialUsecase
	contract    *usecase.ContractUsecase
	certificate *usecase.CertificateUsecase
	signal      *service.SignalService

	awaitCtx  context.Context
	awaitStop context.CancelFunc
}

func NewHandler(
	config domain.Config,
	session *usecase.SessionUsecase,
	fee *usecase.FeeUsecase,
	escrow *usecase.EscrowUsecase,
	credential *usecase.CredentialUsecase,
	contract *usecase.ContractUsecase,
	certificate *usecase.CertificateUsecase,
	signal *service.SignalService,
) *Handler {
	awaitCtx, awaitStop := context.WithCancel(context.Background())
	return &Handler{
		config:      config,
		session:     session,
		fee:         fee,
		escrow:      escrow,
		credential:  credential,
		contract:    contract,
		certificate: certificate,
		signal:      signal,
		awaitCtx:    awaitCtx,
		awaitStop:   awaitStop,
	}
}

// Close abandons all background settlement waits, cancelling their provider
// subscriptions. Safe to call more than once.
func (h *Handler) Close() {
	h.awaitStop()
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	mw := middleware.NewIdentityMiddleware(h.session)
	api := e.Group("/api/v1", mw.ResolveIdentity)

	api.GET("/session", h.handleSession)
	api.POST("/session/logout", h.handleLogout)
	api.POST("/fees/request", h.handleFeeRequest)
	api.POST("/fees/verify", h.handleFeeVerify)
	api.POST("/escrow/provision", h.handleEscrowProvision)
	api.POST("/contracts/activate", h.handleContractActivate)
	api.GET("/contracts", h.handleContractList)
	api.GET("/certificates/verify", h.handleCertificateVerify)
	api.POST("/certificates/issue", h.handleCertificateIssue)
	api.POST("/claims", h.handleClaim)

	e.GET("/realtime", h.handleRealtime)
}

// flowError maps the orchestrator error taxonomy onto HTTP statuses,
// keeping backend text verbatim for user display.
func flowError(c echo.Context, err error) error {
	var rejected domain.BackendRejectedError
	switch {
	case errors.Is(err, domain.ErrPrecondition):
		return presenter.BadRequest(c, err)
	case errors.As(err, &rejected):
		return presenter.UnprocessableEntity(c, rejected.Message)
	case errors.Is(err, domain.ErrBackendUnavailable), errors.Is(err, domain.ErrProviderUnavailable):
		return presenter.BadGateway(c, err)
	case errors.Is(err, domain.ErrRejected):
		return presenter.Conflict(c, err)
	default:
		return presenter.InternalError(c, err)
	}
}

func (h *Handler) handleSession(c echo.Context) error {
	identity := h.session.Current()
	if !identity.Present() {
		return presenter.OK(c, echo.Map{"connected": false})
	}
	return presenter.OK(c, echo.Map{"connected": true, "address": identity.Address})
}

func (h *Handler) handleLogout(c echo.Context) error {
	if err := h.session.Logout(c.Request().Context()); err != nil {
		return flowError(c, err)
	}
	return presenter.OK(c, echo.Map{"connected": false})
}

func (h *Handler) handleFeeRequest(c echo.Context) error {
	session, err := h.fee.RequestFeePayment(c.Request().Context())
	if err != nil {
		return flowError(c, err)
	}
	return presenter.OK(c, session)
}

type feeVerifyRequest struct {
	PayerAddress string `json:"payerAddress"`
}

func (h *Handler) handleFeeVerify(c echo.Context) error {
	ctx := c.Request().Context()

	var req feeVerifyRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	payer := req.PayerAddress
	if payer == "" {
		payer = middleware.RequesterAddress(ctx)
	}
	if payer == "" {
		return presenter.Unauthorized(c, "no wallet connected")
	}

	received, err := h.fee.VerifyFeeReceived(ctx, payer)
	if err != nil {
		return flowError(c, err)
	}
	return presenter.OK(c, echo.Map{"received": received})
}

func (h *Handler) handleEscrowProvision(c echo.Context) error {
	result, err := h.escrow.Provision(c.Request().Context())
	if err != nil {
		return flowError(c, err)
	}
	return presenter.OK(c, result)
}

type activateRequest struct {
	TestatorAddress  string `json:"testatorAddress"`
	InheritorAddress string `json:"inheritorAddress"`
	EscrowAddress    string `json:"escrowAddress"`
}

func (h *Handler) handleContractActivate(c echo.Context) error {
	ctx := c.Request().Context()

	var req activateRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	testator := req.TestatorAddress
	if testator == "" {
		testator = middleware.RequesterAddress(ctx)
	}

	message, err := h.contract.Activate(ctx, domain.InheritanceContract{
		Testator:  testator,
		Inheritor: req.InheritorAddress,
		Escrow:    req.EscrowAddress,
	})
	if err != nil {
		return flowError(c, err)
	}
	return presenter.Message(c, message)
}

func (h *Handler) handleContractList(c echo.Context) error {
	ctx := c.Request().Context()

	address := middleware.RequesterAddress(ctx)
	if address == "" {
		return presenter.Unauthorized(c, "no wallet connected")
	}

	contracts, err := h.contract.Contracts(ctx, address)
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, contracts)
}

func (h *Handler) handleCertificateVerify(c echo.Context) error {
	ctx := c.Request().Context()

	cred := domain.DeathCertificateCredential{
		Credential:  c.QueryParam("vc"),
		DeceasedDID: c.QueryParam("testatorDid"),
		Inheritor:   c.QueryParam("inheritorAddress"),
	}
	if cred.Inheritor == "" {
		cred.Inheritor = middleware.RequesterAddress(ctx)
	}

	valid, err := h.credential.Verify(ctx, cred)
	if err != nil {
		return flowError(c, err)
	}
	return presenter.OK(c, echo.Map{"valid": valid})
}

type claimRequest struct {
	Credential  string `json:"vc"`
	DeceasedDID string `json:"deceasedDid"`
	Amount      int64  `json:"amount"`
}

func (h *Handler) handleClaim(c echo.Context) error {
	ctx := c.Request().Context()

	var req claimRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	cred := domain.DeathCertificateCredential{
		Credential:  req.Credential,
		DeceasedDID: req.DeceasedDID,
		Inheritor:   middleware.RequesterAddress(ctx),
	}
	if cred.Inheritor == "" {
		return presenter.Unauthorized(c, "no wallet connected")
	}

	amount := req.Amount
	if amount == 0 {
		amount = h.config.ActivationAmount
	}

	session, err := h.credential.Claim(ctx, cred, amount)
	if err != nil {
		return flowError(c, err)
	}
	return presenter.OK(c, session)
}

type issueRequest struct {
	DeceasedDID string `json:"deceasedDid"`
}

func (h *Handler) handleCertificateIssue(c echo.Context) error {
	ctx := c.Request().Context()

	var req issueRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	inheritor := middleware.RequesterAddress(ctx)
	if inheritor == "" {
		return presenter.Unauthorized(c, "no wallet connected")
	}

	session, err := h.certificate.Issue(ctx, req.DeceasedDID, inheritor)
	if err != nil {
		return flowError(c, err)
	}

	// Settlement confirmation outlives the request; the outcome reaches the
	// UI through the realtime stream. The wait is bounded and dies with the
	// handler, never outliving either.
	go h.awaitCertificate(session)

	return presenter.OK(c, session)
}

func (h *Handler) settleTimeout() time.Duration {
	if h.config.SettleAwaitSeconds > 0 {
		return time.Duration(h.config.SettleAwaitSeconds) * time.Second
	}
	return defaultSettleAwait
}

func (h *Handler) awaitCertificate(session domain.SigningSession) {
	ctx, cancel := context.WithTimeout(h.awaitCtx, h.settleTimeout())
	defer cancel()

	result, err := h.certificate.Await(ctx, session)
	if err != nil {
		slog.Warn("certificate issuance did not complete",
			slog.String("session", session.ID),
			slog.String("error", err.Error()),
			slog.String("module", "rest"),
		)
		return
	}
	slog.Info("certificate issuance confirmed",
		slog.String("session", result.ID),
		slog.String("module", "rest"),
	)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (h *Handler) handleRealtime(c echo.Context) error {
	if h.signal == nil {
		return presenter.InternalError(c, fmt.Errorf("realtime stream not configured"))
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer func() {
		ws.Close()
	}()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	output := make(chan legacyx.Event)
	go func() {
		defer close(output)
		h.signal.Realtime(ctx, usecase.SignalChannel, output)
	}()

	quit := make(chan struct{})

	go func() {
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				}
				close(quit)
				return
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case <-ctx.Done():
			return nil
		case event, ok := <-output:
			if !ok {
				return nil
			}
			if err := ws.WriteJSON(event); err != nil {
				return nil
			}
		}
	}
}
