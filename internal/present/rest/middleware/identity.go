package middleware

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/hliosone/legacyx/internal/domain"
	"github.com/hliosone/legacyx/internal/usecase"
)

var tracer = otel.Tracer("identity")

// IdentityMiddleware resolves the connected wallet identity once per request
// and attaches the address to the request context. Handlers read it as the
// default requester address; they never mutate it.
type IdentityMiddleware struct {
	session *usecase.SessionUsecase
}

func NewIdentityMiddleware(session *usecase.SessionUsecase) *IdentityMiddleware {
	return &IdentityMiddleware{
		session: session,
	}
}

func (m *IdentityMiddleware) ResolveIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Identity.Middleware.ResolveIdentity")
		defer span.End()

		identity := m.session.Current()
		if identity.Present() {
			ctx = context.WithValue(ctx, domain.RequesterAddressCtxKey, identity.Address)
			span.SetAttributes(attribute.String("RequesterAddress", identity.Address))
		}

		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// RequesterAddress extracts the resolved wallet address from ctx, if any.
func RequesterAddress(ctx context.Context) string {
	address, _ := ctx.Value(domain.RequesterAddressCtxKey).(string)
	return address
}
