package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/patrickmn/go-cache"

	"github.com/hliosone/legacyx"
	"github.com/hliosone/legacyx/internal/usecase"
)

const (
	defaultTimeout = 10 * time.Second
	apiKeyHeader   = "X-API-Key"
)

// SigningProviderGateway talks to the wallet signing provider: payload
// creation and resolution over HTTP, status and identity events over
// websocket. Resolved payloads are cached since a resolved session is final.
type SigningProviderGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
	dialer  *websocket.Dialer
	cache   *cache.Cache
}

func NewSigningProviderGateway(baseURL, apiKey string) *SigningProviderGateway {
	httpClient := http.Client{
		Timeout: defaultTimeout,
	}

	g := &SigningProviderGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &httpClient,
		dialer:  websocket.DefaultDialer,
		cache:   cache.New(10*time.Minute, 15*time.Minute),
	}
	httpClient.Transport = g
	return g
}

func (g *SigningProviderGateway) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set(apiKeyHeader, g.apiKey)
	return http.DefaultTransport.RoundTrip(req)
}

func (g *SigningProviderGateway) request(ctx context.Context, method, path string, body, response any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to perform request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if response == nil {
		return nil
	}
	err = json.NewDecoder(resp.Body).Decode(response)
	if err != nil {
		return fmt.Errorf("failed to decode response: %v", err)
	}
	return nil
}

type sessionResponse struct {
	Account string `json:"account"`
}

func (g *SigningProviderGateway) CurrentAccount(ctx context.Context) (string, error) {
	var session sessionResponse
	if err := g.request(ctx, http.MethodGet, "/session", nil, &session); err != nil {
		return "", err
	}
	return session.Account, nil
}

func (g *SigningProviderGateway) Logout(ctx context.Context) error {
	return g.request(ctx, http.MethodDelete, "/session", nil, nil)
}

func (g *SigningProviderGateway) CreatePayload(ctx context.Context, req legacyx.SigningRequest) (legacyx.CreatedPayload, error) {
	var created legacyx.CreatedPayload
	if err := g.request(ctx, http.MethodPost, "/payload", req, &created); err != nil {
		return legacyx.CreatedPayload{}, err
	}
	if created.UUID != "" && created.Refs.WebsocketStatus != "" {
		g.cache.Set("ws:"+created.UUID, created.Refs.WebsocketStatus, cache.DefaultExpiration)
	}
	return created, nil
}

func (g *SigningProviderGateway) GetPayload(ctx context.Context, sessionID string) (legacyx.ResolvedPayload, error) {
	cacheKey := "payload:" + sessionID
	if x, found := g.cache.Get(cacheKey); found {
		return x.(legacyx.ResolvedPayload), nil
	}

	var resolved legacyx.ResolvedPayload
	if err := g.request(ctx, http.MethodGet, "/payload/"+sessionID, nil, &resolved); err != nil {
		return legacyx.ResolvedPayload{}, err
	}

	if resolved.Meta.Resolved {
		g.cache.Set(cacheKey, resolved, cache.DefaultExpiration)
	}
	return resolved, nil
}

// wsURL rewrites the HTTP base into the websocket scheme.
func (g *SigningProviderGateway) wsURL(path string) string {
	url := g.baseURL + path
	if strings.HasPrefix(url, "https://") {
		return "wss://" + strings.TrimPrefix(url, "https://")
	}
	if strings.HasPrefix(url, "http://") {
		return "ws://" + strings.TrimPrefix(url, "http://")
	}
	return url
}

// wsSubscription is the cancellable handle returned by every subscribe call.
// Cancel is idempotent: closing the connection terminates the read loop.
type wsSubscription struct {
	conn *websocket.Conn
	once sync.Once
}

func (s *wsSubscription) Cancel() {
	s.once.Do(func() {
		s.conn.Close()
	})
}

func (g *SigningProviderGateway) subscribe(url string, fn func(message []byte)) (usecase.Subscription, error) {
	header := http.Header{}
	header.Set(apiKeyHeader, g.apiKey)

	conn, resp, err := g.dialer.Dial(url, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open event stream: %v", err)
	}

	sub := &wsSubscription{conn: conn}

	go func() {
		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				// closed by Cancel or by the provider; either way we are done
				return
			}
			fn(message)
		}
	}()

	return sub, nil
}

// Subscribe opens the one-shot status stream for a signing session. The
// stream endpoint announced on payload creation wins over the derived URL.
func (g *SigningProviderGateway) Subscribe(sessionID string, fn func(legacyx.StatusEvent)) (usecase.Subscription, error) {
	url := g.wsURL("/payload/" + sessionID + "/status")
	if x, found := g.cache.Get("ws:" + sessionID); found {
		url = x.(string)
	}
	return g.subscribe(url, func(message []byte) {
		var event legacyx.StatusEvent
		if err := json.Unmarshal(message, &event); err != nil {
			return
		}
		fn(event)
	})
}

type identityEvent struct {
	Event string `json:"event"`
}

// OnSessionChange streams wallet identity events: auth success, session
// retrieval and provider errors.
func (g *SigningProviderGateway) OnSessionChange(fn func(event string)) (usecase.Subscription, error) {
	return g.subscribe(g.wsURL("/events"), func(message []byte) {
		var event identityEvent
		if err := json.Unmarshal(message, &event); err != nil {
			return
		}
		if event.Event != "" {
			fn(event.Event)
		}
	})
}

var _ usecase.SigningProvider = (*SigningProviderGateway)(nil)
