package gateway

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/hliosone/legacyx"
	"github.com/hliosone/legacyx/internal/domain"
	"github.com/hliosone/legacyx/internal/usecase"
)

// credentialCacheTTL bounds how long a positive verification is reused
// without re-asking the backend. A backend-side revocation goes unnoticed
// for at most this long; callers needing revocation to take effect
// immediately must run without memcached.
const credentialCacheTTL = time.Minute

// BackendGateway is the HTTP client for the LegacyX backend. Transport
// failures become BackendUnavailable; non-2xx responses become
// BackendRejected carrying the body text verbatim.
type BackendGateway struct {
	baseURL string
	client  *http.Client
	mc      *memcache.Client
}

// NewBackendGateway constructs the gateway. mc may be nil, which disables
// cross-process caching of positive credential verifications.
func NewBackendGateway(baseURL string, mc *memcache.Client) *BackendGateway {
	return &BackendGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: defaultTimeout,
		},
		mc: mc,
	}
}

// do performs one backend call and hands back the raw 2xx body.
func (g *BackendGateway) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, domain.BackendUnavailableError{Reason: fmt.Sprintf("encode request: %v", err)}
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return nil, domain.BackendUnavailableError{Reason: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, domain.BackendUnavailableError{Reason: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.BackendUnavailableError{Reason: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.BackendRejectedError{Message: strings.TrimSpace(string(raw))}
	}

	return raw, nil
}

type escrowResponse struct {
	EscrowAddress string `json:"escrowAddress"`
}

func (g *BackendGateway) GenerateEscrow(ctx context.Context) (string, error) {
	raw, err := g.do(ctx, http.MethodPost, "/escrow/generate", struct{}{})
	if err != nil {
		return "", err
	}

	var resp escrowResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", domain.BackendUnavailableError{Reason: fmt.Sprintf("decode escrow response: %v", err)}
	}
	if resp.EscrowAddress == "" {
		return "", domain.BackendUnavailableError{Reason: "escrow response missing address"}
	}
	return resp.EscrowAddress, nil
}

type feeVerifyRequest struct {
	PayerAddress string `json:"payerAddress"`
}

func (g *BackendGateway) VerifyFee(ctx context.Context, payerAddress string) (bool, error) {
	raw, err := g.do(ctx, http.MethodPost, "/fees/verify", feeVerifyRequest{PayerAddress: payerAddress})
	if err != nil {
		return false, err
	}

	var received bool
	if err := json.Unmarshal(raw, &received); err != nil {
		return false, domain.BackendUnavailableError{Reason: fmt.Sprintf("decode fee response: %v", err)}
	}
	return received, nil
}

type activateRequest struct {
	TestatorAddress  string `json:"testatorAddress"`
	InheritorAddress string `json:"inheritorAddress"`
	EscrowAddress    string `json:"escrowAddress"`
}

func (g *BackendGateway) ActivateContract(ctx context.Context, contract domain.InheritanceContract) (string, error) {
	raw, err := g.do(ctx, http.MethodPost, "/contracts/activate", activateRequest{
		TestatorAddress:  contract.Testator,
		InheritorAddress: contract.Inheritor,
		EscrowAddress:    contract.Escrow,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

type prepareRequest struct {
	DeceasedDID string `json:"deceasedDid"`
	Inheritor   string `json:"inheritor"`
}

type prepareResponse struct {
	SignablePayload json.RawMessage `json:"signablePayload"`
}

func (g *BackendGateway) PrepareCertificate(ctx context.Context, deceasedDID, inheritor string) (legacyx.SigningRequest, error) {
	raw, err := g.do(ctx, http.MethodPost, "/certificates/prepare", prepareRequest{
		DeceasedDID: deceasedDID,
		Inheritor:   inheritor,
	})
	if err != nil {
		return legacyx.SigningRequest{}, err
	}

	var resp prepareResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return legacyx.SigningRequest{}, domain.BackendUnavailableError{Reason: fmt.Sprintf("decode certificate response: %v", err)}
	}
	if len(resp.SignablePayload) == 0 {
		return legacyx.SigningRequest{}, domain.BackendUnavailableError{Reason: "certificate response missing signable payload"}
	}
	return legacyx.SigningRequest{TxJSON: resp.SignablePayload}, nil
}

type verifyResponse struct {
	Message string `json:"message"`
}

// VerifyCertificate asks the backend verifier. Validity is the presence of a
// message in the response; its absence is invalid, not an error.
func (g *BackendGateway) VerifyCertificate(ctx context.Context, cred domain.DeathCertificateCredential) (bool, error) {
	cacheKey := credentialCacheKey(cred)
	if g.mc != nil {
		if _, err := g.mc.Get(cacheKey); err == nil {
			return true, nil
		}
	}

	query := url.Values{}
	query.Set("vc", cred.Credential)
	query.Set("testatorDid", cred.DeceasedDID)
	query.Set("inheritorAddress", cred.Inheritor)

	raw, err := g.do(ctx, http.MethodGet, "/certificates/verify?"+query.Encode(), nil)
	if err != nil {
		return false, err
	}

	var resp verifyResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return false, domain.BackendUnavailableError{Reason: fmt.Sprintf("decode verification response: %v", err)}
	}

	valid := resp.Message != ""
	if valid && g.mc != nil {
		_ = g.mc.Set(&memcache.Item{
			Key:        cacheKey,
			Value:      []byte("1"),
			Expiration: int32(credentialCacheTTL / time.Second),
		})
	}
	return valid, nil
}

func credentialCacheKey(cred domain.DeathCertificateCredential) string {
	sum := sha256.Sum256([]byte(cred.Credential + "|" + cred.DeceasedDID + "|" + cred.Inheritor))
	return "vc:" + hex.EncodeToString(sum[:])
}

var _ usecase.Backend = (*BackendGateway)(nil)
