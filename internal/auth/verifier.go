package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrInvalidToken is returned for tokens the identity provider rejects.
var ErrInvalidToken = errors.New("invalid or expired token")

// Identity is the caller as resolved by the external identity provider. The
// backend trusts this value as given; authorization is handled upstream.
type Identity struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// TokenVerifier resolves a bearer token into an Identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// HTTPVerifier verifies tokens against a remote identity provider endpoint:
// POST {"token": ...} -> 200 {"uid", "email", "name"}; any non-200 is treated
// as a rejected token.
type HTTPVerifier struct {
	VerifyURL  string
	HTTPClient *http.Client
}

func NewHTTPVerifier(verifyURL string) *HTTPVerifier {
	return &HTTPVerifier{
		VerifyURL:  verifyURL,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func (v *HTTPVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	body, _ := json.Marshal(map[string]string{"token": token})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.VerifyURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, ErrInvalidToken
	}

	var identity Identity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, err
	}
	if strings.TrimSpace(identity.UID) == "" {
		return nil, ErrInvalidToken
	}
	return &identity, nil
}

// StaticVerifier maps fixed tokens to identities. Test and development use
// only.
type StaticVerifier struct {
	Tokens map[string]Identity
}

func (v *StaticVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	identity, ok := v.Tokens[token]
	if !ok {
		return nil, ErrInvalidToken
	}
	return &identity, nil
}
