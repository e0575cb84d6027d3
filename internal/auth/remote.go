package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// RemoteVerifier resolves bearer tokens against a GoTrue-compatible auth
// service (GET {base}/auth/v1/user). A 401/403 from the service means the
// token is invalid; any other non-200 is a transport failure, still surfaced
// as ErrUnauthenticated because no identity was resolved.
type RemoteVerifier struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
}

// NewRemoteVerifier creates a RemoteVerifier for the given auth service.
// anonKey is sent as the service's public apikey header; it may be empty for
// providers that don't require one.
func NewRemoteVerifier(baseURL, anonKey string) *RemoteVerifier {
	return &RemoteVerifier{
		baseURL:    strings.TrimRight(baseURL, "/"),
		anonKey:    anonKey,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

type remoteUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (v *RemoteVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrUnauthenticated
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return Identity{}, fmt.Errorf("creating auth request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if v.anonKey != "" {
		req.Header.Set("apikey", v.anonKey)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: auth service unreachable: %v", ErrUnauthenticated, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Identity{}, fmt.Errorf("%w: auth service returned %d", ErrUnauthenticated, resp.StatusCode)
	}

	var user remoteUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return Identity{}, fmt.Errorf("%w: decoding auth response: %v", ErrUnauthenticated, err)
	}
	if user.ID == "" {
		return Identity{}, ErrUnauthenticated
	}

	return Identity{UserID: user.ID, Email: user.Email}, nil
}
