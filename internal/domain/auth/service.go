package auth

import (
	"context"
)

type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)
	// IssueSSEToken returns a short-lived token for the caller's event stream.
	IssueSSEToken(ctx context.Context) (SSETokenResponse, error)
}
