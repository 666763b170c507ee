// Package hrisapi talks to the HRIS attendance API over HTTP.
package hrisapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/cache"
)

// Error codes the API puts in the envelope that the client reacts to.
const (
	CodeDuplicateAttempt   = "DUPLICATE_ATTEMPT"
	CodeNoLocationAssigned = "NO_LOCATION_ASSIGNED"
	CodeNotFound           = "NOT_FOUND"
)

const defaultTimeout = 30 * time.Second

type Config struct {
	BaseURL     string
	TokenSource oauth2.TokenSource
	// HTTPClient is the base client; its Transport is wrapped with bearer auth.
	HTTPClient *http.Client
	// Cache holds resolved identities such as the caller's employee id.
	Cache cache.Cache[string, string]
}

// StaticToken is a token source for a bearer token obtained at login.
func StaticToken(accessToken string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
}

type Client struct {
	baseURL *url.URL
	http    *http.Client
	tokens  oauth2.TokenSource
	cache   cache.Cache[string, string]
	lookups singleflight.Group
}

func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("hrisapi: base url is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("hrisapi: invalid base url: %w", err)
	}
	if cfg.TokenSource == nil {
		return nil, errors.New("hrisapi: token source is required")
	}

	baseClient := cfg.HTTPClient
	if baseClient == nil {
		baseClient = &http.Client{Timeout: defaultTimeout}
	}
	httpClient := *baseClient
	httpClient.Transport = &oauth2.Transport{Source: cfg.TokenSource, Base: baseClient.Transport}

	c := cfg.Cache
	if c == nil {
		c = cache.NewLRU[string, string](cache.DefaultSize, cache.DefaultTTL, nil)
	}

	return &Client{baseURL: base, http: &httpClient, tokens: cfg.TokenSource, cache: c}, nil
}

// envelope is the API's response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

// statusError is a non-2xx reply before it is mapped to a domain error.
type statusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *statusError) Error() string {
	return e.Message
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &statusError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		if decodeErr == nil && env.Error != nil {
			se.Code = env.Error.Code
			if env.Error.Message != "" {
				se.Message = env.Error.Message
			}
		}
		return se
	}
	if decodeErr != nil {
		return fmt.Errorf("failed to decode response: %w", decodeErr)
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}
