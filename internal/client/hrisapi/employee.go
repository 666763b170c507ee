package hrisapi

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
)

// EmployeeID resolves the employee id behind the client's token. The answer
// is cached per token and concurrent lookups share one request.
func (c *Client) EmployeeID(ctx context.Context) (string, error) {
	key, err := c.identityKey("employee_id")
	if err != nil {
		return "", err
	}
	if id, ok := c.cache.Get(key); ok {
		return id, nil
	}

	v, err, _ := c.lookups.Do(key, func() (interface{}, error) {
		var me employee.EmployeeResponse
		if err := c.do(ctx, http.MethodGet, "/api/v1/employees/me", nil, &me); err != nil {
			return "", fmt.Errorf("failed to resolve employee profile: %w", err)
		}
		if me.ID == "" {
			return "", fmt.Errorf("failed to resolve employee profile: %w", employee.ErrEmployeeNotFound)
		}
		c.cache.Set(key, me.ID, 0)
		return me.ID, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// identityKey scopes a cached identity to the server and the current token.
func (c *Client) identityKey(name string) (string, error) {
	tok, err := c.tokens.Token()
	if err != nil {
		return "", fmt.Errorf("failed to get access token: %w", err)
	}
	sum := sha256.Sum256([]byte(tok.AccessToken))
	return name + ":" + c.baseURL.String() + ":" + hex.EncodeToString(sum[:8]), nil
}

// ForgetIdentity drops cached identity lookups, e.g. after switching accounts.
func (c *Client) ForgetIdentity() {
	c.cache.Clear()
}
