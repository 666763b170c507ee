package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
)

const (
	testSecret   = "test-secret-key-for-jwt"
	testPassword = "password123"
)

type memoryUserRepo struct {
	users []user.User
	err   error
}

func (r memoryUserRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	if r.err != nil {
		return user.User{}, r.err
	}
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (r memoryUserRepo) GetByID(_ context.Context, id string) (user.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func newTestAuthService(t *testing.T, repoErr error) (auth.AuthService, jwt.Service) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	hashed := string(hash)
	employeeID := "emp-1"

	repo := memoryUserRepo{
		users: []user.User{
			{ID: "user-1", CompanyID: "co-1", Email: "budi@example.com", PasswordHash: &hashed, Role: user.RoleEmployee, EmployeeID: &employeeID},
			{ID: "admin-1", CompanyID: "co-1", Email: "admin@example.com", PasswordHash: &hashed, Role: user.RoleAdmin},
			{ID: "sso-1", CompanyID: "co-1", Email: "sso@example.com", Role: user.RoleEmployee},
		},
		err: repoErr,
	}
	jwtService := jwt.NewJWTService(testSecret, time.Hour, nil)
	return NewAuthService(repo, jwtService), jwtService
}

// Test Login with valid credentials
func TestAuthService_Login_Success(t *testing.T) {
	svc, jwtService := newTestAuthService(t, nil)

	response, err := svc.Login(context.Background(), auth.LoginRequest{Email: "Budi@Example.com", Password: testPassword})
	require.NoError(t, err)
	assert.NotEmpty(t, response.AccessToken)
	assert.Greater(t, response.AccessTokenExpiresIn, time.Now().Unix())
	assert.Equal(t, "employee", response.Role)
	assert.Equal(t, "emp-1", response.EmployeeID)

	token, err := jwtauth.VerifyToken(jwtService.JWTAuth(), response.AccessToken)
	require.NoError(t, err)
	p, err := auth.RequireEmployee(jwtauth.NewContext(context.Background(), token, nil))
	require.NoError(t, err)
	assert.Equal(t, "user-1", p.UserID)
	assert.Equal(t, "emp-1", p.EmployeeID)
}

func TestAuthService_Login_AdminWithoutEmployeeProfile(t *testing.T) {
	svc, _ := newTestAuthService(t, nil)

	response, err := svc.Login(context.Background(), auth.LoginRequest{Email: "admin@example.com", Password: testPassword})
	require.NoError(t, err)
	assert.Equal(t, "admin", response.Role)
	assert.Empty(t, response.EmployeeID)
}

func TestAuthService_Login_Failures(t *testing.T) {
	tests := []struct {
		name    string
		req     auth.LoginRequest
		repoErr error
		wantErr error
	}{
		{name: "wrong password", req: auth.LoginRequest{Email: "budi@example.com", Password: "nope"}, wantErr: auth.ErrInvalidCredentials},
		{name: "unknown email", req: auth.LoginRequest{Email: "ghost@example.com", Password: testPassword}, wantErr: auth.ErrInvalidCredentials},
		{name: "no password set", req: auth.LoginRequest{Email: "sso@example.com", Password: testPassword}, wantErr: auth.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestAuthService(t, tt.repoErr)
			_, err := svc.Login(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("invalid request", func(t *testing.T) {
		svc, _ := newTestAuthService(t, nil)
		_, err := svc.Login(context.Background(), auth.LoginRequest{Email: "not-an-email"})
		require.Error(t, err)
		assert.NotErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("repository failure is not reported as bad credentials", func(t *testing.T) {
		dbErr := errors.New("connection refused")
		svc, _ := newTestAuthService(t, dbErr)
		_, err := svc.Login(context.Background(), auth.LoginRequest{Email: "budi@example.com", Password: testPassword})
		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}

func TestAuthService_IssueSSEToken(t *testing.T) {
	svc, jwtService := newTestAuthService(t, nil)

	login, err := svc.Login(context.Background(), auth.LoginRequest{Email: "budi@example.com", Password: testPassword})
	require.NoError(t, err)
	token, err := jwtauth.VerifyToken(jwtService.JWTAuth(), login.AccessToken)
	require.NoError(t, err)

	sse, err := svc.IssueSSEToken(jwtauth.NewContext(context.Background(), token, nil))
	require.NoError(t, err)
	assert.Equal(t, 300, sse.ExpiresIn)

	userID, err := jwtService.ValidateSSEToken(sse.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	_, err = svc.IssueSSEToken(context.Background())
	assert.Error(t, err)
}
