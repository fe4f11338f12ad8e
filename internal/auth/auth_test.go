package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/imadgeboyega/fitbuddy-backend/internal/common/logging"
	"github.com/imadgeboyega/fitbuddy-backend/internal/common/utils"
)

type memoryRepo struct {
	mu    sync.Mutex
	users map[string]*User
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: map[string]*User{}}
}

func (r *memoryRepo) CreateUser(_ context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == strings.ToLower(user.Email) {
			return ErrEmailAlreadyExists
		}
	}
	cp := *user
	cp.CreatedAt = time.Now()
	r.users[user.ID] = &cp
	return nil
}

func (r *memoryRepo) GetUserByEmail(_ context.Context, email string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == strings.ToLower(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *memoryRepo) GetUserByID(_ context.Context, id string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, ErrUserNotFound
}

func newTestService(repo Repository) Service {
	return NewService(repo, &Config{
		JWTSecret:         "test-secret",
		Issuer:            "fitbuddy-test",
		AccessTokenExpiry: time.Hour,
		BCryptCost:        bcrypt.MinCost,
	})
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := newTestService(repo)

	reg, err := svc.Register(ctx, &RegisterRequest{Name: " Ada ", Email: "Ada@Example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, reg.AccessToken)
	assert.Equal(t, "Bearer", reg.TokenType)
	assert.Equal(t, "Ada", reg.Name)

	stored, err := repo.GetUserByID(ctx, reg.UserID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", stored.Email)
	assert.Equal(t, "user", stored.UserType)
	assert.Equal(t, "active", stored.AccountStatus)
	assert.NotEqual(t, "secret1", stored.PasswordHash)

	login, err := svc.Login(ctx, &LoginRequest{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(ctx, login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, reg.UserID, claims.UserID)

	_, err = svc.Login(ctx, &LoginRequest{Email: "ada@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, &LoginRequest{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Register(ctx, &RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestLoginRejectsSuspendedAccount(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := newTestService(repo)

	reg, err := svc.Register(ctx, &RegisterRequest{Name: "Bo", Email: "bo@example.com", Password: "secret1"})
	require.NoError(t, err)
	repo.users[reg.UserID].AccountStatus = "suspended"

	_, err = svc.Login(ctx, &LoginRequest{Email: "bo@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestValidateTokenRejectsOtherTypes(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	token, err := utils.GenerateJWT(&utils.JWTClaims{
		UserID:    "u1",
		Type:      "refresh",
		ExpiresAt: time.Now().Add(time.Hour),
		IssuedAt:  time.Now(),
	}, "test-secret")
	require.NoError(t, err)

	_, err = svc.ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, utils.ErrInvalidToken)
}

func TestAuthenticateMiddleware(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryRepo())
	reg, err := svc.Register(ctx, &RegisterRequest{Name: "Cy", Email: "cy@example.com", Password: "secret1"})
	require.NoError(t, err)

	mw := NewMiddleware(svc)
	protected := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserIDFromContext(r.Context())
		require.True(t, ok)
		w.Write([]byte(userID))
	}))

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		status int
	}{
		{"missing header", func(r *http.Request) {}, http.StatusUnauthorized},
		{"wrong scheme", func(r *http.Request) { r.Header.Set("Authorization", "Basic abc") }, http.StatusUnauthorized},
		{"bad token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized},
		{"valid bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+reg.AccessToken) }, http.StatusOK},
		{"query token without upgrade", func(r *http.Request) {
			q := r.URL.Query()
			q.Set("token", reg.AccessToken)
			r.URL.RawQuery = q.Encode()
		}, http.StatusUnauthorized},
		{"query token on websocket upgrade", func(r *http.Request) {
			r.Header.Set("Upgrade", "websocket")
			q := r.URL.Query()
			q.Set("token", reg.AccessToken)
			r.URL.RawQuery = q.Encode()
		}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, reg.UserID, rec.Body.String())
			}
		})
	}
}

func TestHandlers(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	h := NewHandler(svc, logging.Discard())

	post := func(handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body)))
		return rec
	}

	rec := post(h.Register, `{"name":"Di","email":"di@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Success bool         `json:"success"`
		Data    AuthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Data.AccessToken)

	assert.Equal(t, http.StatusConflict, post(h.Register, `{"name":"Di","email":"di@example.com","password":"secret1"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(h.Register, `{"name":"Di","email":"not-an-email","password":"secret1"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(h.Register, `{`).Code)

	assert.Equal(t, http.StatusOK, post(h.Login, `{"email":"di@example.com","password":"secret1"}`).Code)
	assert.Equal(t, http.StatusUnauthorized, post(h.Login, `{"email":"di@example.com","password":"nope"}`).Code)
}
