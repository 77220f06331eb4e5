package oauth2

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hubspot-proxy/internal/circuitbreaker"
	"hubspot-proxy/internal/common/errors"
	"hubspot-proxy/internal/common/logging"
	"hubspot-proxy/internal/locks"
)

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func newTokenServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func newTestGateway(store *TokenStore, tokenURL string, opts ...GatewayOption) *Gateway {
	return NewGateway(Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost:3000/auth/callback",
		AuthURL:      "https://app.hubspot.com/oauth/authorize",
		TokenURL:     tokenURL,
	}, store, opts...)
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{ClientID: "id", ClientSecret: "secret", RedirectURL: "http://localhost/cb"}
	assert.NoError(t, valid.Validate())

	missingSecret := valid
	missingSecret.ClientSecret = ""
	assert.Error(t, missingSecret.Validate())

	missingRedirect := valid
	missingRedirect.RedirectURL = ""
	assert.Error(t, missingRedirect.Validate())
}

func TestGateway_AuthorizationURL(t *testing.T) {
	store, _ := newClockedStore()
	gateway := newTestGateway(store, DefaultTokenURL)

	parsed, err := url.Parse(gateway.AuthorizationURL())
	require.NoError(t, err)

	assert.Equal(t, "app.hubspot.com", parsed.Host)
	assert.Equal(t, "/oauth/authorize", parsed.Path)
	query := parsed.Query()
	assert.Equal(t, "client-id", query.Get("client_id"))
	assert.Equal(t, "http://localhost:3000/auth/callback", query.Get("redirect_uri"))
	assert.Equal(t, "crm.objects.contacts.read crm.objects.companies.read crm.objects.deals.read", query.Get("scope"))
}

func TestGateway_ExchangeCode(t *testing.T) {
	var calls int32
	server := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "abc123", r.PostForm.Get("code"))
		assert.Equal(t, "client-id", r.PostForm.Get("client_id"))
		assert.Equal(t, "client-secret", r.PostForm.Get("client_secret"))
		assert.Equal(t, "http://localhost:3000/auth/callback", r.PostForm.Get("redirect_uri"))

		writeJSON(w, http.StatusOK, tokenResponse{AccessToken: "A1", RefreshToken: "R1", ExpiresIn: 1800, TokenType: "bearer"})
	})

	store, _ := newClockedStore()
	gateway := newTestGateway(store, server.URL)
	ctx := context.Background()

	tokens, err := gateway.ExchangeCode(ctx, "  abc123 ")
	require.NoError(t, err)
	assert.Equal(t, &Tokens{AccessToken: "A1", RefreshToken: "R1", ExpiresIn: 1800, TokenType: "bearer"}, tokens)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))

	token, ok, err := store.AccessToken(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "A1", token)
}

func TestGateway_ExchangeCode_Blank(t *testing.T) {
	server := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("token endpoint must not be called")
	})

	store, _ := newClockedStore()
	gateway := newTestGateway(store, server.URL)

	for _, code := range []string{"", "   "} {
		_, err := gateway.ExchangeCode(context.Background(), code)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
		assert.Contains(t, err.Error(), "Authorization code required")
	}
}

func TestGateway_ExchangeCode_Rejected(t *testing.T) {
	server := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"status":  "BAD_AUTH_CODE",
			"message": "missing or invalid auth code",
		})
	})

	store, _ := newClockedStore()
	ctx := context.Background()
	require.NoError(t, store.SetTokens(ctx, "A0", "R0", 3600))
	gateway := newTestGateway(store, server.URL)

	_, err := gateway.ExchangeCode(ctx, "stale")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeUpstream))
	assert.Equal(t, http.StatusBadRequest, errors.StatusCode(err))
	appErr, _ := errors.As(err)
	assert.Equal(t, "missing or invalid auth code", appErr.Message)

	token, _, _ := store.AccessToken(ctx)
	assert.Equal(t, "A0", token, "a rejected exchange leaves the store untouched")
}

func TestGateway_RefreshAccessToken_NoRefreshToken(t *testing.T) {
	store, _ := newClockedStore()
	gateway := newTestGateway(store, "http://127.0.0.1:0")

	_, err := gateway.RefreshAccessToken(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeAuth))
	assert.Contains(t, err.Error(), "No refresh token. Please login at /auth/login")
}

func TestGateway_RefreshAccessToken_RotatesRefreshToken(t *testing.T) {
	server := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "R1", r.PostForm.Get("refresh_token"))
		writeJSON(w, http.StatusOK, tokenResponse{AccessToken: "A2", RefreshToken: "R2", ExpiresIn: 1800})
	})

	store, _ := newClockedStore()
	ctx := context.Background()
	require.NoError(t, store.SetTokens(ctx, "A1", "R1", 0))
	gateway := newTestGateway(store, server.URL)

	token, err := gateway.RefreshAccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "A2", token)

	refresh, _, _ := store.RefreshToken(ctx)
	assert.Equal(t, "R2", refresh)
}

func TestGateway_RefreshAccessToken_KeepsRefreshTokenWhenOmitted(t *testing.T) {
	server := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, tokenResponse{AccessToken: "A2", ExpiresIn: 1800})
	})

	store, _ := newClockedStore()
	ctx := context.Background()
	require.NoError(t, store.SetTokens(ctx, "A1", "R1", 0))
	gateway := newTestGateway(store, server.URL)

	_, err := gateway.RefreshAccessToken(ctx)
	require.NoError(t, err)

	refresh, ok, _ := store.RefreshToken(ctx)
	assert.True(t, ok)
	assert.Equal(t, "R1", refresh)
}

func TestGateway_RefreshAccessToken_FailureClearsStore(t *testing.T) {
	server := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"status":  "BAD_REFRESH_TOKEN",
			"message": "missing or unknown refresh token",
		})
	})

	store, _ := newClockedStore()
	ctx := context.Background()
	require.NoError(t, store.SetTokens(ctx, "A1", "R1", 0))
	gateway := newTestGateway(store, server.URL)

	_, err := gateway.RefreshAccessToken(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeAuth))
	assert.Contains(t, err.Error(), "missing or unknown refresh token")
	assert.Contains(t, err.Error(), "/auth/login")

	authenticated, err := store.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.False(t, authenticated)

	_, ok, err := store.RefreshToken(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGateway_ValidAccessToken_Cached(t *testing.T) {
	server := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("token endpoint must not be called")
	})

	store, _ := newClockedStore()
	ctx := context.Background()
	require.NoError(t, store.SetTokens(ctx, "A1", "R1", 3600))
	gateway := newTestGateway(store, server.URL)

	token, err := gateway.ValidAccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "A1", token)
}

func TestGateway_ValidAccessToken_RefreshesOnce(t *testing.T) {
	var calls int32
	server := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(50 * time.Millisecond)
		writeJSON(w, http.StatusOK, tokenResponse{AccessToken: "A2", RefreshToken: "R2", ExpiresIn: 1800})
	})

	store, _ := newClockedStore()
	ctx := context.Background()
	require.NoError(t, store.SetTokens(ctx, "A1", "R1", 0))
	gateway := newTestGateway(store, server.URL)

	const callers = 10
	start := make(chan struct{})
	results := make([]string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			token, err := gateway.ValidAccessToken(ctx)
			assert.NoError(t, err)
			results[i] = token
		}(i)
	}
	close(start)
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	for _, token := range results {
		assert.Equal(t, "A2", token)
	}
}

func TestGateway_ValidAccessToken_Unauthenticated(t *testing.T) {
	store, _ := newClockedStore()
	gateway := newTestGateway(store, "http://127.0.0.1:0")

	_, err := gateway.ValidAccessToken(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeAuth))
}

func TestGateway_ValidAccessToken_SharedAcrossInstances(t *testing.T) {
	var calls int32
	server := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(50 * time.Millisecond)
		writeJSON(w, http.StatusOK, tokenResponse{AccessToken: "A2", RefreshToken: "R2", ExpiresIn: 1800})
	})

	redisClient, _ := newRedisClient(t)
	locker, err := locks.NewRedsyncManager(redisClient)
	require.NoError(t, err)

	ctx := context.Background()
	seed := NewTokenStore(NewRedisRepository(redisClient))
	require.NoError(t, seed.SetTokens(ctx, "A1", "R1", 0))

	gateways := []*Gateway{
		newTestGateway(NewTokenStore(NewRedisRepository(redisClient)), server.URL, WithLocker(locker)),
		newTestGateway(NewTokenStore(NewRedisRepository(redisClient)), server.URL, WithLocker(locker)),
	}

	var wg sync.WaitGroup
	for _, gateway := range gateways {
		wg.Add(1)
		go func(g *Gateway) {
			defer wg.Done()
			token, err := g.ValidAccessToken(ctx)
			assert.NoError(t, err)
			assert.Equal(t, "A2", token)
		}(gateway)
	}
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&calls), "the second instance reuses the first one's refresh")
}

func TestGateway_CircuitBreaker(t *testing.T) {
	var calls int32
	server := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusBadGateway, map[string]string{"message": "upstream unavailable"})
	})

	cb := circuitbreaker.NewGoBreaker("test-oauth", circuitbreaker.Config{
		MaxFailures:           1,
		Timeout:               time.Minute,
		MaxConcurrentRequests: 1,
	}, logging.GetGlobalLogger())

	store, _ := newClockedStore()
	gateway := newTestGateway(store, server.URL, WithCircuitBreaker(cb))

	for i := 0; i < 3; i++ {
		_, err := gateway.ExchangeCode(context.Background(), "abc")
		assert.True(t, errors.IsType(err, errors.ErrTypeUpstream))
	}
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestGateway_LogoutAndStatus(t *testing.T) {
	store, _ := newClockedStore()
	ctx := context.Background()
	require.NoError(t, store.SetTokens(ctx, "A1", "R1", 3600))
	gateway := newTestGateway(store, DefaultTokenURL)

	authenticated, err := gateway.Status(ctx)
	require.NoError(t, err)
	assert.True(t, authenticated)

	require.NoError(t, gateway.Logout(ctx))

	authenticated, err = gateway.Status(ctx)
	require.NoError(t, err)
	assert.False(t, authenticated)
}
