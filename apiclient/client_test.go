package apiclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jrsteele09/site-admin-console/apiclient"
	"github.com/jrsteele09/site-admin-console/authmodel"
	apperrors "github.com/jrsteele09/site-admin-console/internal/errors"
	"github.com/jrsteele09/site-admin-console/token"
	"github.com/stretchr/testify/require"
)

const refreshCookie = "refresh_token"

// fakeServer is a minimal content API with cookie based refresh.
type fakeServer struct {
	*httptest.Server

	mu           sync.Mutex
	authHeaders  map[string]string
	requestIDs   []string
	hits         atomic.Int32
	refreshCount atomic.Int32
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	fs := &fakeServer{authHeaders: make(map[string]string)}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds authmodel.Credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "malformed body"})
			return
		}
		if creds.Email != "a@b.com" || creds.Password != "x" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid email or password"})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: refreshCookie, Value: "r1", Path: "/api/auth", HttpOnly: true})
		writeJSON(w, http.StatusOK, map[string]string{"accessToken": "tok1"})
	})
	mux.HandleFunc("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(refreshCookie); err != nil || c.Value == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "no session"})
			return
		}
		fs.refreshCount.Add(1)
		writeJSON(w, http.StatusOK, map[string]string{"accessToken": "tok2"})
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: refreshCookie, Value: "", Path: "/api/auth", MaxAge: -1})
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer tok") {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "missing token"})
			return
		}
		writeJSON(w, http.StatusOK, authmodel.Profile{ID: "user-1", Email: "a@b.com", Roles: []string{"admin"}})
	})
	mux.HandleFunc("GET /api/pages", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"items": []map[string]any{{"id": 7, "title": "Home"}, {"id": "8", "title": "About"}},
			"total": 42,
		})
	})
	mux.HandleFunc("GET /api/pages/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "7" {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "page not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": 7, "title": "Home", "order": 1})
	})
	mux.HandleFunc("GET /api/settings", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	})

	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fs.hits.Add(1)
		fs.mu.Lock()
		fs.authHeaders[r.Method+" "+r.URL.Path] = r.Header.Get("Authorization")
		fs.requestIDs = append(fs.requestIDs, r.Header.Get("X-Request-ID"))
		fs.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(fs.Close)
	return fs
}

func (fs *fakeServer) authHeader(route string) string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.authHeaders[route]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newClient(t *testing.T, fs *fakeServer) (*apiclient.Client, *token.Store) {
	t.Helper()
	store := token.NewStore()
	c, err := apiclient.New(fs.URL+"/api/", store)
	require.NoError(t, err)
	return c, store
}

func TestNew_InvalidBaseURL(t *testing.T) {
	_, err := apiclient.New("not a url", token.NewStore())
	require.Error(t, err)

	_, err = apiclient.New("/relative/only", token.NewStore())
	require.Error(t, err)
}

func TestClient_BaseURL(t *testing.T) {
	c, err := apiclient.New("https://cms.example.com/api/", token.NewStore())
	require.NoError(t, err)
	require.Equal(t, "https://cms.example.com/api", c.BaseURL())
}

func TestClient_LoginRefreshLogout(t *testing.T) {
	fs := newFakeServer(t)
	c, store := newClient(t, fs)
	ctx := context.Background()

	// No cookie yet: nothing to recover.
	_, err := c.Refresh(ctx)
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)

	resp, err := c.Login(ctx, authmodel.Credentials{Email: "a@b.com", Password: "x"})
	require.NoError(t, err)
	require.Equal(t, "tok1", resp.AccessToken)

	// The refresh cookie set by login is sent back by the jar.
	resp, err = c.Refresh(ctx)
	require.NoError(t, err)
	require.Equal(t, "tok2", resp.AccessToken)
	require.Equal(t, int32(1), fs.refreshCount.Load())

	store.Set(resp.AccessToken)
	require.NoError(t, c.Logout(ctx))
	require.Equal(t, "Bearer tok2", fs.authHeader("POST /api/auth/logout"))

	// Logout expired the cookie.
	_, err = c.Refresh(ctx)
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestClient_LoginInvalidCredentials(t *testing.T) {
	fs := newFakeServer(t)
	c, _ := newClient(t, fs)

	_, err := c.Login(context.Background(), authmodel.Credentials{Email: "a@b.com", Password: "wrong"})
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	var apiErr *apiclient.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Contains(t, apiErr.Error(), "Invalid email or password")
}

func TestClient_LoginValidatesBeforeSending(t *testing.T) {
	fs := newFakeServer(t)
	c, _ := newClient(t, fs)

	_, err := c.Login(context.Background(), authmodel.Credentials{Email: "nope", Password: ""})
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	require.Zero(t, fs.hits.Load())
}

func TestClient_LogoutWithoutTokenIsAnonymous(t *testing.T) {
	fs := newFakeServer(t)
	c, _ := newClient(t, fs)

	require.NoError(t, c.Logout(context.Background()))
	require.Equal(t, "", fs.authHeader("POST /api/auth/logout"))
}

func TestClient_LogoutWhileTokenIsCleared(t *testing.T) {
	fs := newFakeServer(t)
	c, store := newClient(t, fs)

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			default:
				store.Set("tok1")
				store.Clear()
			}
		}
	}()

	// Whatever the store holds when Logout runs, the request is sent.
	for i := 0; i < 50; i++ {
		require.NoError(t, c.Logout(context.Background()))
	}
	close(stop)
	<-done
	require.Equal(t, int32(50), fs.hits.Load())
}

func TestClient_AuthenticatedRequestsNeedToken(t *testing.T) {
	fs := newFakeServer(t)
	c, store := newClient(t, fs)
	ctx := context.Background()

	_, err := c.Me(ctx)
	require.ErrorIs(t, err, apperrors.ErrNoAccessToken)
	require.Zero(t, fs.hits.Load())

	store.Set("tok1")
	profile, err := c.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "user-1", profile.ID)
	require.Equal(t, []string{"admin"}, profile.Roles)
	require.Equal(t, "Bearer tok1", fs.authHeader("GET /api/auth/me"))
}

func TestClient_ListAndGet(t *testing.T) {
	fs := newFakeServer(t)
	c, store := newClient(t, fs)
	store.Set("tok1")
	ctx := context.Background()

	result, err := c.List(ctx, apiclient.KindPages, apiclient.ListOptions{})
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	require.Equal(t, "7", result.Items[0].ID())
	require.Equal(t, "8", result.Items[1].ID())
	require.Equal(t, "Home", result.Items[0].Title())
	require.Equal(t, 42, result.Total)
	require.Equal(t, 1, result.Page)
	require.Equal(t, 20, result.PageSize)
	require.Equal(t, 3, result.Pages())

	item, err := c.Get(ctx, apiclient.KindPages, "7")
	require.NoError(t, err)
	require.Equal(t, "Home", item.Title())

	_, err = c.Get(ctx, apiclient.KindPages, "99")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = c.Get(ctx, apiclient.KindPages, " ")
	require.ErrorIs(t, err, apperrors.ErrInvalidRequest)
}

func TestClient_ServerErrorWithPlainBody(t *testing.T) {
	fs := newFakeServer(t)
	c, store := newClient(t, fs)
	store.Set("tok1")

	_, err := c.List(context.Background(), apiclient.KindSettings, apiclient.ListOptions{Page: 1})
	require.ErrorIs(t, err, apperrors.ErrInternal)
	require.Contains(t, err.Error(), "upstream exploded")
}

func TestClient_RequestsCarryRequestID(t *testing.T) {
	fs := newFakeServer(t)
	c, _ := newClient(t, fs)

	_, _ = c.Refresh(context.Background())
	_ = c.Logout(context.Background())

	fs.mu.Lock()
	defer fs.mu.Unlock()
	require.Len(t, fs.requestIDs, 2)
	require.NotEmpty(t, fs.requestIDs[0])
	require.NotEqual(t, fs.requestIDs[0], fs.requestIDs[1])
}

func TestParseKind(t *testing.T) {
	k, err := apiclient.ParseKind(" Pages ")
	require.NoError(t, err)
	require.Equal(t, apiclient.KindPages, k)

	_, err = apiclient.ParseKind("users")
	require.ErrorIs(t, err, apperrors.ErrUnsupported)
}

func TestItem(t *testing.T) {
	require.Equal(t, "", apiclient.Item{}.ID())
	require.Equal(t, "12", apiclient.Item{"id": float64(12)}.ID())
	require.Equal(t, "site-name", apiclient.Item{"key": "site-name"}.Title())
	require.Equal(t, "Acme", apiclient.Item{"name": "Acme", "key": "acme"}.Title())
}
