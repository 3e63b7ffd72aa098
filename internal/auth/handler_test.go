package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/lift-alumni/liftfund/internal/auth"
	"github.com/lift-alumni/liftfund/internal/rbac"
	"github.com/lift-alumni/liftfund/internal/shared"
	"github.com/lift-alumni/liftfund/internal/users"
)

type stubRepo struct {
	byEmail map[string]users.User
}

func (r *stubRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}

func (r *stubRepo) GetByID(ctx context.Context, id int64) (users.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return users.User{}, users.ErrNotFound
}

// commitWriter commits the session just before the first header write,
// mirroring the production session middleware in internal/app.
type commitWriter struct {
	http.ResponseWriter
	t         *testing.T
	sessions  *shared.SessionManager
	sess      *shared.Session
	ctx       context.Context
	committed bool
}

func (w *commitWriter) WriteHeader(statusCode int) {
	if !w.committed {
		w.committed = true
		require.NoError(w.t, w.sessions.Commit(w.ctx, w.ResponseWriter, w.sess))
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *commitWriter) Write(data []byte) (int, error) {
	if !w.committed {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(data)
}

func newTestServer(t *testing.T) (*httptest.Server, *stubRepo) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sessions := shared.NewSessionManager(client, "liftfund_session", "test-secret", time.Hour, false)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &stubRepo{byEmail: map[string]users.User{
		"ada@example.org": {
			ID:           7,
			Email:        "ada@example.org",
			Name:         "Ada",
			Role:         rbac.RoleTreasurer,
			PasswordHash: string(hash),
			IsActive:     true,
		},
	}}

	logger := slog.Default()
	handler := auth.NewHandler(logger, auth.NewService(repo), sessions, rbac.Middleware{Logger: logger})

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sess, err := sessions.Load(req.Context(), req)
			require.NoError(t, err)
			ctx := shared.ContextWithSession(req.Context(), sess)
			next.ServeHTTP(&commitWriter{
				ResponseWriter: w,
				t:              t,
				sessions:       sessions,
				sess:           sess,
				ctx:            ctx,
			}, req.WithContext(ctx))
		})
	})
	handler.MountRoutes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, repo
}

func login(t *testing.T, srv *httptest.Server, email, password string) *http.Response {
	t.Helper()
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	require.NoError(t, err)
	resp, err := http.Post(srv.URL+"/auth/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func TestLoginSuccess(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := login(t, srv, "ada@example.org", "correct horse")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var account struct {
		ID   int64  `json:"id"`
		Role string `json:"role"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&account))
	require.Equal(t, int64(7), account.ID)
	require.Equal(t, "treasurer", account.Role)

	var sessionCookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "liftfund_session" {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie)
	require.NotEmpty(t, sessionCookie.Value)
}

func TestLoginWrongPassword(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := login(t, srv, "ada@example.org", "wrong")
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginUnknownEmail(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := login(t, srv, "nobody@example.org", "correct horse")
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginInactiveAccount(t *testing.T) {
	srv, repo := newTestServer(t)
	u := repo.byEmail["ada@example.org"]
	u.IsActive = false
	repo.byEmail["ada@example.org"] = u

	resp := login(t, srv, "ada@example.org", "correct horse")
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginRateLimited(t *testing.T) {
	srv, _ := newTestServer(t)

	// The login group allows 10 attempts per IP per minute.
	for i := 0; i < 10; i++ {
		resp := login(t, srv, "ada@example.org", "wrong")
		resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	resp := login(t, srv, "ada@example.org", "correct horse")
	defer resp.Body.Close()
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestMeRequiresSession(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/auth/me")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMeAfterLogin(t *testing.T) {
	srv, _ := newTestServer(t)

	loginResp := login(t, srv, "ada@example.org", "correct horse")
	loginResp.Body.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/auth/me", nil)
	require.NoError(t, err)
	for _, c := range loginResp.Cookies() {
		req.AddCookie(c)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var account struct {
		Email string `json:"email"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&account))
	require.Equal(t, "ada@example.org", account.Email)
}

func TestLogoutDestroysSession(t *testing.T) {
	srv, _ := newTestServer(t)

	loginResp := login(t, srv, "ada@example.org", "correct horse")
	loginResp.Body.Close()

	logoutReq, err := http.NewRequest(http.MethodPost, srv.URL+"/auth/logout", nil)
	require.NoError(t, err)
	for _, c := range loginResp.Cookies() {
		logoutReq.AddCookie(c)
	}
	logoutResp, err := http.DefaultClient.Do(logoutReq)
	require.NoError(t, err)
	logoutResp.Body.Close()
	require.Equal(t, http.StatusOK, logoutResp.StatusCode)

	meReq, err := http.NewRequest(http.MethodGet, srv.URL+"/auth/me", nil)
	require.NoError(t, err)
	for _, c := range loginResp.Cookies() {
		meReq.AddCookie(c)
	}
	meResp, err := http.DefaultClient.Do(meReq)
	require.NoError(t, err)
	defer meResp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, meResp.StatusCode)
}
