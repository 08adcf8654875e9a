package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"Sixfoot/internal/repo/repotest"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newEnv() *Authenv {
	return &Authenv{JWTkey: []byte("test-key"), Repo: repotest.NewMemory()}
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie set", cookieName)
	return nil
}

func post(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	return rec
}

func TestRegisterAndLogin(t *testing.T) {
	env := newEnv()

	rec := post(env.RegisterHandler, `{"login":" surveyor ","email":"s@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	cookie := sessionCookie(t, rec)
	assert.True(t, cookie.HttpOnly)

	id, login, err := env.ParseToken(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, 1, id)
	assert.Equal(t, "surveyor", login)

	rec = post(env.RegisterHandler, `{"login":"surveyor","email":"s@example.com","password":"secret1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = post(env.AuthHandler, `{"login":"surveyor","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	sessionCookie(t, rec)

	rec = post(env.AuthHandler, `{"login":"surveyor","password":"wrong-pass"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = post(env.AuthHandler, `{"login":"nobody","password":"secret1"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterValidation(t *testing.T) {
	env := newEnv()
	for name, body := range map[string]string{
		"bad json":       `{`,
		"missing email":  `{"login":"a","password":"secret1"}`,
		"short password": `{"login":"a","email":"a@example.com","password":"123"}`,
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, post(env.RegisterHandler, body).Code)
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	env := newEnv()
	var gotID int
	var gotLogin string
	next := env.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = UserID(r.Context())
		gotLogin = UserLogin(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("no cookie", func(t *testing.T) {
		rec := httptest.NewRecorder()
		next.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := env.NewToken(7, "surveyor")
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
		rec := httptest.NewRecorder()
		next.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 7, gotID)
		assert.Equal(t, "surveyor", gotLogin)
	})

	t.Run("wrong key", func(t *testing.T) {
		other := &Authenv{JWTkey: []byte("other-key")}
		token, err := other.NewToken(7, "surveyor")
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
		rec := httptest.NewRecorder()
		next.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id": 7,
			"login":   "surveyor",
			"exp":     time.Now().Add(-time.Hour).Unix(),
		})
		signed, err := token.SignedString(env.JWTkey)
		require.NoError(t, err)
		_, _, err = env.ParseToken(signed)
		assert.Error(t, err)
	})
}

func TestLogout(t *testing.T) {
	env := newEnv()
	rec := post(env.LogoutHandler, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, -1, sessionCookie(t, rec).MaxAge)
}

func TestLimitMiddleware(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Every(time.Hour), 2)
	h := limiter.LimitMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:" + string(rune('1'+i)) + "000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
