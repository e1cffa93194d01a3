package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"admincs/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func init() { gin.SetMode(gin.TestMode) }

func token(t *testing.T, rol string, exp time.Time) string {
	t.Helper()
	claims := JWTClaims{
		UserID: "u-1", Username: "maria", Rol: rol,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func protegido() *gin.Engine {
	r := gin.New()
	r.GET("/lectura", JWTAuth(secret), RequireRole(RolOperador, RolAdministrador), func(c *gin.Context) {
		c.String(http.StatusOK, GetClaims(c).Username)
	})
	r.DELETE("/borrado", JWTAuth(secret), RequireRole(RolAdministrador), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestJWTAuth(t *testing.T) {
	r := protegido()
	cases := []struct {
		name   string
		method string
		path   string
		auth   string
		status int
	}{
		{"sin header", http.MethodGet, "/lectura", "", http.StatusUnauthorized},
		{"token basura", http.MethodGet, "/lectura", "Bearer abc", http.StatusUnauthorized},
		{"token vencido", http.MethodGet, "/lectura", "Bearer " + token(t, RolOperador, time.Now().Add(-time.Hour)), http.StatusUnauthorized},
		{"operador lee", http.MethodGet, "/lectura", "Bearer " + token(t, RolOperador, time.Now().Add(time.Hour)), http.StatusOK},
		{"operador no borra", http.MethodDelete, "/borrado", "Bearer " + token(t, RolOperador, time.Now().Add(time.Hour)), http.StatusForbidden},
		{"administrador borra", http.MethodDelete, "/borrado", "Bearer " + token(t, RolAdministrador, time.Now().Add(time.Hour)), http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.auth != "" {
				req.Header.Set("Authorization", tc.auth)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestErrorHandler_Envelope(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), ErrorHandler())
	r.GET("/conflicto", func(c *gin.Context) {
		_ = c.Error(apierror.Conflict("Ya existe", errors.New("duplicate key")))
	})
	r.GET("/interno", func(c *gin.Context) {
		_ = c.Error(errors.New("pq: relation cobros does not exist"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/conflicto", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"kind":"conflict","message":"Ya existe"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/interno", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "relation")
}

func TestRequestID_Propaga(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.Use(RateLimiter(2, time.Minute))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.9.8.7:5555"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)
}
