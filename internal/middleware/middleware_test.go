package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/train-reservation/internal/model"
)

const testSecret = "test-secret"

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func protected() *echo.Echo {
	e := echo.New()
	g := e.Group("/v1", JWTAuth(testSecret), AdminOrReadOnly())
	h := func(c echo.Context) error {
		id, _ := UserID(c)
		return c.JSON(http.StatusOK, echo.Map{"user": id, "role": Role(c)})
	}
	g.GET("/stations", h)
	g.POST("/stations", h)
	return e
}

func call(e *echo.Echo, method, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/v1/stations", nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAdminOrReadOnly(t *testing.T) {
	e := protected()
	exp := time.Now().Add(time.Hour).Unix()
	customer := signed(t, jwt.MapClaims{"sub": 7, "role": model.RoleCustomer, "exp": exp})
	admin := signed(t, jwt.MapClaims{"sub": 1, "role": model.RoleAdmin, "exp": exp})

	tests := []struct {
		name   string
		method string
		token  string
		want   int
	}{
		{"anonymous read", http.MethodGet, "", http.StatusUnauthorized},
		{"customer read", http.MethodGet, customer, http.StatusOK},
		{"customer write", http.MethodPost, customer, http.StatusForbidden},
		{"admin write", http.MethodPost, admin, http.StatusOK},
		{"garbage token", http.MethodGet, "not-a-jwt", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, call(e, tt.method, tt.token).Code)
		})
	}
}

func TestJWTAuthRejectsExpiredAndForeignTokens(t *testing.T) {
	e := protected()
	expired := signed(t, jwt.MapClaims{"sub": 7, "role": model.RoleCustomer, "exp": time.Now().Add(-time.Minute).Unix()})
	assert.Equal(t, http.StatusUnauthorized, call(e, http.MethodGet, expired).Code)

	other, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": 7}).SignedString([]byte("other"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, call(e, http.MethodGet, other).Code)

	noSubject := signed(t, jwt.MapClaims{"role": model.RoleAdmin, "exp": time.Now().Add(time.Hour).Unix()})
	assert.Equal(t, http.StatusUnauthorized, call(e, http.MethodGet, noSubject).Code)
}

func TestUserIDFromClaims(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	_, ok := UserID(c)
	assert.False(t, ok)

	c.Set("user_id", float64(42))
	id, ok := UserID(c)
	assert.True(t, ok)
	assert.Equal(t, uint64(42), id)

	c.Set("user_id", "17")
	id, ok = UserID(c)
	assert.True(t, ok)
	assert.Equal(t, uint64(17), id)
}

func TestCacheEntryRoundTrip(t *testing.T) {
	ct, body, ok := decodeEntry(encodeEntry("application/json", []byte(`{"a":1}`)))
	require.True(t, ok)
	assert.Equal(t, "application/json", ct)
	assert.Equal(t, `{"a":1}`, string(body))

	_, _, ok = decodeEntry([]byte{0, 9, 'x'})
	assert.False(t, ok)
}
