package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKeyPair(t *testing.T) (*rsa.PrivateKey, string) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	return key, string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}

func signToken(t *testing.T, key *rsa.PrivateKey, claims jwt.RegisteredClaims) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestNewAuthenticator_NothingConfigured(t *testing.T) {
	a, err := NewAuthenticator(AuthConfig{APIKeys: []string{"", "  "}})
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestNewAuthenticator_BadKey(t *testing.T) {
	_, err := NewAuthenticator(AuthConfig{JWTPublicKey: "not a pem"})
	assert.Error(t, err)
}

func TestAuthenticate(t *testing.T) {
	key, publicPEM := newKeyPair(t)
	a, err := NewAuthenticator(AuthConfig{JWTPublicKey: publicPEM, APIKeys: []string{"ops-key"}})
	require.NoError(t, err)

	valid := signToken(t, key, jwt.RegisteredClaims{
		Subject:   "scheduler",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	expired := signToken(t, key, jwt.RegisteredClaims{
		Subject:   "scheduler",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	noExpiry := signToken(t, key, jwt.RegisteredClaims{Subject: "scheduler"})

	otherKey, _ := newKeyPair(t)
	foreign := signToken(t, otherKey, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})

	p, err := a.Authenticate("Bearer " + valid)
	require.NoError(t, err)
	assert.Equal(t, Principal{Method: AUTH_METHOD_JWT, Subject: "scheduler"}, p)

	p, err = a.Authenticate("ApiKey ops-key")
	require.NoError(t, err)
	assert.Equal(t, AUTH_METHOD_APIKEY, p.Method)

	_, err = a.Authenticate("")
	assert.ErrorIs(t, err, ErrMissingCredentials)

	for _, header := range []string{
		"Bearer " + expired,
		"Bearer " + noExpiry,
		"Bearer " + foreign,
		"ApiKey wrong",
		"Basic dXNlcjpwYXNz",
		"Bearer",
	} {
		_, err = a.Authenticate(header)
		assert.ErrorIs(t, err, ErrInvalidCredentials, header)
	}
}

func TestAuthenticate_APIKeysOnly(t *testing.T) {
	a, err := NewAuthenticator(AuthConfig{APIKeys: []string{"ops-key"}})
	require.NoError(t, err)

	_, err = a.Authenticate("Bearer abc.def.ghi")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a, err := NewAuthenticator(AuthConfig{APIKeys: []string{"ops-key"}})
	require.NoError(t, err)

	router := gin.New()
	router.Use(RequestID())
	router.POST("/guarded", Auth(a), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(AUTH_METHOD_KEY))
	})
	router.POST("/open", Auth(nil), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/guarded", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"unauthorized"`)

	req := httptest.NewRequest(http.MethodPost, "/guarded", nil)
	req.Header.Set("Authorization", "apikey ops-key")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, AUTH_METHOD_APIKEY, w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/open", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
