package middleware

import (
	"crypto/rsa"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/feral-file/gpp-indexer/internal/logger"
)

const (
	AUTH_SUBJECT_KEY = "auth_subject"
	AUTH_METHOD_KEY  = "auth_method"

	AUTH_METHOD_JWT    = "jwt"
	AUTH_METHOD_APIKEY = "apikey"
)

var (
	ErrMissingCredentials = errors.New("missing Authorization header")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AuthConfig holds the accepted credentials.
// Bearer tokens are RS256/RS384/RS512 JWTs verified with JWTPublicKey (PEM).
// "ApiKey <key>" headers are checked against APIKeys.
type AuthConfig struct {
	JWTPublicKey string
	APIKeys      []string
}

// Principal is an authenticated caller
type Principal struct {
	Method  string
	Subject string
}

// Authenticator verifies Authorization headers
type Authenticator struct {
	publicKey *rsa.PublicKey
	apiKeys   [][]byte
	parser    *jwt.Parser
}

// NewAuthenticator parses the configured key once. It returns nil when no credential is configured.
func NewAuthenticator(cfg AuthConfig) (*Authenticator, error) {
	a := &Authenticator{
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{"RS256", "RS384", "RS512"}),
			jwt.WithExpirationRequired(),
		),
	}

	if cfg.JWTPublicKey != "" {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.JWTPublicKey))
		if err != nil {
			return nil, fmt.Errorf("failed to parse JWT public key: %w", err)
		}
		a.publicKey = key
	}

	for _, k := range cfg.APIKeys {
		if k = strings.TrimSpace(k); k != "" {
			a.apiKeys = append(a.apiKeys, []byte(k))
		}
	}

	if a.publicKey == nil && len(a.apiKeys) == 0 {
		return nil, nil
	}
	return a, nil
}

// Authenticate verifies a raw Authorization header value
func (a *Authenticator) Authenticate(header string) (Principal, error) {
	if header == "" {
		return Principal{}, ErrMissingCredentials
	}

	scheme, credentials, ok := strings.Cut(header, " ")
	if !ok || credentials == "" {
		return Principal{}, fmt.Errorf("%w: malformed Authorization header", ErrInvalidCredentials)
	}

	switch strings.ToLower(scheme) {
	case "bearer":
		return a.verifyJWT(credentials)
	case "apikey":
		return a.verifyAPIKey(credentials)
	default:
		return Principal{}, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidCredentials, scheme)
	}
}

func (a *Authenticator) verifyJWT(raw string) (Principal, error) {
	if a.publicKey == nil {
		return Principal{}, fmt.Errorf("%w: bearer tokens are not accepted", ErrInvalidCredentials)
	}

	claims := &jwt.RegisteredClaims{}
	if _, err := a.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return a.publicKey, nil
	}); err != nil {
		return Principal{}, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}

	return Principal{Method: AUTH_METHOD_JWT, Subject: claims.Subject}, nil
}

func (a *Authenticator) verifyAPIKey(key string) (Principal, error) {
	for _, k := range a.apiKeys {
		if subtle.ConstantTimeCompare(k, []byte(key)) == 1 {
			return Principal{Method: AUTH_METHOD_APIKEY}, nil
		}
	}
	return Principal{}, fmt.Errorf("%w: unknown API key", ErrInvalidCredentials)
}

// Auth rejects requests without valid credentials. A nil authenticator lets every request through.
func Auth(a *Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if a == nil {
			c.Next()
			return
		}

		principal, err := a.Authenticate(c.GetHeader("Authorization"))
		if err != nil {
			logger.WarnCtx(c.Request.Context(), "Authentication failed",
				zap.Error(err),
				zap.String("path", c.FullPath()),
				zap.String("client_ip", c.ClientIP()),
				zap.String("request_id", GetRequestID(c)),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"code": "unauthorized", "message": "Authentication failed", "details": err.Error()},
			})
			return
		}

		c.Set(AUTH_METHOD_KEY, principal.Method)
		if principal.Subject != "" {
			c.Set(AUTH_SUBJECT_KEY, principal.Subject)
		}
		c.Next()
	}
}
