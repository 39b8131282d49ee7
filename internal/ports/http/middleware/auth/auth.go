package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/square/go-jose.v2"
	"gopkg.in/square/go-jose.v2/jwt"
)

type ctxKey struct{}

type verifiedKey struct{}

var (
	ErrMissingAccount = errors.New("the token carries no account")
	ErrUnverified     = errors.New("transactions need a session token signed with the server secret")
)

type JwtTokenParams struct {
	// HS256 key, claims are read without verification when empty
	Secret string
}

type TokenValidator struct {
	JwtTokenParams
	logger *zap.Logger
}

func NewTokenValidator(logger *zap.Logger, params JwtTokenParams) TokenValidator {
	return TokenValidator{logger: logger, JwtTokenParams: params}
}

// Session puts the account of the bearer token in the request context.
// A request without a token is a visitor with no account.
func (t TokenValidator) Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := t.parseToken(token)
		if err != nil {
			t.authError(w, errors.New("failed to parse the auth token: "+err.Error()))
			return
		}

		account, err := accountOf(claims)
		if err != nil {
			t.authError(w, errors.New("auth token validation: "+err.Error()))
			return
		}

		ctx := WithAccount(r.Context(), account)
		if t.Secret != "" {
			ctx = context.WithValue(ctx, verifiedKey{}, true)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireVerified rejects requests whose account does not come from a
// signature checked with the server secret. Claims read without a secret
// only serve queries.
func (t TokenValidator) RequireVerified(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if AccountFromContext(r.Context()) != "" && !Verified(r.Context()) {
			t.authError(w, ErrUnverified)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (t TokenValidator) authError(w http.ResponseWriter, err error) {
	t.logger.Warn(err.Error())
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(err.Error()))
}

func (t TokenValidator) parseToken(tokenString string) (map[string]interface{}, error) {
	var claims map[string]interface{}

	token, err := jwt.ParseSigned(tokenString)
	if err != nil {
		return nil, err
	}

	if t.Secret == "" {
		if err := token.UnsafeClaimsWithoutVerification(&claims); err != nil {
			return nil, err
		}
		return claims, nil
	}

	if err := token.Claims([]byte(t.Secret), &claims); err != nil {
		return nil, err
	}
	var standard jwt.Claims
	if err := token.Claims([]byte(t.Secret), &standard); err != nil {
		return nil, err
	}
	if err := standard.Validate(jwt.Expected{}); err != nil {
		return nil, err
	}
	return claims, nil
}

// accountOf reads the `address` claim, falling back to `sub`.
func accountOf(claims map[string]interface{}) (string, error) {
	for _, name := range []string{"address", "sub"} {
		if account, ok := claims[name].(string); ok && account != "" {
			return strings.TrimSpace(account), nil
		}
	}
	return "", ErrMissingAccount
}

// bearerToken supports the query parameter for WebSocket clients that
// cannot set headers.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header != "" {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return r.URL.Query().Get("access_token")
}

func WithAccount(ctx context.Context, account string) context.Context {
	return context.WithValue(ctx, ctxKey{}, account)
}

// Verified reports whether the account in ctx was checked against the secret.
func Verified(ctx context.Context) bool {
	verified, _ := ctx.Value(verifiedKey{}).(bool)
	return verified
}

// AccountFromContext returns the connected account, empty when none.
func AccountFromContext(ctx context.Context) string {
	account, _ := ctx.Value(ctxKey{}).(string)
	return account
}

// SignHS256 issues a token for account; used by tests and local tooling.
func SignHS256(secret, account string) (string, error) {
	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.HS256, Key: []byte(secret)}, (&jose.SignerOptions{}).WithType("JWT"))
	if err != nil {
		return "", err
	}
	return jwt.Signed(signer).Claims(map[string]interface{}{"address": account}).CompactSerialize()
}
