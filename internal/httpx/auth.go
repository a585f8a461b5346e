package httpx

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/shop-service/internal/apperr"
	"github.com/MikeMC777/shop-service/internal/auth"
)

const (
	principalKey = "principal"
	uidKey       = "uid"
)

// TokenVerifier is satisfied by *auth.Tokens.
type TokenVerifier interface {
	Verify(raw string) (auth.Principal, error)
}

// Authenticate rejects requests without a valid bearer token and stores the caller
// on the context.
func Authenticate(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearer(c.GetHeader("Authorization"))
		if !ok {
			Abort(c, fmt.Errorf("%w: missing bearer token", apperr.ErrAuthentication))
			return
		}
		p, err := tokens.Verify(raw)
		if err != nil {
			Abort(c, err)
			return
		}
		c.Set(principalKey, p)
		c.Set(uidKey, p.UserID)
		c.Next()
	}
}

// Require lets the request through only when the caller's role grants the capability.
// It must run after Authenticate.
func Require(want auth.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			Abort(c, apperr.ErrAuthentication)
			return
		}
		if !p.Can(want) {
			Abort(c, fmt.Errorf("%w: role %s lacks %s", apperr.ErrForbidden, p.Role, want))
			return
		}
		c.Next()
	}
}

func PrincipalFrom(c *gin.Context) (auth.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return auth.Principal{}, false
	}
	p, ok := v.(auth.Principal)
	return p, ok
}

func bearer(h string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
