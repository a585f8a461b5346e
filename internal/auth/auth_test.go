package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/shop-service/internal/apperr"
)

func TestRoleCapabilities(t *testing.T) {
	assert.True(t, RoleCustomer.Can(CapShop))
	assert.False(t, RoleCustomer.Can(CapManageCatalog))
	assert.False(t, RoleCustomer.Can(CapViewAllOrders))

	assert.True(t, RoleAdmin.Can(CapShop))
	assert.True(t, RoleAdmin.Can(CapManageCatalog))

	assert.False(t, Role("root").Can(CapShop))
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("admin")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)

	_, err = ParseRole("superuser")
	assert.ErrorIs(t, err, apperr.ErrAuthentication)
}

func TestTokens_IssueVerify(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)

	raw, exp, err := tokens.Issue("u1", RoleCustomer)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	p, err := tokens.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, Principal{UserID: "u1", Role: RoleCustomer}, p)
}

func TestTokens_Rejects(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	raw, _, err := tokens.Issue("u1", RoleAdmin)
	require.NoError(t, err)

	t.Run("missing", func(t *testing.T) {
		_, err := tokens.Verify("")
		assert.ErrorIs(t, err, apperr.ErrAuthentication)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := tokens.Verify("not.a.token")
		assert.ErrorIs(t, err, apperr.ErrAuthentication)
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewTokens("other", time.Hour).Verify(raw)
		assert.ErrorIs(t, err, apperr.ErrAuthentication)
	})

	t.Run("expired", func(t *testing.T) {
		late := NewTokens("secret", time.Hour)
		late.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := late.Verify(raw)
		assert.ErrorIs(t, err, apperr.ErrAuthentication)
		assert.Contains(t, err.Error(), "expired")
	})

	t.Run("alg none", func(t *testing.T) {
		claims := Claims{UserID: "u1", Role: RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = tokens.Verify(unsigned)
		assert.ErrorIs(t, err, apperr.ErrAuthentication)
	})

	t.Run("unknown role", func(t *testing.T) {
		claims := Claims{UserID: "u1", Role: "root", RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		require.NoError(t, err)
		_, err = tokens.Verify(forged)
		assert.ErrorIs(t, err, apperr.ErrAuthentication)
	})
}
