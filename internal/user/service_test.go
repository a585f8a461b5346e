package user

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/shop-service/internal/apperr"
	"github.com/MikeMC777/shop-service/internal/auth"
)

type memRepo struct {
	mu      sync.Mutex
	byEmail map[string]*User
}

func newMemRepo() *memRepo { return &memRepo{byEmail: map[string]*User{}} }

func (m *memRepo) Create(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[u.Email]; ok {
		return ErrAlreadyExist
	}
	u.CreatedAt = time.Now().UTC()
	cp := *u
	m.byEmail[u.Email] = &cp
	return nil
}

func (m *memRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func newTestService() *Service {
	return NewService(newMemRepo(), auth.NewTokens("test-secret", time.Hour))
}

func TestRegister_DefaultsToCustomer(t *testing.T) {
	svc := newTestService()

	u, err := svc.Register(context.Background(), RegisterRequest{Name: "Ada", Email: " Ada@Example.com ", Password: "longenough"})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleCustomer, u.Role)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.NotEqual(t, "longenough", u.PasswordHash)
	assert.True(t, CheckPassword(u.PasswordHash, "longenough"))
}

func TestRegister_Validation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	cases := map[string]RegisterRequest{
		"missing name":   {Email: "a@b.co", Password: "longenough"},
		"bad email":      {Name: "A", Email: "nope", Password: "longenough"},
		"short password": {Name: "A", Email: "a@b.co", Password: "short"},
		"long password":  {Name: "A", Email: "a@b.co", Password: strings.Repeat("x", 73)},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Register(ctx, in)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestRegister_Duplicate(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	in := RegisterRequest{Name: "A", Email: "a@b.co", Password: "longenough"}

	_, err := svc.Register(ctx, in)
	require.NoError(t, err)

	_, err = svc.Register(ctx, in)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestLogin(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	u, err := svc.Register(ctx, RegisterRequest{Name: "A", Email: "a@b.co", Password: "longenough"})
	require.NoError(t, err)

	out, err := svc.Login(ctx, LoginRequest{Email: "a@b.co", Password: "longenough"})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Token)
	assert.Equal(t, u.ID, out.User.ID)

	p, err := svc.tokens.Verify(out.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, p.UserID)
	assert.Equal(t, auth.RoleCustomer, p.Role)

	_, err = svc.Login(ctx, LoginRequest{Email: "a@b.co", Password: "wrong-password"})
	assert.ErrorIs(t, err, apperr.ErrAuthentication)

	_, err = svc.Login(ctx, LoginRequest{Email: "nobody@b.co", Password: "longenough"})
	assert.ErrorIs(t, err, apperr.ErrAuthentication)
}
