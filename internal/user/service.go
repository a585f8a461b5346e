package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/MikeMC777/shop-service/internal/apperr"
	"github.com/MikeMC777/shop-service/internal/auth"
)

const (
	minPasswordLen = 8
	// bcrypt refuses longer inputs.
	maxPasswordBytes = 72
)

var errBadCredentials = fmt.Errorf("%w: invalid email or password", apperr.ErrAuthentication)

// Service is the credential service: registration, password checks and token issuance.
type Service struct {
	repo   Repository
	tokens *auth.Tokens
}

func NewService(repo Repository, tokens *auth.Tokens) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Register creates a customer account. Duplicate emails fail with ErrAlreadyExist.
func (s *Service) Register(ctx context.Context, in RegisterRequest) (*User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" || email == "" || in.Password == "" {
		return nil, apperr.Invalid("name, email and password are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperr.Invalid("email is malformed")
	}
	if len(in.Password) < minPasswordLen {
		return nil, apperr.Invalid(fmt.Sprintf("password must have at least %d characters", minPasswordLen))
	}
	if len(in.Password) > maxPasswordBytes {
		return nil, apperr.Invalid(fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes))
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         auth.RoleCustomer,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies credentials and issues a session token. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, in LoginRequest) (*LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, apperr.Invalid("email and password are required")
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, errBadCredentials
		}
		return nil, err
	}
	if !CheckPassword(u.PasswordHash, in.Password) {
		return nil, errBadCredentials
	}

	token, exp, err := s.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{Token: token, ExpiresAt: exp, User: *u}, nil
}
