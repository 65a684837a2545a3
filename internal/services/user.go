package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/jjudge-oj/accounts/internal/auth"
	"github.com/jjudge-oj/accounts/internal/store"
	"github.com/jjudge-oj/accounts/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (types.User, error)
	GetByUsernameOrEmail(ctx context.Context, username, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, id string, patch types.UserPatch) (types.User, error)
	Delete(ctx context.Context, id string) (types.User, error)
	List(ctx context.Context, offset, limit int) ([]types.User, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, password, hashed string) (bool, error)
}

// TokenService issues and verifies identity tokens.
type TokenService interface {
	Issue(userID string) (string, error)
	Verify(token string) (string, error)
}

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	FirstName string `json:"nombre" validate:"max=100"`
	LastName  string `json:"apellido" validate:"max=100"`
	Username  string `json:"usuario" validate:"required,max=64"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,bcryptlen"`
}

// LoginInput identifies a user by username or email.
type LoginInput struct {
	Username string `json:"usuario"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserService encapsulates user use-cases.
type UserService struct {
	repo         UserRepository
	hasher       PasswordHasher
	tokens       TokenService
	events       *UserEventPublisher
	validate     *validator.Validate
	maxListCount int

	decoyOnce sync.Once
	decoyHash string
}

func NewUserService(repo UserRepository, hasher PasswordHasher, tokens TokenService) *UserService {
	return &UserService{
		repo:     repo,
		hasher:   hasher,
		tokens:   tokens,
		validate: newValidator(),
	}
}

// WithEvents attaches a publisher for user lifecycle events.
func (s *UserService) WithEvents(events *UserEventPublisher) *UserService {
	s.events = events
	return s
}

// WithMaxListCount bounds the page size accepted by List. Zero disables the bound.
func (s *UserService) WithMaxListCount(n int) *UserService {
	s.maxListCount = n
	return s
}

// Register hashes the password and stores a new user. Validation failures and
// uniqueness collisions both surface as ErrRegistrationFailed without naming
// the offending field.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (types.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := s.validate.Struct(in); err != nil {
		return types.User{}, fmt.Errorf("%w: %w", ErrRegistrationFailed, ErrValidation)
	}

	hashed, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return types.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, types.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hashed,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return types.User{}, ErrRegistrationFailed
		}
		return types.User{}, fmt.Errorf("create user: %w", err)
	}

	s.events.publish(ctx, types.UserRegistered, user.ID)
	return user, nil
}

// Login verifies credentials and returns a signed token. An unknown
// identifier and a wrong password yield the same ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, in LoginInput) (string, error) {
	user, err := s.repo.GetByUsernameOrEmail(ctx, strings.TrimSpace(in.Username), strings.TrimSpace(in.Email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.burnVerify(ctx, in.Password)
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("find user: %w", err)
	}

	ok, err := s.hasher.Verify(ctx, in.Password, user.PasswordHash)
	if err != nil {
		return "", fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// burnVerify runs a comparison against a throwaway hash so that a missing
// user costs about as much time as a wrong password.
func (s *UserService) burnVerify(ctx context.Context, password string) {
	s.decoyOnce.Do(func() {
		s.decoyHash, _ = s.hasher.Hash(context.Background(), "decoy-password")
	})
	if s.decoyHash != "" {
		_, _ = s.hasher.Verify(ctx, password, s.decoyHash)
	}
}

// Authenticate resolves the user behind a token. The user is looked up on
// every call so that tokens of deleted users stop working immediately.
func (s *UserService) Authenticate(ctx context.Context, token string) (types.User, error) {
	if strings.TrimSpace(token) == "" {
		return types.User{}, ErrUnauthenticated
	}

	userID, err := s.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, auth.ErrMissingSecret) {
			return types.User{}, fmt.Errorf("verify token: %w", err)
		}
		return types.User{}, ErrUnauthenticated
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrUnauthenticated
		}
		return types.User{}, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// UpdateSelf applies patch to the authenticated user.
func (s *UserService) UpdateSelf(ctx context.Context, current types.User, patch types.UserPatch) error {
	patch = normalizePatch(patch)
	if err := s.validatePatch(patch); err != nil {
		return err
	}
	patch, err := s.hashPatchPassword(ctx, patch)
	if err != nil {
		return err
	}

	if _, err := s.repo.Update(ctx, current.ID, patch); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) || errors.Is(err, store.ErrNotFound) {
			return ErrInvalidUpdate
		}
		return fmt.Errorf("update user: %w", err)
	}

	s.events.publish(ctx, types.UserUpdated, current.ID)
	return nil
}

// UpdateByID applies patch to the user with the given id. A missing user
// is reported before the patch values are validated.
func (s *UserService) UpdateByID(ctx context.Context, id string, patch types.UserPatch) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	patch = normalizePatch(patch)
	if err := s.validatePatch(patch); err != nil {
		return err
	}

	patch, err := s.hashPatchPassword(ctx, patch)
	if err != nil {
		return err
	}

	if _, err := s.repo.Update(ctx, id, patch); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return ErrNotFound
		case errors.Is(err, store.ErrDuplicateKey):
			return ErrInvalidUpdate
		}
		return fmt.Errorf("update user: %w", err)
	}

	s.events.publish(ctx, types.UserUpdated, id)
	return nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (types.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// List returns the 1-indexed page of count users in insertion order.
func (s *UserService) List(ctx context.Context, page, count int) ([]types.User, error) {
	if page < 1 || count < 1 {
		return nil, ErrValidation
	}
	if s.maxListCount > 0 && count > s.maxListCount {
		count = s.maxListCount
	}
	if page-1 > math.MaxInt/count {
		return []types.User{}, nil
	}

	users, err := s.repo.List(ctx, (page-1)*count, count)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserService) DeleteByID(ctx context.Context, id string) error {
	if _, err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}

	s.events.publish(ctx, types.UserDeleted, id)
	return nil
}

func (s *UserService) validatePatch(patch types.UserPatch) error {
	if err := s.validate.Struct(patch); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidUpdate, ErrValidation)
	}
	return nil
}

func normalizePatch(patch types.UserPatch) types.UserPatch {
	if patch.Username != nil {
		trimmed := strings.TrimSpace(*patch.Username)
		patch.Username = &trimmed
	}
	if patch.Email != nil {
		trimmed := strings.TrimSpace(*patch.Email)
		patch.Email = &trimmed
	}
	return patch
}

// hashPatchPassword replaces a plaintext password in patch with its hash.
func (s *UserService) hashPatchPassword(ctx context.Context, patch types.UserPatch) (types.UserPatch, error) {
	if patch.Password == nil {
		return patch, nil
	}
	hashed, err := s.hasher.Hash(ctx, *patch.Password)
	if err != nil {
		return types.UserPatch{}, fmt.Errorf("hash password: %w", err)
	}
	patch.Password = &hashed
	return patch, nil
}
