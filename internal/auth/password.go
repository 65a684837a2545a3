package auth

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// ErrHashingFailure is returned when a password cannot be hashed or a stored
// hash is not a valid bcrypt hash.
var ErrHashingFailure = errors.New("password hashing failure")

// PasswordHasher hashes and verifies passwords with bcrypt.
// Hash and Verify hold a slot of a weighted semaphore while bcrypt runs, so
// the number of concurrent hashes never exceeds the configured limit.
type PasswordHasher struct {
	cost  int
	slots *semaphore.Weighted
}

// NewPasswordHasher constructs a hasher. A cost outside bcrypt's range is
// clamped; a non-positive concurrency falls back to GOMAXPROCS.
func NewPasswordHasher(cost, concurrency int) *PasswordHasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	if concurrency < 1 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	return &PasswordHasher{
		cost:  cost,
		slots: semaphore.NewWeighted(int64(concurrency)),
	}
}

// Hash returns a salted bcrypt hash of password. Hashing the same password
// twice yields different results.
func (h *PasswordHasher) Hash(ctx context.Context, password string) (string, error) {
	if err := h.slots.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.slots.Release(1)

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHashingFailure, err)
	}
	return string(hashed), nil
}

// Verify reports whether password matches hashed. A mismatch is not an error;
// a malformed hash is.
func (h *PasswordHasher) Verify(ctx context.Context, password, hashed string) (bool, error) {
	if err := h.slots.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer h.slots.Release(1)

	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrHashingFailure, err)
	}
	return true, nil
}
