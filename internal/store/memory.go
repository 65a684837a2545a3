package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jjudge-oj/accounts/types"
)

// MemoryUserRepository keeps users in process memory. It enforces the same
// uniqueness rules as the database backends and is used for development and
// tests.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]types.User
	order []string
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]types.User)}
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id string) (types.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return types.User{}, ErrNotFound
	}
	return user, nil
}

func (r *MemoryUserRepository) GetByUsernameOrEmail(ctx context.Context, username, email string) (types.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.order {
		user := r.users[id]
		if (username != "" && user.Username == username) || (email != "" && user.Email == email) {
			return user, nil
		}
	}
	return types.User{}, ErrNotFound
}

func (r *MemoryUserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conflictsLocked("", user.Username, user.Email) {
		return types.User{}, ErrDuplicateKey
	}
	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = user
	r.order = append(r.order, user.ID)
	return user, nil
}

func (r *MemoryUserRepository) Update(ctx context.Context, id string, patch types.UserPatch) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return types.User{}, ErrNotFound
	}
	patch.Apply(&user)
	if r.conflictsLocked(id, user.Username, user.Email) {
		return types.User{}, ErrDuplicateKey
	}
	user.UpdatedAt = time.Now().UTC()
	r.users[id] = user
	return user, nil
}

func (r *MemoryUserRepository) Delete(ctx context.Context, id string) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return types.User{}, ErrNotFound
	}
	delete(r.users, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return user, nil
}

func (r *MemoryUserRepository) List(ctx context.Context, offset, limit int) ([]types.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := []types.User{}
	if offset < 0 || offset >= len(r.order) || limit <= 0 {
		return users, nil
	}
	end := offset + limit
	if end > len(r.order) || end < offset {
		end = len(r.order)
	}
	for _, id := range r.order[offset:end] {
		users = append(users, r.users[id])
	}
	return users, nil
}

func (r *MemoryUserRepository) conflictsLocked(selfID, username, email string) bool {
	for id, user := range r.users {
		if id == selfID {
			continue
		}
		if user.Username == username || user.Email == email {
			return true
		}
	}
	return false
}
