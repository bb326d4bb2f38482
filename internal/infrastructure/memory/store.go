package memory

import (
	"context"
	"sync"
	"time"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/account"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
	"github.com/google/uuid"
)

// Store is an in-memory account.Store. Users are keyed by email; posts by id.
type Store struct {
	mu sync.RWMutex
	st *state
}

func NewStore() *Store {
	return &Store{st: &state{
		users: make(map[string]domain.User),
		posts: make(map[string]domain.Post),
	}}
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.FindUserByEmail(ctx, email)
}

func (s *Store) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.CreateUser(ctx, u)
}

func (s *Store) SetExternalID(ctx context.Context, email, externalID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.SetExternalID(ctx, email, externalID)
}

func (s *Store) ListPostsByOwner(ctx context.Context, email string) ([]domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.ListPostsByOwner(ctx, email)
}

func (s *Store) DeletePostsByOwner(ctx context.Context, email string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.DeletePostsByOwner(ctx, email)
}

func (s *Store) DeleteUser(ctx context.Context, email string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.DeleteUser(ctx, email)
}

// WithTx runs fn under the write lock, so the steps inside are observed as one.
// There is no rollback: work done before an error stays applied.
func (s *Store) WithTx(ctx context.Context, fn func(r account.Repo) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

func (s *Store) CreatePost(ctx context.Context, p domain.Post) (domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	s.st.posts[p.ID] = p
	return p, nil
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

// state holds the maps; its methods assume the caller holds Store.mu.
type state struct {
	users map[string]domain.User
	posts map[string]domain.Post
}

func (st *state) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, ok := st.users[email]
	if !ok {
		return nil, nil
	}
	return cloneUser(u), nil
}

func (st *state) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	if u.Email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}
	if _, exists := st.users[u.Email]; exists {
		return domain.User{}, domain.ErrEmailAlreadyExists()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	st.users[u.Email] = u
	return *cloneUser(u), nil
}

func (st *state) SetExternalID(ctx context.Context, email, externalID string) (int64, error) {
	u, ok := st.users[email]
	if !ok {
		return 0, nil
	}
	id := externalID
	u.ExternalID = &id
	st.users[email] = u
	return 1, nil
}

func (st *state) ListPostsByOwner(ctx context.Context, email string) ([]domain.Post, error) {
	out := make([]domain.Post, 0)
	for _, p := range st.posts {
		if p.UserEmail == email {
			out = append(out, p)
		}
	}
	return out, nil
}

func (st *state) DeletePostsByOwner(ctx context.Context, email string) (int64, error) {
	var n int64
	for id, p := range st.posts {
		if p.UserEmail == email {
			delete(st.posts, id)
			n++
		}
	}
	return n, nil
}

func (st *state) DeleteUser(ctx context.Context, email string) (int64, error) {
	if _, ok := st.users[email]; !ok {
		return 0, nil
	}
	delete(st.users, email)
	return 1, nil
}

// cloneUser copies the external id so callers cannot mutate stored state.
func cloneUser(u domain.User) *domain.User {
	if u.ExternalID != nil {
		id := *u.ExternalID
		u.ExternalID = &id
	}
	return &u
}
