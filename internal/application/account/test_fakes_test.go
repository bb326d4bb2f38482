package account

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

/*
Fakes for ports
*/

type fakeStore struct {
	mu sync.Mutex

	users map[string]domain.User
	posts []domain.Post

	// injected errors (if set, method returns error)
	findErr        error
	createErr      error
	setExtErr      error
	listErr        error
	deletePostsErr error
	deleteUserErr  error

	// record calls in order
	calls   []string
	txCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[string]domain.User{}}
}

func (f *fakeStore) record(name string) {
	f.calls = append(f.calls, name)
}

func (f *fakeStore) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("find")

	if f.findErr != nil {
		return nil, f.findErr
	}
	u, ok := f.users[email]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (f *fakeStore) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("create")

	if f.createErr != nil {
		return domain.User{}, f.createErr
	}
	if _, ok := f.users[u.Email]; ok {
		return domain.User{}, domain.ErrEmailAlreadyExists()
	}
	f.users[u.Email] = u
	return u, nil
}

func (f *fakeStore) SetExternalID(ctx context.Context, email, externalID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("set_external_id")

	if f.setExtErr != nil {
		return 0, f.setExtErr
	}
	u, ok := f.users[email]
	if !ok {
		return 0, nil
	}
	id := externalID
	u.ExternalID = &id
	f.users[email] = u
	return 1, nil
}

func (f *fakeStore) ListPostsByOwner(ctx context.Context, email string) ([]domain.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("list_posts")

	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.Post
	for _, p := range f.posts {
		if p.UserEmail == email {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) DeletePostsByOwner(ctx context.Context, email string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("delete_posts")

	if f.deletePostsErr != nil {
		return 0, f.deletePostsErr
	}
	kept := f.posts[:0]
	var n int64
	for _, p := range f.posts {
		if p.UserEmail == email {
			n++
			continue
		}
		kept = append(kept, p)
	}
	f.posts = kept
	return n, nil
}

func (f *fakeStore) DeleteUser(ctx context.Context, email string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("delete_user")

	if f.deleteUserErr != nil {
		return 0, f.deleteUserErr
	}
	if _, ok := f.users[email]; !ok {
		return 0, nil
	}
	delete(f.users, email)
	return 1, nil
}

// WithTx has no rollback: it behaves like a store without transactions.
func (f *fakeStore) WithTx(ctx context.Context, fn func(r Repo) error) error {
	f.mu.Lock()
	f.txCalls++
	f.mu.Unlock()
	return fn(f)
}

func (f *fakeStore) addPost(email, title, content string) {
	f.posts = append(f.posts, domain.Post{
		ID:        email + ":" + title,
		Title:     title,
		Content:   content,
		UserEmail: email,
	})
}

func (f *fakeStore) callsSnapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeHasher struct {
	hashFn    func(pw string) (string, error)
	compareFn func(hash, pw string) error
}

func newFakeHasher() *fakeHasher {
	return &fakeHasher{
		hashFn: func(pw string) (string, error) { return "hash:" + pw, nil },
		compareFn: func(hash, pw string) error {
			if hash != "hash:"+pw {
				return errors.New("mismatch")
			}
			return nil
		},
	}
}

func (h *fakeHasher) Hash(pw string) (string, error)      { return h.hashFn(pw) }
func (h *fakeHasher) Compare(hash string, pw string) error { return h.compareFn(hash, pw) }

type fakePublisher struct {
	mu sync.Mutex

	err        error
	registered []UserRegisteredEvent
	linked     []ExternalIDLinkedEvent
	deleted    []UserDeletedEvent
}

func (p *fakePublisher) PublishUserRegistered(ctx context.Context, evt UserRegisteredEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registered = append(p.registered, evt)
	return p.err
}

func (p *fakePublisher) PublishExternalIDLinked(ctx context.Context, evt ExternalIDLinkedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.linked = append(p.linked, evt)
	return p.err
}

func (p *fakePublisher) PublishUserDeleted(ctx context.Context, evt UserDeletedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, evt)
	return p.err
}

/*
Shared audit capture
*/

type auditEntry struct {
	action string
	fields map[string]string
}

type auditLog struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (a *auditLog) fn(action string, fields map[string]string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, auditEntry{action: action, fields: fields})
}

func (a *auditLog) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.action)
	}
	return out
}

func newSvcForTest(t *testing.T) (*Service, *fakeStore, *fakeHasher, *fakePublisher, *auditLog) {
	t.Helper()

	store := newFakeStore()
	hasher := newFakeHasher()
	pub := &fakePublisher{}
	audit := &auditLog{}

	svc := NewService(store, hasher, pub).WithAudit(audit.fn)
	svc.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return svc, store, hasher, pub, audit
}

func seedUser(store *fakeStore, username, email, password string) {
	store.users[email] = domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: "hash:" + password,
	}
}

func joinCalls(calls []string) string {
	return strings.Join(calls, ",")
}
