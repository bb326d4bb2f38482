package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/account"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ account.Store = (*Store)(nil)
var _ account.EventPublisher = (*NoopPublisher)(nil)

func TestStore_FindUserByEmail_AbsentReturnsNilNil(t *testing.T) {
	t.Parallel()

	s := NewStore()
	u, err := s.FindUserByEmail(context.Background(), "nobody@x.com")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestStore_CreateUser_DuplicateEmail(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewStore()

	created, err := s.CreateUser(ctx, domain.User{Username: "a", Email: "a@x.com", PasswordHash: "h"})
	require.NoError(t, err)
	assert.False(t, created.CreatedAt.IsZero())

	_, err = s.CreateUser(ctx, domain.User{Username: "b", Email: "a@x.com", PasswordHash: "h2"})
	require.Error(t, err)
	assert.True(t, domain.Is(err, "email_already_exists"))

	got, err := s.FindUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "a", got.Username)
}

func TestStore_CreateUser_Concurrent_OneWins(t *testing.T) {
	t.Parallel()

	s := NewStore()
	const n = 32

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CreateUser(context.Background(), domain.User{Username: "a", Email: "same@x.com", PasswordHash: "h"})
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Len(t, s.st.users, 1)
}

func TestStore_SetExternalID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewStore()
	_, err := s.CreateUser(ctx, domain.User{Username: "a", Email: "a@x.com", PasswordHash: "h"})
	require.NoError(t, err)

	n, err := s.SetExternalID(ctx, "a@x.com", "ext-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.SetExternalID(ctx, "nobody@x.com", "ext-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	got, err := s.FindUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, got.ExternalID)
	assert.Equal(t, "ext-1", *got.ExternalID)

	// mutating the returned copy must not leak into the store
	*got.ExternalID = "tampered"
	again, _ := s.FindUserByEmail(ctx, "a@x.com")
	assert.Equal(t, "ext-1", *again.ExternalID)
}

func TestStore_Posts_ListAndDeleteByOwner(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewStore()

	_, err := s.CreatePost(ctx, domain.Post{Title: "a1", UserEmail: "a@x.com"})
	require.NoError(t, err)
	_, err = s.CreatePost(ctx, domain.Post{Title: "a2", UserEmail: "a@x.com"})
	require.NoError(t, err)
	_, err = s.CreatePost(ctx, domain.Post{Title: "b1", UserEmail: "b@x.com"})
	require.NoError(t, err)

	posts, err := s.ListPostsByOwner(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Len(t, posts, 2)

	none, err := s.ListPostsByOwner(ctx, "nobody@x.com")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	n, err := s.DeletePostsByOwner(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	left, err := s.ListPostsByOwner(ctx, "b@x.com")
	require.NoError(t, err)
	assert.Len(t, left, 1)
}

func TestStore_DeleteUser_Idempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewStore()
	_, err := s.CreateUser(ctx, domain.User{Username: "a", Email: "a@x.com", PasswordHash: "h"})
	require.NoError(t, err)

	n, err := s.DeleteUser(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.DeleteUser(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestStore_WithTx_RunsOnInnerRepo(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewStore()
	_, err := s.CreateUser(ctx, domain.User{Username: "a", Email: "a@x.com", PasswordHash: "h"})
	require.NoError(t, err)
	_, err = s.CreatePost(ctx, domain.Post{Title: "a1", UserEmail: "a@x.com"})
	require.NoError(t, err)

	err = s.WithTx(ctx, func(r account.Repo) error {
		if _, err := r.DeletePostsByOwner(ctx, "a@x.com"); err != nil {
			return err
		}
		_, err := r.DeleteUser(ctx, "a@x.com")
		return err
	})
	require.NoError(t, err)

	u, err := s.FindUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Nil(t, u)
	assert.Empty(t, s.st.posts)
}

func TestStore_WithTx_PropagatesError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	err := NewStore().WithTx(context.Background(), func(r account.Repo) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestStore_Ping_HonoursContext(t *testing.T) {
	t.Parallel()

	s := NewStore()
	require.NoError(t, s.Ping(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, s.Ping(ctx))
}

func TestSeedDemo_RestartSafe(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewStore()
	h := stubHasher{}

	SeedDemo(ctx, s, h)
	SeedDemo(ctx, s, h)

	assert.Len(t, s.st.users, 1)
	posts, err := s.ListPostsByOwner(ctx, "demo@example.com")
	require.NoError(t, err)
	assert.Len(t, posts, 2)
}

type stubHasher struct{}

func (stubHasher) Hash(pw string) (string, error) { return "HASH(" + pw + ")", nil }
