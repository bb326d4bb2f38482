package memory

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
	zlog "github.com/rs/zerolog/log"
)

type SeederHasher interface {
	Hash(password string) (string, error)
}

// SeedDemo inserts a demo user with two posts. Safe to call on restart.
func SeedDemo(ctx context.Context, s *Store, hasher SeederHasher) {
	hash, err := hasher.Hash("DemoPassword123!")
	if err != nil {
		zlog.Warn().Err(err).Msg("[seed] hash failed")
		return
	}

	u, err := s.CreateUser(ctx, domain.User{
		Username:     "demo",
		Email:        "demo@example.com",
		PasswordHash: hash,
	})
	if err != nil {
		// already seeded
		return
	}

	for _, p := range []domain.Post{
		{Title: "Hello", Content: "First post"},
		{Title: "Again", Content: "Second post"},
	} {
		p.UserEmail = u.Email
		_, _ = s.CreatePost(ctx, p)
	}

	zlog.Info().Msg("[seed] memory demo user seeded")
}
