package postgres

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
	zlog "github.com/rs/zerolog/log"
)

type SeederHasher interface {
	Hash(password string) (string, error)
}

type SeederRepo interface {
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)
	CreatePost(ctx context.Context, p domain.Post) (domain.Post, error)
}

// SeedUsers inserts demo users and their posts. Restart safe: users that
// already exist are skipped together with their posts.
func SeedUsers(ctx context.Context, repo SeederRepo, hasher SeederHasher) {
	type seedUser struct {
		Username string
		Email    string
		Pass     string
		Posts    []string
	}

	seeds := []seedUser{
		{Username: "alice", Email: "alice@example.com", Pass: "AlicePassword123!", Posts: []string{"Hello", "Second thoughts"}},
		{Username: "bob", Email: "bob@example.com", Pass: "BobPassword123!", Posts: []string{"First"}},
		{Username: "carol", Email: "carol@example.com", Pass: "CarolPassword123!"},
	}

	for _, s := range seeds {
		hash, err := hasher.Hash(s.Pass)
		if err != nil {
			zlog.Warn().Err(err).Str("email", s.Email).Msg("[seed] hash failed")
			continue
		}

		u, err := repo.CreateUser(ctx, domain.User{
			Username:     s.Username,
			Email:        s.Email,
			PasswordHash: hash,
		})
		if err != nil {
			// ignore duplicates (restart safe)
			continue
		}

		for _, title := range s.Posts {
			if _, err := repo.CreatePost(ctx, domain.Post{
				Title:     title,
				Content:   "Seeded post by " + u.Username,
				UserEmail: u.Email,
			}); err != nil {
				zlog.Warn().Err(err).Str("email", u.Email).Msg("[seed] post insert failed")
			}
		}
	}

	zlog.Info().Msg("[seed] users seeded")
}
