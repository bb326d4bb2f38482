package account

import (
	"time"

	"github.com/rs/zerolog"
)

type Service struct {
	store  Store
	hasher PasswordHasher
	pub    EventPublisher

	log   zerolog.Logger
	audit func(action string, fields map[string]string)
	now   func() time.Time
}

func NewService(store Store, hasher PasswordHasher, pub EventPublisher) *Service {
	return &Service{
		store:  store,
		hasher: hasher,
		pub:    pub,
		log:    zerolog.Nop(),
		audit:  func(string, map[string]string) {},
		now:    time.Now,
	}
}

func (s *Service) WithAudit(fn func(action string, fields map[string]string)) *Service {
	if fn != nil {
		s.audit = fn
	}
	return s
}

func (s *Service) WithLogger(l zerolog.Logger) *Service {
	s.log = l
	return s
}

// publish runs a best-effort publish; the account operation has already succeeded.
func (s *Service) publish(event string, fn func() error) {
	if s.pub == nil {
		return
	}
	if err := fn(); err != nil {
		s.log.Warn().Err(err).Str("event", event).Msg("event publish failed")
	}
}
