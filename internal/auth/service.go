package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/arenalab/promptarena/internal/models"
	"github.com/arenalab/promptarena/pkg/utils"
	"github.com/sirupsen/logrus"
)

// Service is an in-memory credential and session store. Passwords are kept
// in the clear because this backs a demo account, not real identities.
type Service struct {
	mu       sync.RWMutex
	users    []account
	sessions map[string]string // token -> user id
	logger   *logrus.Logger
}

type account struct {
	user     models.User
	password string
}

// NewService seeds the store with the demo account.
func NewService(logger *logrus.Logger) *Service {
	return &Service{
		users: []account{{
			user: models.User{
				ID:    "user-1",
				Name:  "Demo User",
				Email: "demo@example.com",
			},
			password: "password123",
		}},
		sessions: make(map[string]string),
		logger:   logger,
	}
}

// Login checks credentials and mints a session token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, acct := range s.users {
		if acct.user.Email == email && acct.password == password {
			token := utils.GenerateSessionToken()
			s.sessions[token] = acct.user.ID

			s.logger.WithField("user_id", acct.user.ID).Info("User logged in")

			user := acct.user
			return token, &user, nil
		}
	}

	return "", nil, models.ErrInvalidCredentials
}

// Register creates a new account and signs it in.
func (s *Service) Register(ctx context.Context, name, email, password string) (string, *models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return "", nil, models.ErrInvalidCredentials
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, acct := range s.users {
		if acct.user.Email == email {
			return "", nil, models.ErrUserExists
		}
	}

	user := models.User{
		ID:    fmt.Sprintf("user-%d", len(s.users)+1),
		Name:  name,
		Email: email,
	}
	s.users = append(s.users, account{user: user, password: password})

	token := utils.GenerateSessionToken()
	s.sessions[token] = user.ID

	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"email":   email,
	}).Info("User registered")

	return token, &user, nil
}

// Logout invalidates a session token. Unknown tokens are a no-op.
func (s *Service) Logout(ctx context.Context, token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// CurrentUser resolves a session token to its user, or nil when the token
// is unknown or expired.
func (s *Service) CurrentUser(ctx context.Context, token string) *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userID, ok := s.sessions[token]
	if !ok {
		return nil
	}

	for _, acct := range s.users {
		if acct.user.ID == userID {
			user := acct.user
			return &user
		}
	}

	return nil
}
