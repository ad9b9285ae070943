package session

import (
	"crypto/rand"
	"encoding/base64"
	"strings"
	"sync"
	"time"

	"github.com/drawblin/drawblin/internal/dependencies/clock"
	"github.com/drawblin/drawblin/internal/model"
	"github.com/drawblin/drawblin/internal/services/rewards"

	"github.com/google/uuid"
)

// Session binds an opaque token to a player identity. Identity is
// whatever the external wallet/auth provider vouched for upstream;
// this service only carries it between the HTTP join and the
// websocket upgrade.
type Session struct {
	Token         string
	PlayerID      model.PlayerID
	DisplayName   string
	Avatar        model.Avatar
	PayoutAddress string
	CreatedAt     time.Time
	ExpiresAt     time.Time
}

// Config holds configuration for the session service
type Config struct {
	SessionDuration time.Duration
}

// DefaultConfig returns default session configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration: 24 * time.Hour,
	}
}

// Service issues and resolves player sessions
type Service struct {
	clock clock.Clock

	mu       sync.RWMutex
	sessions map[string]*Session

	sessionDuration time.Duration
}

// New creates a new session service
func New(clk clock.Clock, cfg Config) *Service {
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = DefaultConfig().SessionDuration
	}
	return &Service{
		clock:           clk,
		sessions:        make(map[string]*Session),
		sessionDuration: cfg.SessionDuration,
	}
}

// Create issues a session for a display name, avatar and optional
// payout address
func (s *Service) Create(name string, avatar model.Avatar, payoutAddress string) (*Session, error) {
	name = strings.TrimSpace(name)
	if name == "" || len([]rune(name)) > model.MaxDisplayNameLength {
		return nil, model.ErrInvalidName
	}
	if avatar.Body < 0 || avatar.Face < 0 || avatar.Color < 0 {
		return nil, model.ErrInvalidAvatar
	}
	if payoutAddress != "" && !rewards.ValidAddress(payoutAddress) {
		return nil, model.ErrInvalidAddress
	}

	now := s.clock.Now()
	sess := &Session{
		Token:         generateToken(),
		PlayerID:      model.PlayerID("p_" + uuid.NewString()),
		DisplayName:   name,
		Avatar:        avatar,
		PayoutAddress: payoutAddress,
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.sessionDuration),
	}

	s.mu.Lock()
	s.sessions[sess.Token] = sess
	s.mu.Unlock()

	return sess, nil
}

// Resolve returns the session for a token, or ErrInvalidSession if
// unknown or expired
func (s *Service) Resolve(token string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return nil, model.ErrInvalidSession
	}
	if s.clock.Now().After(sess.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return nil, model.ErrInvalidSession
	}
	return sess, nil
}

// Revoke drops a session
func (s *Service) Revoke(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// generateToken returns a URL-safe random token
func generateToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failure is unrecoverable
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
