package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"chessbot/internal/storage"
)

// MaxGames caps the number of games held in memory.
const MaxGames = 1000

var (
	ErrGameNotFound    = errors.New("game not found")
	ErrGameOver        = errors.New("game is over")
	ErrNotComputerTurn = errors.New("side to move is not a computer player")
	ErrNotHumanTurn    = errors.New("side to move is not a human player")
	ErrIllegalMove     = errors.New("illegal move")
	ErrTooManyGames    = errors.New("game limit reached")
)

// Service owns every running game with optional persistence.
// All game operations, searches included, run under one lock.
type Service struct {
	games  map[string]*session
	mu     sync.RWMutex
	store  *storage.Store // nil if persistence disabled
	waiter *WaitRegistry
	log    zerolog.Logger
}

// New creates a new service instance with optional storage
func New(store *storage.Store, log zerolog.Logger) *Service {
	return &Service{
		games:  make(map[string]*session),
		store:  store,
		waiter: NewWaitRegistry(),
		log:    log.With().Str("component", "service").Logger(),
	}
}

// generateGameID creates a new unique game ID. Caller holds the lock.
func (s *Service) generateGameID() string {
	for {
		id := uuid.New().String()
		if _, exists := s.games[id]; !exists {
			return id
		}
	}
}

// lookup returns the session for gameID. Caller holds the lock.
func (s *Service) lookup(gameID string) (*session, error) {
	sess, ok := s.games[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return sess, nil
}

// GameCount returns the number of games in memory.
func (s *Service) GameCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}

// GetStorageHealth returns the storage component status
func (s *Service) GetStorageHealth() string {
	if s.store == nil {
		return "disabled"
	}
	if s.store.IsHealthy() {
		return "ok"
	}
	return "degraded"
}

// Close releases waiting clients, drops all games and closes storage.
func (s *Service) Close() error {
	var errs []error
	if err := s.waiter.Shutdown(5 * time.Second); err != nil {
		errs = append(errs, err)
	}

	s.mu.Lock()
	s.games = make(map[string]*session)
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
