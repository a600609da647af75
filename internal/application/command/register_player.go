// Package command contains write operations (CQRS - Commands).
// Commands are responsible for changing the state of the system.
package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/player"
	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER PLAYER COMMAND
// Creates a new player account with a hashed password.
// ══════════════════════════════════════════════════════════════════════════════

// RegisterPlayerCommand contains the data needed to register a player.
type RegisterPlayerCommand struct {
	// Email is the login email, unique across the system.
	Email string

	// Password is the plain-text password. It is hashed before storage
	// and never persisted or logged as-is.
	Password string

	// DisplayName is the visible player name.
	DisplayName string

	// AvatarURL is an optional avatar link.
	AvatarURL string
}

// Validate validates the command.
func (c RegisterPlayerCommand) Validate() error {
	if strings.TrimSpace(c.Email) == "" {
		return errors.New("register_player: email is required")
	}
	if len(c.Password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if strings.TrimSpace(c.DisplayName) == "" {
		return errors.New("register_player: display name is required")
	}
	return nil
}

// RegisterPlayerResult contains the result of registration.
type RegisterPlayerResult struct {
	// PlayerID is the internal ID of the new player.
	PlayerID string

	// Email is the normalized login email.
	Email string

	// DisplayName is the stored display name.
	DisplayName string

	// RegisteredAt is when the account was created.
	RegisteredAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES (Interfaces)
// ══════════════════════════════════════════════════════════════════════════════

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// ErrPasswordTooShort is returned for passwords below MinPasswordLength.
var ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", MinPasswordLength)

// PasswordHasher hashes and verifies passwords.
// The bcrypt implementation lives in the infrastructure layer.
type PasswordHasher interface {
	// Hash returns a one-way hash of the password.
	Hash(password string) (string, error)

	// Compare checks a plain password against a stored hash.
	// Returns an error on mismatch.
	Compare(hash, password string) error
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// RegisterPlayerHandler handles the RegisterPlayerCommand.
type RegisterPlayerHandler struct {
	playerRepo     player.Repository
	hasher         PasswordHasher
	eventPublisher shared.EventPublisher
}

// NewRegisterPlayerHandler creates a new RegisterPlayerHandler.
// eventPublisher may be nil.
func NewRegisterPlayerHandler(
	playerRepo player.Repository,
	hasher PasswordHasher,
	eventPublisher shared.EventPublisher,
) *RegisterPlayerHandler {
	return &RegisterPlayerHandler{
		playerRepo:     playerRepo,
		hasher:         hasher,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the register player command.
func (h *RegisterPlayerHandler) Handle(ctx context.Context, cmd RegisterPlayerCommand) (*RegisterPlayerResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("register_player: validation failed: %w", err)
	}

	hash, err := h.hasher.Hash(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("register_player: failed to hash password: %w", err)
	}

	p, err := player.NewPlayer(player.NewPlayerParams{
		ID:           uuid.NewString(),
		Email:        player.Email(cmd.Email),
		PasswordHash: hash,
		DisplayName:  cmd.DisplayName,
		AvatarURL:    cmd.AvatarURL,
	})
	if err != nil {
		return nil, fmt.Errorf("register_player: %w", err)
	}

	// Unique email is enforced by the repository; no separate existence
	// check so concurrent registrations cannot race past it.
	if err := h.playerRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("register_player: %w", err)
	}

	if h.eventPublisher != nil {
		event := shared.NewPlayerRegisteredEvent(p.ID, p.Email.String(), p.DisplayName)
		if err := h.eventPublisher.Publish(event); err != nil {
			// Registration already committed; the event is best-effort.
			_ = err
		}
	}

	return &RegisterPlayerResult{
		PlayerID:     p.ID,
		Email:        p.Email.String(),
		DisplayName:  p.DisplayName,
		RegisteredAt: p.JoinedAt,
	}, nil
}
