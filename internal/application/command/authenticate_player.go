package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/player"
)

// ══════════════════════════════════════════════════════════════════════════════
// AUTHENTICATE PLAYER COMMAND
// Verifies credentials and issues an access token.
// ══════════════════════════════════════════════════════════════════════════════

// ErrInvalidCredentials is returned for a wrong email/password pair.
// The same error covers unknown emails so responses do not reveal
// which accounts exist.
var ErrInvalidCredentials = errors.New("invalid email or password")

// AuthenticatePlayerCommand contains login credentials.
type AuthenticatePlayerCommand struct {
	Email    string
	Password string
}

// Validate validates the command.
func (c AuthenticatePlayerCommand) Validate() error {
	if c.Email == "" || c.Password == "" {
		return ErrInvalidCredentials
	}
	return nil
}

// AuthenticatePlayerResult contains the issued token.
type AuthenticatePlayerResult struct {
	PlayerID    string
	DisplayName string
	Token       string
	ExpiresAt   time.Time
}

// TokenIssuer issues signed access tokens.
// Implemented by pkg/token.Manager.
type TokenIssuer interface {
	Generate(playerID string) (string, time.Time, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// AuthenticatePlayerHandler handles the AuthenticatePlayerCommand.
type AuthenticatePlayerHandler struct {
	playerRepo player.Repository
	hasher     PasswordHasher
	tokens     TokenIssuer
}

// NewAuthenticatePlayerHandler creates a new AuthenticatePlayerHandler.
func NewAuthenticatePlayerHandler(
	playerRepo player.Repository,
	hasher PasswordHasher,
	tokens TokenIssuer,
) *AuthenticatePlayerHandler {
	return &AuthenticatePlayerHandler{
		playerRepo: playerRepo,
		hasher:     hasher,
		tokens:     tokens,
	}
}

// Handle executes the authenticate player command.
func (h *AuthenticatePlayerHandler) Handle(ctx context.Context, cmd AuthenticatePlayerCommand) (*AuthenticatePlayerResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	p, err := h.playerRepo.GetByEmail(ctx, player.Email(cmd.Email))
	if err != nil {
		if errors.Is(err, player.ErrPlayerNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authenticate_player: %w", err)
	}

	if !p.Status.IsEnrolled() {
		return nil, player.ErrPlayerNotEnrolled
	}

	if err := h.hasher.Compare(p.PasswordHash, cmd.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	tok, expiresAt, err := h.tokens.Generate(p.ID)
	if err != nil {
		return nil, fmt.Errorf("authenticate_player: failed to issue token: %w", err)
	}

	// Best-effort activity tracking; login succeeds either way.
	p.Touch()
	_ = h.playerRepo.Update(ctx, p)

	return &AuthenticatePlayerResult{
		PlayerID:    p.ID,
		DisplayName: p.DisplayName,
		Token:       tok,
		ExpiresAt:   expiresAt,
	}, nil
}
