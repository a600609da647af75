package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/player"
)

// ─────────────────────────────────────────────
// Fakes
// ─────────────────────────────────────────────

type fakePlayerRepo struct {
	player.Repository
	byEmail   map[player.Email]*player.Player
	created   *player.Player
	createErr error
}

func (f *fakePlayerRepo) Create(_ context.Context, p *player.Player) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = p
	return nil
}

func (f *fakePlayerRepo) GetByEmail(_ context.Context, email player.Email) (*player.Player, error) {
	p, ok := f.byEmail[email]
	if !ok {
		return nil, player.ErrPlayerNotFound
	}
	return p, nil
}

func (f *fakePlayerRepo) Update(_ context.Context, _ *player.Player) error {
	return nil
}

// plainHasher makes hashes predictable for assertions.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (plainHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return errors.New("hash mismatch")
	}
	return nil
}

type staticTokenIssuer struct {
	issuedFor string
}

func (s *staticTokenIssuer) Generate(playerID string) (string, time.Time, error) {
	s.issuedFor = playerID
	return "token-" + playerID, time.Now().Add(time.Hour), nil
}

// ─────────────────────────────────────────────
// RegisterPlayer
// ─────────────────────────────────────────────

func TestRegisterPlayerHandler_CreatesPlayer(t *testing.T) {
	repo := &fakePlayerRepo{}
	h := NewRegisterPlayerHandler(repo, plainHasher{}, nil)

	res, err := h.Handle(context.Background(), RegisterPlayerCommand{
		Email:       "Aliya@Example.com",
		Password:    "correct-horse",
		DisplayName: "Алия",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, res.PlayerID)
	assert.Equal(t, "aliya@example.com", res.Email, "email normalized")
	assert.Equal(t, "Алия", res.DisplayName)

	require.NotNil(t, repo.created)
	assert.Equal(t, "hashed:correct-horse", repo.created.PasswordHash)
	assert.Equal(t, player.StatusActive, repo.created.Status)
}

func TestRegisterPlayerHandler_RejectsShortPassword(t *testing.T) {
	h := NewRegisterPlayerHandler(&fakePlayerRepo{}, plainHasher{}, nil)

	_, err := h.Handle(context.Background(), RegisterPlayerCommand{
		Email:       "a@example.com",
		Password:    "short",
		DisplayName: "A",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestRegisterPlayerHandler_PropagatesDuplicateEmail(t *testing.T) {
	repo := &fakePlayerRepo{createErr: player.ErrPlayerAlreadyExists}
	h := NewRegisterPlayerHandler(repo, plainHasher{}, nil)

	_, err := h.Handle(context.Background(), RegisterPlayerCommand{
		Email:       "a@example.com",
		Password:    "correct-horse",
		DisplayName: "A",
	})
	assert.ErrorIs(t, err, player.ErrPlayerAlreadyExists)
}

// ─────────────────────────────────────────────
// AuthenticatePlayer
// ─────────────────────────────────────────────

func enrolledPlayer(email, password string) *player.Player {
	return &player.Player{
		ID:           "p1",
		Email:        player.Email(email),
		PasswordHash: "hashed:" + password,
		DisplayName:  "Алия",
		Status:       player.StatusActive,
	}
}

func TestAuthenticatePlayerHandler_IssuesToken(t *testing.T) {
	p := enrolledPlayer("aliya@example.com", "correct-horse")
	repo := &fakePlayerRepo{byEmail: map[player.Email]*player.Player{p.Email: p}}
	issuer := &staticTokenIssuer{}
	h := NewAuthenticatePlayerHandler(repo, plainHasher{}, issuer)

	res, err := h.Handle(context.Background(), AuthenticatePlayerCommand{
		Email:    "aliya@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	assert.Equal(t, "p1", res.PlayerID)
	assert.Equal(t, "token-p1", res.Token)
	assert.Equal(t, "p1", issuer.issuedFor)
	assert.False(t, res.ExpiresAt.IsZero())
}

func TestAuthenticatePlayerHandler_WrongPassword(t *testing.T) {
	p := enrolledPlayer("aliya@example.com", "correct-horse")
	repo := &fakePlayerRepo{byEmail: map[player.Email]*player.Player{p.Email: p}}
	h := NewAuthenticatePlayerHandler(repo, plainHasher{}, &staticTokenIssuer{})

	_, err := h.Handle(context.Background(), AuthenticatePlayerCommand{
		Email:    "aliya@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticatePlayerHandler_UnknownEmailSameError(t *testing.T) {
	h := NewAuthenticatePlayerHandler(&fakePlayerRepo{}, plainHasher{}, &staticTokenIssuer{})

	_, err := h.Handle(context.Background(), AuthenticatePlayerCommand{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	// Неизвестный email не отличим от неверного пароля.
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticatePlayerHandler_SuspendedAccount(t *testing.T) {
	p := enrolledPlayer("aliya@example.com", "correct-horse")
	p.Status = player.StatusSuspended
	repo := &fakePlayerRepo{byEmail: map[player.Email]*player.Player{p.Email: p}}
	h := NewAuthenticatePlayerHandler(repo, plainHasher{}, &staticTokenIssuer{})

	_, err := h.Handle(context.Background(), AuthenticatePlayerCommand{
		Email:    "aliya@example.com",
		Password: "correct-horse",
	})
	assert.ErrorIs(t, err, player.ErrPlayerNotEnrolled)
}
