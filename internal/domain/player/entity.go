// Package player содержит доменную модель игрока Tabletop Mastering.
// Это ядро бизнес-логики - здесь нет внешних зависимостей.
package player

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Email представляет адрес электронной почты игрока.
type Email string

// IsValid проверяет корректность формата email.
func (e Email) IsValid() bool {
	s := string(e)
	at := strings.Index(s, "@")
	dot := strings.LastIndex(s, ".")
	return len(s) >= 5 && len(s) <= 254 && at > 0 && dot > at+1 && dot < len(s)-1
}

// Normalize возвращает нормализованный email (нижний регистр, без пробелов).
func (e Email) Normalize() Email {
	return Email(strings.ToLower(strings.TrimSpace(string(e))))
}

// String возвращает строковое представление email.
func (e Email) String() string {
	return string(e)
}

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// Status определяет текущий статус аккаунта игрока.
type Status string

const (
	// StatusActive - игрок активен.
	StatusActive Status = "active"
	// StatusInactive - игрок давно не заходил.
	StatusInactive Status = "inactive"
	// StatusLeft - игрок удалил аккаунт (soft delete).
	StatusLeft Status = "left"
	// StatusSuspended - игрок временно заблокирован.
	StatusSuspended Status = "suspended"
)

// IsValid проверяет, что статус корректен.
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusLeft, StatusSuspended:
		return true
	default:
		return false
	}
}

// IsEnrolled возвращает true, если аккаунт всё ещё действителен.
func (s Status) IsEnrolled() bool {
	return s == StatusActive || s == StatusInactive
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: PLAYER
// ══════════════════════════════════════════════════════════════════════════════

// Player - центральная сущность системы, представляющая игрока.
type Player struct {
	// ID - внутренний уникальный идентификатор (UUID в строковом формате).
	ID string

	// Email - адрес электронной почты (уникальный, используется для входа).
	Email Email

	// PasswordHash - bcrypt-хеш пароля. Домен хранит его как непрозрачное значение;
	// хеширование и проверка выполняются в application-слое.
	PasswordHash string

	// DisplayName - отображаемое имя игрока.
	DisplayName string

	// AvatarURL - ссылка на аватар (опционально).
	AvatarURL string

	// Status - текущий статус аккаунта.
	Status Status

	// LastSeenAt - время последней активности.
	LastSeenAt time.Time

	// JoinedAt - время регистрации.
	JoinedAt time.Time

	// CreatedAt - время создания записи.
	CreatedAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidEmail - невалидный email.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrInvalidDisplayName - невалидное отображаемое имя.
	ErrInvalidDisplayName = errors.New("invalid display name: must be 1-100 chars")

	// ErrEmptyPasswordHash - пустой хеш пароля.
	ErrEmptyPasswordHash = errors.New("password hash cannot be empty")

	// ErrInvalidStatus - невалидный статус.
	ErrInvalidStatus = errors.New("invalid player status")

	// ErrPlayerNotFound - игрок не найден.
	ErrPlayerNotFound = errors.New("player not found")

	// ErrPlayerAlreadyExists - игрок уже существует.
	ErrPlayerAlreadyExists = errors.New("player already exists")

	// ErrPlayerNotEnrolled - аккаунт игрока больше не действителен.
	ErrPlayerNotEnrolled = errors.New("player account is not active")
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewPlayerParams содержит параметры для создания нового игрока.
type NewPlayerParams struct {
	ID           string
	Email        Email
	PasswordHash string
	DisplayName  string
	AvatarURL    string
}

// NewPlayer создаёт нового игрока с валидацией всех полей.
func NewPlayer(params NewPlayerParams) (*Player, error) {
	if params.ID == "" {
		return nil, errors.New("player id is required")
	}

	email := params.Email.Normalize()
	if !email.IsValid() {
		return nil, ErrInvalidEmail
	}

	if params.PasswordHash == "" {
		return nil, ErrEmptyPasswordHash
	}

	displayName := strings.TrimSpace(params.DisplayName)
	if len(displayName) == 0 || len(displayName) > 100 {
		return nil, ErrInvalidDisplayName
	}

	now := time.Now().UTC()

	return &Player{
		ID:           params.ID,
		Email:        email,
		PasswordHash: params.PasswordHash,
		DisplayName:  displayName,
		AvatarURL:    params.AvatarURL,
		Status:       StatusActive,
		LastSeenAt:   now,
		JoinedAt:     now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS (Business Logic)
// ══════════════════════════════════════════════════════════════════════════════

// Touch обновляет время последней активности.
func (p *Player) Touch() {
	p.LastSeenAt = time.Now().UTC()
	p.UpdatedAt = p.LastSeenAt

	// Если был неактивен, возвращаем в активное состояние
	if p.Status == StatusInactive {
		p.Status = StatusActive
	}
}

// Rename меняет отображаемое имя.
func (p *Player) Rename(name string) error {
	name = strings.TrimSpace(name)
	if len(name) == 0 || len(name) > 100 {
		return ErrInvalidDisplayName
	}

	p.DisplayName = name
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// ChangeAvatar заменяет ссылку на аватар. Пустая строка убирает аватар.
func (p *Player) ChangeAvatar(url string) {
	p.AvatarURL = strings.TrimSpace(url)
	p.UpdatedAt = time.Now().UTC()
}

// ChangePassword заменяет хеш пароля.
func (p *Player) ChangePassword(newHash string) error {
	if newHash == "" {
		return ErrEmptyPasswordHash
	}

	p.PasswordHash = newHash
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkInactive помечает игрока как неактивного.
func (p *Player) MarkInactive() error {
	if !p.Status.IsEnrolled() {
		return ErrPlayerNotEnrolled
	}

	p.Status = StatusInactive
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// Leave помечает аккаунт как удалённый (soft delete).
func (p *Player) Leave() error {
	if !p.Status.IsEnrolled() {
		return ErrPlayerNotEnrolled
	}

	p.Status = StatusLeft
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// Suspend временно блокирует игрока.
func (p *Player) Suspend() error {
	if !p.Status.IsEnrolled() {
		return ErrPlayerNotEnrolled
	}

	p.Status = StatusSuspended
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// Reinstate восстанавливает заблокированного игрока.
func (p *Player) Reinstate() error {
	if p.Status != StatusSuspended {
		return errors.New("can only reinstate suspended players")
	}

	p.Status = StatusActive
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// DaysSinceLastSeen возвращает количество дней с последнего визита.
func (p *Player) DaysSinceLastSeen() int {
	return int(time.Since(p.LastSeenAt).Hours() / 24)
}

// IsNewbie возвращает true, если игрок зарегистрирован менее 7 дней назад.
func (p *Player) IsNewbie() bool {
	return time.Since(p.JoinedAt) < 7*24*time.Hour
}

// String возвращает строковое представление игрока для логирования.
func (p *Player) String() string {
	return fmt.Sprintf(
		"Player{ID: %s, Email: %s, Status: %s}",
		p.ID, p.Email, p.Status,
	)
}

// Clone создаёт копию игрока.
func (p *Player) Clone() *Player {
	if p == nil {
		return nil
	}

	clone := *p
	return &clone
}
