// Package match содержит доменную модель матча: запланированной или
// сыгранной партии в настольную игру внутри группы. Здесь же живёт
// логика преобразования итоговых мест в очки рейтинга.
package match

import (
	"errors"
	"fmt"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Status определяет состояние матча.
type Status string

const (
	// StatusScheduled - матч запланирован, результаты ещё не внесены.
	StatusScheduled Status = "scheduled"
	// StatusFinished - матч сыгран, результаты зафиксированы.
	StatusFinished Status = "finished"
	// StatusCancelled - матч отменён участниками.
	StatusCancelled Status = "cancelled"
	// StatusExpired - запланированное время прошло, результаты не внесены.
	StatusExpired Status = "expired"
)

// IsValid проверяет, что статус корректен.
func (s Status) IsValid() bool {
	switch s {
	case StatusScheduled, StatusFinished, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// IsTerminal возвращает true, если матч в конечном состоянии.
func (s Status) IsTerminal() bool {
	return s == StatusFinished || s == StatusCancelled || s == StatusExpired
}

// ══════════════════════════════════════════════════════════════════════════════
// RESULT
// ══════════════════════════════════════════════════════════════════════════════

// Result - итог одного игрока в завершённом матче.
type Result struct {
	// PlayerID - идентификатор игрока.
	PlayerID string

	// Position - занятое место, начиная с 1. Ноль означает,
	// что игрок участвовал, но место не зафиксировано.
	Position int

	// Score - сырой игровой счёт (победные очки партии), опционально.
	Score int

	// Points - очки рейтинга, начисленные за это место.
	Points int
}

// IsRanked возвращает true, если для игрока зафиксировано место.
func (r Result) IsRanked() bool {
	return r.Position >= 1
}

// IsWin возвращает true, если игрок занял первое место.
func (r Result) IsWin() bool {
	return r.Position == 1
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: MATCH
// ══════════════════════════════════════════════════════════════════════════════

// Match - партия в настольную игру.
//
// Жизненный цикл: scheduled -> finished | cancelled | expired.
// Конечные состояния необратимы.
type Match struct {
	// ID - внутренний уникальный идентификатор (UUID в строковом формате).
	ID string

	// GroupID - группа, в которой проходит матч.
	GroupID string

	// GameID - игра из каталога группы.
	GameID string

	// CreatedBy - идентификатор игрока, запланировавшего матч.
	CreatedBy string

	// Status - текущее состояние матча.
	Status Status

	// ScheduledAt - запланированное время партии.
	ScheduledAt time.Time

	// Location - место проведения (свободный текст).
	Location string

	// ParticipantIDs - заявленные участники в порядке добавления.
	ParticipantIDs []string

	// Results - итоги игроков; заполняется при завершении матча.
	Results []Result

	// FinishedAt - время фиксации результатов.
	FinishedAt *time.Time

	// CreatedAt - время создания записи.
	CreatedAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrMatchNotFound - матч не найден.
	ErrMatchNotFound = errors.New("match not found")

	// ErrNotScheduled - операция допустима только для запланированного матча.
	ErrNotScheduled = errors.New("match is not in scheduled state")

	// ErrAlreadyFinished - матч уже завершён.
	ErrAlreadyFinished = errors.New("match is already finished")

	// ErrNoParticipants - матч без участников.
	ErrNoParticipants = errors.New("match requires at least one participant")

	// ErrDuplicateParticipant - игрок заявлен дважды.
	ErrDuplicateParticipant = errors.New("duplicate participant in match")

	// ErrNotParticipant - результат внесён для игрока, не заявленного в матче.
	ErrNotParticipant = errors.New("player is not a participant of the match")

	// ErrDuplicatePosition - два игрока на одном месте.
	ErrDuplicatePosition = errors.New("duplicate position in match results")

	// ErrInvalidPosition - место меньше 1.
	ErrInvalidPosition = errors.New("position must be >= 1")

	// ErrNoResults - завершение матча без единого результата.
	ErrNoResults = errors.New("match requires at least one result to finish")

	// ErrScheduledInPast - запланированное время в прошлом.
	ErrScheduledInPast = errors.New("scheduled time is in the past")

	// ErrPlayerCountUnsupported - число участников вне диапазона игры.
	ErrPlayerCountUnsupported = errors.New("player count is not supported by the game")
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewMatchParams содержит параметры для планирования матча.
type NewMatchParams struct {
	ID             string
	GroupID        string
	GameID         string
	CreatedBy      string
	ScheduledAt    time.Time
	Location       string
	ParticipantIDs []string
}

// NewMatch планирует новый матч с валидацией.
func NewMatch(params NewMatchParams) (*Match, error) {
	if params.ID == "" {
		return nil, errors.New("match id is required")
	}
	if params.GroupID == "" {
		return nil, errors.New("match group id is required")
	}
	if params.GameID == "" {
		return nil, errors.New("match game id is required")
	}
	if params.CreatedBy == "" {
		return nil, errors.New("match creator id is required")
	}
	if len(params.ParticipantIDs) == 0 {
		return nil, ErrNoParticipants
	}

	seen := make(map[string]struct{}, len(params.ParticipantIDs))
	for _, id := range params.ParticipantIDs {
		if id == "" {
			return nil, errors.New("participant id is required")
		}
		if _, ok := seen[id]; ok {
			return nil, ErrDuplicateParticipant
		}
		seen[id] = struct{}{}
	}

	now := time.Now().UTC()

	participants := make([]string, len(params.ParticipantIDs))
	copy(participants, params.ParticipantIDs)

	return &Match{
		ID:             params.ID,
		GroupID:        params.GroupID,
		GameID:         params.GameID,
		CreatedBy:      params.CreatedBy,
		Status:         StatusScheduled,
		ScheduledAt:    params.ScheduledAt.UTC(),
		Location:       params.Location,
		ParticipantIDs: participants,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// BUSINESS LOGIC
// ══════════════════════════════════════════════════════════════════════════════

// IsParticipant проверяет, заявлен ли игрок в матче.
func (m *Match) IsParticipant(playerID string) bool {
	for _, id := range m.ParticipantIDs {
		if id == playerID {
			return true
		}
	}
	return false
}

// AddParticipant добавляет игрока в запланированный матч.
func (m *Match) AddParticipant(playerID string) error {
	if m.Status != StatusScheduled {
		return ErrNotScheduled
	}
	if playerID == "" {
		return errors.New("participant id is required")
	}
	if m.IsParticipant(playerID) {
		return ErrDuplicateParticipant
	}

	m.ParticipantIDs = append(m.ParticipantIDs, playerID)
	m.UpdatedAt = time.Now().UTC()
	return nil
}

// RemoveParticipant убирает игрока из запланированного матча.
func (m *Match) RemoveParticipant(playerID string) error {
	if m.Status != StatusScheduled {
		return ErrNotScheduled
	}
	if len(m.ParticipantIDs) == 1 && m.ParticipantIDs[0] == playerID {
		return ErrNoParticipants
	}

	for i, id := range m.ParticipantIDs {
		if id == playerID {
			m.ParticipantIDs = append(m.ParticipantIDs[:i], m.ParticipantIDs[i+1:]...)
			m.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return ErrNotParticipant
}

// Reschedule переносит запланированный матч на другое время.
func (m *Match) Reschedule(at time.Time) error {
	if m.Status != StatusScheduled {
		return ErrNotScheduled
	}

	m.ScheduledAt = at.UTC()
	m.UpdatedAt = time.Now().UTC()
	return nil
}

// Finish переводит матч в состояние finished и фиксирует результаты.
//
// Правила валидации:
//   - матч должен быть в состоянии scheduled;
//   - каждый результат принадлежит заявленному участнику;
//   - игрок встречается в результатах не более одного раза;
//   - зафиксированные места уникальны;
//   - очки рейтинга вычисляются из мест кривой начисления.
//
// Участники без результата считаются не сыгравшими: очков не получают,
// в статистику не попадают.
func (m *Match) Finish(results []Result, curve PointCurve) error {
	switch m.Status {
	case StatusScheduled:
	case StatusFinished:
		return ErrAlreadyFinished
	default:
		return ErrNotScheduled
	}

	if len(results) == 0 {
		return ErrNoResults
	}

	seenPlayers := make(map[string]struct{}, len(results))
	seenPositions := make(map[int]struct{}, len(results))

	finished := make([]Result, 0, len(results))
	for _, r := range results {
		if !m.IsParticipant(r.PlayerID) {
			return fmt.Errorf("%w: %s", ErrNotParticipant, r.PlayerID)
		}
		if _, ok := seenPlayers[r.PlayerID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateParticipant, r.PlayerID)
		}
		seenPlayers[r.PlayerID] = struct{}{}

		if r.Position < 0 {
			return ErrInvalidPosition
		}
		if r.Position >= 1 {
			if _, ok := seenPositions[r.Position]; ok {
				return fmt.Errorf("%w: position %d", ErrDuplicatePosition, r.Position)
			}
			seenPositions[r.Position] = struct{}{}
		}

		r.Points = curve.Resolve(r.Position)
		finished = append(finished, r)
	}

	now := time.Now().UTC()

	m.Results = finished
	m.Status = StatusFinished
	m.FinishedAt = &now
	m.UpdatedAt = now
	return nil
}

// Cancel отменяет запланированный матч.
func (m *Match) Cancel() error {
	if m.Status != StatusScheduled {
		return ErrNotScheduled
	}

	m.Status = StatusCancelled
	m.UpdatedAt = time.Now().UTC()
	return nil
}

// Expire переводит просроченный матч в состояние expired.
func (m *Match) Expire(now time.Time) error {
	if m.Status != StatusScheduled {
		return ErrNotScheduled
	}
	if now.Before(m.ScheduledAt) {
		return errors.New("match is not overdue yet")
	}

	m.Status = StatusExpired
	m.UpdatedAt = now.UTC()
	return nil
}

// Winner возвращает результат победителя завершённого матча.
// Второе значение false, если победитель не зафиксирован.
func (m *Match) Winner() (Result, bool) {
	for _, r := range m.Results {
		if r.IsWin() {
			return r, true
		}
	}
	return Result{}, false
}

// String возвращает строковое представление матча для логирования.
func (m *Match) String() string {
	return fmt.Sprintf(
		"Match{ID: %s, Game: %s, Status: %s, Participants: %d}",
		m.ID, m.GameID, m.Status, len(m.ParticipantIDs),
	)
}

// Clone создаёт глубокую копию матча.
func (m *Match) Clone() *Match {
	if m == nil {
		return nil
	}

	clone := *m
	clone.ParticipantIDs = make([]string, len(m.ParticipantIDs))
	copy(clone.ParticipantIDs, m.ParticipantIDs)
	clone.Results = make([]Result, len(m.Results))
	copy(clone.Results, m.Results)
	if m.FinishedAt != nil {
		t := *m.FinishedAt
		clone.FinishedAt = &t
	}
	return &clone
}
