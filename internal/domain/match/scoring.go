package match

// ══════════════════════════════════════════════════════════════════════════════
// POINT CURVE
// ══════════════════════════════════════════════════════════════════════════════

// Кривая начисления очков рейтинга по занятому месту.
//
// Стандартная кривая линейная и убывающая: первое место получает Base
// очков, каждое следующее на Step меньше, но не ниже Floor. Игрок без
// зафиксированного места очков не получает.
const (
	// DefaultBasePoints - очки за первое место.
	DefaultBasePoints = 10
	// DefaultStepPoints - на сколько очков меньше каждое следующее место.
	DefaultStepPoints = 2
	// DefaultFloorPoints - минимум очков за любое зафиксированное место.
	DefaultFloorPoints = 1
)

// PointCurve задаёт правила преобразования места в очки рейтинга.
type PointCurve struct {
	// Base - очки за первое место.
	Base int

	// Step - убывание очков с каждым следующим местом.
	Step int

	// Floor - нижняя граница очков за зафиксированное место.
	Floor int
}

// DefaultPointCurve возвращает стандартную кривую 10/2/1:
// место 1 -> 10, 2 -> 8, 3 -> 6, 4 -> 4, 5 -> 2, 6 и ниже -> 1.
func DefaultPointCurve() PointCurve {
	return PointCurve{
		Base:  DefaultBasePoints,
		Step:  DefaultStepPoints,
		Floor: DefaultFloorPoints,
	}
}

// IsValid проверяет, что кривая корректна.
func (c PointCurve) IsValid() bool {
	return c.Base >= 1 && c.Step >= 0 && c.Floor >= 0 && c.Floor <= c.Base
}

// Resolve вычисляет очки рейтинга за занятое место.
//
// Место меньше 1 означает, что игрок участвовал без фиксации результата:
// такие игроки получают 0 очков и не влияют на статистику побед.
func (c PointCurve) Resolve(position int) int {
	if position < 1 {
		return 0
	}

	points := c.Base - (position-1)*c.Step
	if points < c.Floor {
		return c.Floor
	}
	return points
}

// ══════════════════════════════════════════════════════════════════════════════
// POINT AWARDS
// ══════════════════════════════════════════════════════════════════════════════

// PointAward - начисление очков одному игроку по итогам матча.
type PointAward struct {
	// PlayerID - идентификатор игрока.
	PlayerID string

	// Position - занятое место (0 для игроков без результата).
	Position int

	// Points - начисленные очки рейтинга.
	Points int

	// Won - игрок занял первое место.
	Won bool
}

// Awards возвращает начисления очков по результатам завершённого матча
// в порядке внесения результатов.
//
// Если ни у одного игрока не зафиксировано место, матч завершён без
// зачётного исхода: начислений нет и статистика не меняется.
func (m *Match) Awards() []PointAward {
	if m.Status != StatusFinished {
		return nil
	}

	graded := false
	for _, r := range m.Results {
		if r.Position >= 1 {
			graded = true
			break
		}
	}
	if !graded {
		return []PointAward{}
	}

	awards := make([]PointAward, 0, len(m.Results))
	for _, r := range m.Results {
		awards = append(awards, PointAward{
			PlayerID: r.PlayerID,
			Position: r.Position,
			Points:   r.Points,
			Won:      r.IsWin(),
		})
	}
	return awards
}
