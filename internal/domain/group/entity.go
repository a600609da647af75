// Package group содержит доменную модель игровой группы Tabletop Mastering.
// Группа объединяет игроков, которые вместе играют в настольные игры:
// участники, роли, проверки прав доступа.
package group

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Role определяет роль участника в группе.
type Role string

const (
	// RoleAdmin - администратор группы: управляет участниками, играми и матчами.
	RoleAdmin Role = "admin"
	// RoleMember - обычный участник.
	RoleMember Role = "member"
)

// IsValid проверяет, что роль корректна.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleMember
}

// CanManage возвращает true, если роль позволяет управлять группой.
func (r Role) CanManage() bool {
	return r == RoleAdmin
}

// ══════════════════════════════════════════════════════════════════════════════
// MEMBER
// ══════════════════════════════════════════════════════════════════════════════

// Member представляет участника группы.
type Member struct {
	// PlayerID - идентификатор игрока.
	PlayerID string

	// Role - роль в группе.
	Role Role

	// JoinedAt - время вступления.
	JoinedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: GROUP
// ══════════════════════════════════════════════════════════════════════════════

// Group - игровая группа.
//
// Участники хранятся в map по идентификатору игрока: проверки членства
// и прав выполняются за O(1) вместо линейного прохода по списку.
type Group struct {
	// ID - внутренний уникальный идентификатор (UUID в строковом формате).
	ID string

	// Name - название группы.
	Name string

	// Description - описание группы.
	Description string

	// OwnerID - идентификатор создателя группы.
	OwnerID string

	// Members - участники группы по идентификатору игрока.
	Members map[string]Member

	// IsDeleted - группа удалена (soft delete).
	IsDeleted bool

	// CreatedAt - время создания записи.
	CreatedAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidName - невалидное название группы.
	ErrInvalidName = errors.New("invalid group name: must be 1-100 chars")

	// ErrGroupNotFound - группа не найдена.
	ErrGroupNotFound = errors.New("group not found")

	// ErrGroupAlreadyExists - группа с таким названием уже существует.
	ErrGroupAlreadyExists = errors.New("group already exists")

	// ErrGroupDeleted - группа удалена.
	ErrGroupDeleted = errors.New("group is deleted")

	// ErrAlreadyMember - игрок уже состоит в группе.
	ErrAlreadyMember = errors.New("player is already a member of the group")

	// ErrNotMember - игрок не состоит в группе.
	ErrNotMember = errors.New("player is not a member of the group")

	// ErrNotAdmin - у игрока нет прав администратора группы.
	ErrNotAdmin = errors.New("player is not an admin of the group")

	// ErrLastAdmin - последний администратор не может покинуть группу.
	ErrLastAdmin = errors.New("the last admin cannot leave the group")

	// ErrInvalidRole - невалидная роль.
	ErrInvalidRole = errors.New("invalid member role")
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewGroupParams содержит параметры для создания новой группы.
type NewGroupParams struct {
	ID          string
	Name        string
	Description string
	OwnerID     string
}

// NewGroup создаёт новую группу. Создатель автоматически становится
// администратором.
func NewGroup(params NewGroupParams) (*Group, error) {
	if params.ID == "" {
		return nil, errors.New("group id is required")
	}

	name := strings.TrimSpace(params.Name)
	if len(name) == 0 || len(name) > 100 {
		return nil, ErrInvalidName
	}

	if params.OwnerID == "" {
		return nil, errors.New("group owner id is required")
	}

	now := time.Now().UTC()

	g := &Group{
		ID:          params.ID,
		Name:        name,
		Description: strings.TrimSpace(params.Description),
		OwnerID:     params.OwnerID,
		Members:     make(map[string]Member),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	g.Members[params.OwnerID] = Member{
		PlayerID: params.OwnerID,
		Role:     RoleAdmin,
		JoinedAt: now,
	}

	return g, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// MEMBERSHIP (Business Logic)
// ══════════════════════════════════════════════════════════════════════════════

// IsMember проверяет, состоит ли игрок в группе.
func (g *Group) IsMember(playerID string) bool {
	_, ok := g.Members[playerID]
	return ok
}

// IsAdmin проверяет, является ли игрок администратором группы.
func (g *Group) IsAdmin(playerID string) bool {
	m, ok := g.Members[playerID]
	return ok && m.Role.CanManage()
}

// AddMember добавляет игрока в группу.
func (g *Group) AddMember(playerID string, role Role) error {
	if g.IsDeleted {
		return ErrGroupDeleted
	}
	if playerID == "" {
		return errors.New("player id is required")
	}
	if !role.IsValid() {
		return ErrInvalidRole
	}
	if g.IsMember(playerID) {
		return ErrAlreadyMember
	}

	g.Members[playerID] = Member{
		PlayerID: playerID,
		Role:     role,
		JoinedAt: time.Now().UTC(),
	}
	g.UpdatedAt = time.Now().UTC()
	return nil
}

// RemoveMember убирает игрока из группы.
// Последний администратор не может покинуть группу.
func (g *Group) RemoveMember(playerID string) error {
	m, ok := g.Members[playerID]
	if !ok {
		return ErrNotMember
	}

	if m.Role.CanManage() && g.adminCount() == 1 && len(g.Members) > 1 {
		return ErrLastAdmin
	}

	delete(g.Members, playerID)
	g.UpdatedAt = time.Now().UTC()
	return nil
}

// ChangeRole меняет роль участника.
func (g *Group) ChangeRole(playerID string, role Role) error {
	m, ok := g.Members[playerID]
	if !ok {
		return ErrNotMember
	}
	if !role.IsValid() {
		return ErrInvalidRole
	}

	// Понижение последнего администратора оставило бы группу без управления
	if m.Role.CanManage() && !role.CanManage() && g.adminCount() == 1 {
		return ErrLastAdmin
	}

	m.Role = role
	g.Members[playerID] = m
	g.UpdatedAt = time.Now().UTC()
	return nil
}

// MemberCount возвращает количество участников.
func (g *Group) MemberCount() int {
	return len(g.Members)
}

// MemberIDs возвращает отсортированный список идентификаторов участников.
func (g *Group) MemberIDs() []string {
	ids := make([]string, 0, len(g.Members))
	for id := range g.Members {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ContainsAll проверяет, что все указанные игроки состоят в группе.
func (g *Group) ContainsAll(playerIDs []string) bool {
	for _, id := range playerIDs {
		if !g.IsMember(id) {
			return false
		}
	}
	return true
}

// adminCount возвращает количество администраторов.
func (g *Group) adminCount() int {
	count := 0
	for _, m := range g.Members {
		if m.Role.CanManage() {
			count++
		}
	}
	return count
}

// ══════════════════════════════════════════════════════════════════════════════
// LIFECYCLE
// ══════════════════════════════════════════════════════════════════════════════

// Rename меняет название группы.
func (g *Group) Rename(name string) error {
	name = strings.TrimSpace(name)
	if len(name) == 0 || len(name) > 100 {
		return ErrInvalidName
	}

	g.Name = name
	g.UpdatedAt = time.Now().UTC()
	return nil
}

// Delete помечает группу как удалённую (soft delete).
func (g *Group) Delete() error {
	if g.IsDeleted {
		return ErrGroupDeleted
	}

	g.IsDeleted = true
	g.UpdatedAt = time.Now().UTC()
	return nil
}

// String возвращает строковое представление группы для логирования.
func (g *Group) String() string {
	return fmt.Sprintf(
		"Group{ID: %s, Name: %s, Members: %d}",
		g.ID, g.Name, len(g.Members),
	)
}

// Clone создаёт глубокую копию группы.
func (g *Group) Clone() *Group {
	if g == nil {
		return nil
	}

	clone := *g
	clone.Members = make(map[string]Member, len(g.Members))
	for id, m := range g.Members {
		clone.Members[id] = m
	}
	return &clone
}
