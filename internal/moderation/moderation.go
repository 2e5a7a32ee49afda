// Package moderation описывает машину состояний модерации: закрытые
// перечисления сущностей, статусов и действий, а также таблицу легальных
// переходов. Проверка легальности перехода выполняется здесь, в одном месте,
// а не в обработчиках.
package moderation

import "fmt"

// EntityType — вид модерируемой сущности.
type EntityType string

// Виды модерируемых сущностей.
const (
	EntityListing EntityType = "listing"
	EntityImage   EntityType = "listing_image"
	EntityOwner   EntityType = "owner"
	EntityUser    EntityType = "user"
)

// Status — статус модерации сущности.
type Status string

// Статусы модерации.
const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusSuspended Status = "suspended"
	StatusSpam      Status = "spam"
)

// Action — действие администратора над сущностью.
type Action string

// Действия администратора.
const (
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionSuspend  Action = "suspend"
	ActionMarkSpam Action = "spam"
)

// ErrInvalidTransition возвращается при попытке перехода, отсутствующего
// в таблице легальных переходов. Никаких записей при этом не происходит.
type ErrInvalidTransition struct {
	Entity EntityType
	From   Status
	Action Action
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("invalid transition: %s %s cannot be %sed", e.Entity, e.From, e.Action)
}

type edge struct {
	from   Status
	action Action
}

// Таблицы переходов по видам сущностей. Отклонённые и помеченные как спам
// сущности не воскресают: нужна новая подача. Исключение — политика
// allowReapprove, включающая ребро rejected -> approved для объявлений.
var (
	listingEdges = map[edge]Status{
		{StatusPending, ActionApprove}:   StatusApproved,
		{StatusPending, ActionReject}:    StatusRejected,
		{StatusApproved, ActionSuspend}:  StatusSuspended,
		{StatusApproved, ActionMarkSpam}: StatusSpam,
	}
	imageEdges = map[edge]Status{
		{StatusPending, ActionApprove}:  StatusApproved,
		{StatusPending, ActionReject}:   StatusRejected,
		{StatusApproved, ActionSuspend}: StatusSuspended,
	}
	ownerEdges = map[edge]Status{
		{StatusPending, ActionApprove}:  StatusApproved,
		{StatusPending, ActionReject}:   StatusRejected,
		{StatusApproved, ActionSuspend}: StatusSuspended,
	}
	userEdges = map[edge]Status{
		{StatusApproved, ActionSuspend}:  StatusSuspended,
		{StatusSuspended, ActionApprove}: StatusApproved,
	}
)

// Machine проверяет легальность переходов для всех видов сущностей.
type Machine struct {
	allowReapprove bool
}

// New создаёт машину состояний. allowReapprove разрешает повторное
// одобрение отклонённых объявлений после правок владельца.
func New(allowReapprove bool) *Machine {
	return &Machine{allowReapprove: allowReapprove}
}

// Initial возвращает начальный статус для вида сущности.
func Initial(entity EntityType) Status {
	if entity == EntityUser {
		return StatusApproved
	}
	return StatusPending
}

// ParseAction превращает строку из URL в Action.
func ParseAction(s string) (Action, bool) {
	switch Action(s) {
	case ActionApprove, ActionReject, ActionSuspend, ActionMarkSpam:
		return Action(s), true
	}
	return "", false
}

// Next возвращает статус, в который переводит действие action сущность
// entity из статуса from. Если такого ребра нет, возвращает
// *ErrInvalidTransition.
func (m *Machine) Next(entity EntityType, from Status, action Action) (Status, error) {
	var edges map[edge]Status
	switch entity {
	case EntityListing:
		edges = listingEdges
	case EntityImage:
		edges = imageEdges
	case EntityOwner:
		edges = ownerEdges
	case EntityUser:
		edges = userEdges
	default:
		return "", fmt.Errorf("unknown entity type: %s", entity)
	}

	if to, ok := edges[edge{from, action}]; ok {
		return to, nil
	}
	if m.allowReapprove && entity == EntityListing && from == StatusRejected && action == ActionApprove {
		return StatusApproved, nil
	}
	return "", &ErrInvalidTransition{Entity: entity, From: from, Action: action}
}

// Allowed сообщает, поддерживает ли сущность данное действие в принципе,
// независимо от текущего статуса. Используется для раннего 404 на
// несуществующих действиях вроде spam для изображений.
func (m *Machine) Allowed(entity EntityType, action Action) bool {
	switch entity {
	case EntityListing:
		return true
	case EntityImage, EntityOwner:
		return action != ActionMarkSpam
	case EntityUser:
		return action == ActionApprove || action == ActionSuspend
	}
	return false
}
