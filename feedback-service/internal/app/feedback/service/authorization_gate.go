package service

import (
	"feedbackhub/feedback-service/internal/app/feedback/entity"
)

// Operation - операция над коллекцией отзывов, подлежащая авторизации
type Operation string

const (
	OpSubmit    Operation = "submit"
	OpSetStatus Operation = "set_status"
	OpDelete    Operation = "delete"
	OpQueryOwn  Operation = "query_own"
	OpQueryAll  Operation = "query_all"
	OpExport    Operation = "export"
)

// Таблица прав: операция -> роли, которым она разрешена.
// Единственное место в сервисе, где решается "кому что можно".
var allowedRoles = map[Operation][]entity.Role{
	OpSubmit:    {entity.RoleCustomer, entity.RoleAdmin},
	OpSetStatus: {entity.RoleAdmin},
	OpDelete:    {entity.RoleAdmin},
	OpQueryOwn:  {entity.RoleCustomer, entity.RoleAdmin},
	OpQueryAll:  {entity.RoleAdmin},
	OpExport:    {entity.RoleAdmin},
}

// AuthorizationGate решает, разрешена ли операция для данной identity.
// Никогда не возвращает ошибок - отказ транслируется в ErrUnauthorized
// на месте вызова.
type AuthorizationGate struct{}

func NewAuthorizationGate() *AuthorizationGate {
	return &AuthorizationGate{}
}

// Can возвращает true, если identity разрешена операция.
// Неаутентифицированному пользователю (nil) не разрешено ничего.
func (g *AuthorizationGate) Can(identity *entity.Identity, op Operation) bool {
	if identity == nil {
		return false
	}

	for _, role := range allowedRoles[op] {
		if identity.Role == role {
			return true
		}
	}

	return false
}
