// Package permissions decides which cook may perform which operation.
package permissions

import (
	"errors"

	"github.com/franciscosanchezn/gin-kitchen/internal/models"
)

// Action names an operation on one of the kitchen entities
type Action string

const (
	CookList           Action = "cook.list"
	CookView           Action = "cook.view"
	CookCreate         Action = "cook.create"
	CookUpdate         Action = "cook.update"
	CookDelete         Action = "cook.delete"
	CookPasswordChange Action = "cook.password_change"

	DishTypeList   Action = "dish_type.list"
	DishTypeView   Action = "dish_type.view"
	DishTypeCreate Action = "dish_type.create"
	DishTypeUpdate Action = "dish_type.update"
	DishTypeDelete Action = "dish_type.delete"

	IngredientList   Action = "ingredient.list"
	IngredientView   Action = "ingredient.view"
	IngredientCreate Action = "ingredient.create"
	IngredientUpdate Action = "ingredient.update"
	IngredientDelete Action = "ingredient.delete"

	DishList   Action = "dish.list"
	DishView   Action = "dish.view"
	DishCreate Action = "dish.create"
	DishUpdate Action = "dish.update"
	DishDelete Action = "dish.delete"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("permission denied")
)

// Reasons attached to forbidden outcomes
var (
	ErrStaffRequired   = forbidden("You must be staff to perform this action.")
	ErrSuperuserTarget = forbidden("You cannot modify a superuser.")
	ErrSelfDelete      = forbidden("You cannot delete your own account.")
	ErrNotSelf         = forbidden("You can only edit your own profile.")
	ErrForeignPassword = forbidden("You cannot change another cook's password.")
)

// Denied is a forbidden outcome with the reason shown to the caller
type Denied struct {
	Reason string
}

func forbidden(reason string) *Denied {
	return &Denied{Reason: reason}
}

func (d *Denied) Error() string {
	return d.Reason
}

// Is makes every Denied match ErrForbidden
func (d *Denied) Is(target error) bool {
	return target == ErrForbidden
}

// staffOnly are the actions reserved to staff and superusers
var staffOnly = map[Action]bool{
	CookCreate:     true,
	CookDelete:     true,
	DishTypeCreate: true,
	DishTypeDelete: true,
	DishCreate:     true,
	DishDelete:     true,
}

// Check reports whether actor may perform action on target. target is the
// cook the action is about and is nil for every other entity. It returns
// nil, ErrUnauthenticated, or an error matching ErrForbidden.
func Check(actor *models.Cook, target *models.Cook, action Action) error {
	if actor == nil || actor.ID == 0 || !actor.IsActive {
		return ErrUnauthenticated
	}

	if staffOnly[action] && !actor.IsPrivileged() {
		return ErrStaffRequired
	}

	if target == nil {
		return nil
	}

	self := actor.ID == target.ID

	switch action {
	case CookUpdate, CookDelete, CookPasswordChange:
		if target.IsSuperuser && !actor.IsSuperuser {
			return ErrSuperuserTarget
		}
	}

	switch action {
	case CookUpdate:
		if !self && !actor.IsPrivileged() {
			return ErrNotSelf
		}
	case CookDelete:
		if self {
			return ErrSelfDelete
		}
	case CookPasswordChange:
		if !self && !actor.IsSuperuser {
			return ErrForeignPassword
		}
	}
	return nil
}

// CanEditPrivileges reports whether actor may set is_staff and is_active
func CanEditPrivileges(actor *models.Cook) bool {
	return actor != nil && actor.IsPrivileged()
}
