// Package access decides whether an account may perform a mutating action.
//
// Every decision is made against the stored role and ownership rows, never against
// claims carried in a token, because roles change out of band (bans, promotions).
package access

import (
	"context"
	"errors"

	"food-marketplace-api/apperr"
	"food-marketplace-api/models"

	"github.com/google/uuid"
)

//go:generate mockgen -source=access.go -destination=mock_lookup_test.go -package=access

// Lookup answers the two questions the evaluator asks of the store.
type Lookup interface {
	HasRole(ctx context.Context, accountID uuid.UUID, role models.Role) (bool, error)
	OwnsRestaurant(ctx context.Context, restaurantID uint, accountID uuid.UUID) (bool, error)
}

// Action is one of the fixed set of guarded operations.
type Action int

const (
	// ActionModifyRestaurant covers the restaurant itself and everything scoped to it:
	// food, operating hours, owner records, images and order fulfilment.
	ActionModifyRestaurant Action = iota
	ActionCreateRestaurant
	ActionRegisterOwner
	ActionAdminister
	// ActionParticipate is commenting, voting and using a cart.
	ActionParticipate
)

func (a Action) String() string {
	switch a {
	case ActionModifyRestaurant:
		return "modify_restaurant"
	case ActionCreateRestaurant:
		return "create_restaurant"
	case ActionRegisterOwner:
		return "register_owner"
	case ActionAdminister:
		return "administer"
	case ActionParticipate:
		return "participate"
	}
	return "unknown"
}

// rolesFor lists, in evaluation order, the roles that unlock a role-only action.
var rolesFor = map[Action][]models.Role{
	ActionCreateRestaurant: {models.RoleAdmin, models.RoleRestaurantOwner},
	ActionRegisterOwner:    {models.RoleAdmin, models.RoleRestaurantOwner},
	ActionAdminister:       {models.RoleAdmin},
	ActionParticipate:      {models.RoleCustomer, models.RoleRestaurantOwner, models.RoleAdmin},
}

type Evaluator struct {
	lookup Lookup
}

func New(lookup Lookup) *Evaluator {
	return &Evaluator{lookup: lookup}
}

// HasRole is true iff the account's current role equals role.
func (e *Evaluator) HasRole(ctx context.Context, accountID uuid.UUID, role models.Role) (bool, error) {
	ok, err := e.lookup.HasRole(ctx, accountID, role)
	if err != nil {
		return false, infra("role lookup", err)
	}
	return ok, nil
}

// HasAnyRole checks roles in order and stops at the first match.
func (e *Evaluator) HasAnyRole(ctx context.Context, accountID uuid.UUID, roles ...models.Role) (bool, error) {
	for _, role := range roles {
		ok, err := e.HasRole(ctx, accountID, role)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// CanModifyRestaurant is true for admins and for accounts with an ownership row.
// The ownership query is skipped for admins.
func (e *Evaluator) CanModifyRestaurant(ctx context.Context, restaurantID uint, accountID uuid.UUID) (bool, error) {
	isAdmin, err := e.HasAnyRole(ctx, accountID, models.RoleAdmin)
	if err != nil {
		return false, err
	}
	if isAdmin {
		return true, nil
	}
	owns, err := e.lookup.OwnsRestaurant(ctx, restaurantID, accountID)
	if err != nil {
		return false, infra("ownership lookup", err)
	}
	return owns, nil
}

// Check returns nil when allowed, an apperr Denied error when not, and an apperr
// Infra error when the decision could not be made. resourceID is the restaurant id
// for ActionModifyRestaurant and ignored otherwise.
func (e *Evaluator) Check(ctx context.Context, accountID uuid.UUID, action Action, resourceID uint) error {
	var (
		ok  bool
		err error
	)
	if action == ActionModifyRestaurant {
		ok, err = e.CanModifyRestaurant(ctx, resourceID, accountID)
	} else {
		roles, known := rolesFor[action]
		if !known {
			return apperr.Denied()
		}
		ok, err = e.HasAnyRole(ctx, accountID, roles...)
	}
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Denied()
	}
	return nil
}

// infra keeps store-side errors as they are and wraps anything else, so a lookup
// failure can never be mistaken for a denial.
func infra(msg string, err error) error {
	var domain *apperr.Error
	if errors.As(err, &domain) && domain.Code == apperr.CodeInfra {
		return err
	}
	return apperr.Infra(msg, err)
}
