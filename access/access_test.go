package access

import (
	"context"
	"errors"
	"testing"

	"food-marketplace-api/apperr"
	"food-marketplace-api/models"

	"github.com/google/uuid"
	"go.uber.org/mock/gomock"
)

func TestHasAnyRoleStopsAtFirstMatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	lookup := NewMockLookup(ctrl)
	id := uuid.New()

	gomock.InOrder(
		lookup.EXPECT().HasRole(gomock.Any(), id, models.RoleAdmin).Return(false, nil),
		lookup.EXPECT().HasRole(gomock.Any(), id, models.RoleRestaurantOwner).Return(true, nil),
	)

	ok, err := New(lookup).HasAnyRole(context.Background(), id,
		models.RoleAdmin, models.RoleRestaurantOwner, models.RoleCustomer)
	if err != nil {
		t.Fatalf("HasAnyRole: %v", err)
	}
	if !ok {
		t.Fatal("expected match on restaurant_owner")
	}
}

func TestHasAnyRoleChecksEveryRoleBeforeFalse(t *testing.T) {
	ctrl := gomock.NewController(t)
	lookup := NewMockLookup(ctrl)
	id := uuid.New()

	lookup.EXPECT().HasRole(gomock.Any(), id, models.RoleAdmin).Return(false, nil)
	lookup.EXPECT().HasRole(gomock.Any(), id, models.RoleRestaurantOwner).Return(false, nil)

	ok, err := New(lookup).HasAnyRole(context.Background(), id, models.RoleAdmin, models.RoleRestaurantOwner)
	if err != nil {
		t.Fatalf("HasAnyRole: %v", err)
	}
	if ok {
		t.Fatal("expected no match")
	}
}

func TestCanModifyRestaurantAdminSkipsOwnership(t *testing.T) {
	ctrl := gomock.NewController(t)
	lookup := NewMockLookup(ctrl)
	id := uuid.New()

	lookup.EXPECT().HasRole(gomock.Any(), id, models.RoleAdmin).Return(true, nil)
	lookup.EXPECT().OwnsRestaurant(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	ok, err := New(lookup).CanModifyRestaurant(context.Background(), 7, id)
	if err != nil {
		t.Fatalf("CanModifyRestaurant: %v", err)
	}
	if !ok {
		t.Fatal("admin must be allowed without ownership")
	}
}

func TestCanModifyRestaurantFallsBackToOwnership(t *testing.T) {
	tests := []struct {
		name string
		owns bool
	}{
		{"owner", true},
		{"stranger", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			lookup := NewMockLookup(ctrl)
			id := uuid.New()

			lookup.EXPECT().HasRole(gomock.Any(), id, models.RoleAdmin).Return(false, nil)
			lookup.EXPECT().OwnsRestaurant(gomock.Any(), uint(7), id).Return(tt.owns, nil)

			ok, err := New(lookup).CanModifyRestaurant(context.Background(), 7, id)
			if err != nil {
				t.Fatalf("CanModifyRestaurant: %v", err)
			}
			if ok != tt.owns {
				t.Fatalf("CanModifyRestaurant = %v, want %v", ok, tt.owns)
			}
		})
	}
}

func TestLookupFailureIsInfraNotDenied(t *testing.T) {
	ctrl := gomock.NewController(t)
	lookup := NewMockLookup(ctrl)
	id := uuid.New()

	lookup.EXPECT().HasRole(gomock.Any(), id, models.RoleAdmin).Return(false, nil)
	lookup.EXPECT().OwnsRestaurant(gomock.Any(), uint(3), id).Return(false, errors.New("disk I/O error"))

	err := New(lookup).Check(context.Background(), id, ActionModifyRestaurant, 3)
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, apperr.ErrDenied) {
		t.Fatal("lookup failure reported as denial")
	}
	if apperr.CodeOf(err) != apperr.CodeInfra {
		t.Fatalf("code = %s, want INFRA", apperr.CodeOf(err))
	}
}

func TestCheckDeniesBannedParticipant(t *testing.T) {
	ctrl := gomock.NewController(t)
	lookup := NewMockLookup(ctrl)
	id := uuid.New()

	lookup.EXPECT().HasRole(gomock.Any(), id, gomock.Any()).Return(false, nil).Times(3)

	err := New(lookup).Check(context.Background(), id, ActionParticipate, 0)
	if !errors.Is(err, apperr.ErrDenied) {
		t.Fatalf("Check = %v, want denied", err)
	}
}

func TestCheckUnknownActionDenied(t *testing.T) {
	ctrl := gomock.NewController(t)
	lookup := NewMockLookup(ctrl)

	err := New(lookup).Check(context.Background(), uuid.New(), Action(99), 0)
	if !errors.Is(err, apperr.ErrDenied) {
		t.Fatalf("Check = %v, want denied", err)
	}
}
