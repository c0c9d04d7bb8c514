package access

import (
	"context"
	"testing"

	"food-marketplace-api/models"
	"food-marketplace-api/store/storetest"

	"github.com/google/uuid"
)

func TestCanModifyRestaurantAgainstStore(t *testing.T) {
	s, db := storetest.Open(t)
	ctx := context.Background()

	admin := models.Account{Name: "root", PasswordHash: "x", Role: models.RoleAdmin}
	owner := models.Account{Name: "owner", PasswordHash: "x", Role: models.RoleRestaurantOwner}
	other := models.Account{Name: "other", PasswordHash: "x", Role: models.RoleRestaurantOwner}
	for _, a := range []*models.Account{&admin, &owner, &other} {
		if err := db.Create(a).Error; err != nil {
			t.Fatalf("create account: %v", err)
		}
	}
	r := models.Restaurant{Name: "Sib"}
	if err := db.Create(&r).Error; err != nil {
		t.Fatalf("create restaurant: %v", err)
	}
	if err := db.Create(&models.Owner{RestaurantID: r.ID, AccountID: owner.ID, NationalID: "0012345678"}).Error; err != nil {
		t.Fatalf("create owner: %v", err)
	}

	e := New(NewStoreLookup(s))
	tests := []struct {
		name    string
		account uuid.UUID
		want    bool
	}{
		{"admin without ownership", admin.ID, true},
		{"owner row", owner.ID, true},
		{"owner role but no row", other.ID, false},
		{"unknown account", uuid.New(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.CanModifyRestaurant(ctx, r.ID, tt.account)
			if err != nil {
				t.Fatalf("CanModifyRestaurant: %v", err)
			}
			if got != tt.want {
				t.Fatalf("CanModifyRestaurant = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasRoleReadsCurrentRole(t *testing.T) {
	s, db := storetest.Open(t)
	ctx := context.Background()

	a := models.Account{Name: "u1", PasswordHash: "x", Role: models.RoleCustomer}
	if err := db.Create(&a).Error; err != nil {
		t.Fatalf("create account: %v", err)
	}
	e := New(NewStoreLookup(s))

	if ok, err := e.HasRole(ctx, a.ID, models.RoleCustomer); err != nil || !ok {
		t.Fatalf("HasRole(customer) = %v, %v", ok, err)
	}
	if err := db.Model(&models.Account{}).Where("id = ?", a.ID).Update("role", models.RoleBannedUser).Error; err != nil {
		t.Fatalf("ban: %v", err)
	}
	if ok, err := e.HasRole(ctx, a.ID, models.RoleCustomer); err != nil || ok {
		t.Fatalf("HasRole(customer) after ban = %v, %v", ok, err)
	}
	if err := e.Check(ctx, a.ID, ActionParticipate, 0); err == nil {
		t.Fatal("banned account must not participate")
	}
}
