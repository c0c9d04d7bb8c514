package votes

import (
	"context"
	"errors"
	"testing"

	"food-marketplace-api/apperr"
	"food-marketplace-api/models"
	"food-marketplace-api/store/storetest"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

func seedComment(t *testing.T, db *gorm.DB, id uint) models.Comment {
	t.Helper()
	author := storetest.Account(t, db, "author", models.RoleCustomer)
	r, _ := storetest.Restaurant(t, db, "Sib", 100, nil)
	c := models.Comment{ID: id, RestaurantID: r.ID, AccountID: author.ID, Text: "good", Rating: 5}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("create comment: %v", err)
	}
	return c
}

func voteOf(t *Tally) int {
	if t.CurrentUserVote == nil {
		return 0
	}
	return *t.CurrentUserVote
}

func TestApplyTogglesLikeThenSwitchesToDislike(t *testing.T) {
	s, db := storetest.Open(t)
	ctx := context.Background()
	c := seedComment(t, db, 42)
	u1 := storetest.Account(t, db, "u1", models.RoleCustomer)
	e := New(s)

	steps := []struct {
		vote     int
		likes    int64
		dislikes int64
		current  int
	}{
		{models.VoteLike, 1, 0, 1},
		{models.VoteLike, 0, 0, 0},
		{models.VoteDislike, 0, 1, -1},
		{models.VoteLike, 1, 0, 1},
		{models.VoteDislike, 0, 1, -1},
		{models.VoteDislike, 0, 0, 0},
	}
	for i, st := range steps {
		got, err := e.Apply(ctx, u1.ID, c.ID, st.vote)
		if err != nil {
			t.Fatalf("step %d: Apply: %v", i, err)
		}
		if got.Likes != st.likes || got.Dislikes != st.dislikes || voteOf(&got) != st.current {
			t.Fatalf("step %d: tally = {%d %d %d}, want {%d %d %d}",
				i, got.Likes, got.Dislikes, voteOf(&got), st.likes, st.dislikes, st.current)
		}
	}
}

func TestApplyCountsEveryAccount(t *testing.T) {
	s, db := storetest.Open(t)
	ctx := context.Background()
	c := seedComment(t, db, 1)
	u1 := storetest.Account(t, db, "u1", models.RoleCustomer)
	u2 := storetest.Account(t, db, "u2", models.RoleCustomer)
	u3 := storetest.Account(t, db, "u3", models.RoleCustomer)
	e := New(s)

	for _, v := range []struct {
		acc  models.Account
		vote int
	}{{u1, 1}, {u2, 1}, {u3, -1}} {
		if _, err := e.Apply(ctx, v.acc.ID, c.ID, v.vote); err != nil {
			t.Fatalf("Apply: %v", err)
		}
	}

	got, err := e.Get(ctx, u3.ID, c.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Likes != 2 || got.Dislikes != 1 || voteOf(&got) != -1 {
		t.Fatalf("tally = {%d %d %d}, want {2 1 -1}", got.Likes, got.Dislikes, voteOf(&got))
	}
}

func TestApplyConcurrentTogglesSerialize(t *testing.T) {
	s, db := storetest.Open(t)
	c := seedComment(t, db, 7)
	u1 := storetest.Account(t, db, "u1", models.RoleCustomer)
	e := New(s)

	// An even number of likes from one account must cancel out.
	const n = 10
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			_, err := e.Apply(context.Background(), u1.ID, c.ID, models.VoteLike)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	var rows int64
	db.Model(&models.CommentVote{}).Where("comment_id = ?", c.ID).Count(&rows)
	if rows != 0 {
		t.Fatalf("vote rows = %d, want 0 after %d toggles", rows, n)
	}
}

func TestApplyConcurrentMixedVotesKeepOneRow(t *testing.T) {
	s, db := storetest.Open(t)
	c := seedComment(t, db, 8)
	u1 := storetest.Account(t, db, "u1", models.RoleCustomer)
	e := New(s)

	var g errgroup.Group
	for i := 0; i < 12; i++ {
		vote := models.VoteLike
		if i%3 == 0 {
			vote = models.VoteDislike
		}
		g.Go(func() error {
			_, err := e.Apply(context.Background(), u1.ID, c.ID, vote)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	got, err := e.Get(context.Background(), u1.ID, c.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Likes+got.Dislikes > 1 {
		t.Fatalf("one account holds %d likes and %d dislikes", got.Likes, got.Dislikes)
	}
}

func TestApplyMissingComment(t *testing.T) {
	s, db := storetest.Open(t)
	u1 := storetest.Account(t, db, "u1", models.RoleCustomer)

	_, err := New(s).Apply(context.Background(), u1.ID, 999, models.VoteLike)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("Apply on missing comment = %v, want NotFound", err)
	}
	var rows int64
	db.Model(&models.CommentVote{}).Count(&rows)
	if rows != 0 {
		t.Fatalf("vote rows = %d, want 0", rows)
	}
}

func TestApplyRejectsOtherValues(t *testing.T) {
	s, db := storetest.Open(t)
	c := seedComment(t, db, 3)
	u1 := storetest.Account(t, db, "u1", models.RoleCustomer)

	for _, v := range []int{0, 2, -2} {
		if _, err := New(s).Apply(context.Background(), u1.ID, c.ID, v); !errors.Is(err, apperr.ErrInvalidInput) {
			t.Fatalf("Apply(%d) = %v, want InvalidInput", v, err)
		}
	}
}

func TestListShowsCallerVote(t *testing.T) {
	s, db := storetest.Open(t)
	ctx := context.Background()
	c := seedComment(t, db, 5)
	u1 := storetest.Account(t, db, "u1", models.RoleCustomer)
	u2 := storetest.Account(t, db, "u2", models.RoleCustomer)
	e := New(s)

	if _, err := e.Apply(ctx, u1.ID, c.ID, models.VoteDislike); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	views, err := e.List(ctx, u2.ID, c.RestaurantID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("List returned %d comments, want 1", len(views))
	}
	v := views[0]
	if v.Name != "author" || v.Dislikes != 1 || v.CurrentUserVote != nil {
		t.Fatalf("view = %+v", v)
	}

	views, err = e.List(ctx, u1.ID, c.RestaurantID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if views[0].CurrentUserVote == nil || *views[0].CurrentUserVote != -1 {
		t.Fatalf("u1 vote = %v, want -1", views[0].CurrentUserVote)
	}
}
