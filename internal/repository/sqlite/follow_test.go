package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/foodgram/internal/apperror"
	"github.com/sakif/foodgram/internal/repository"
)

func TestCreateFollow(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	if err := db.CreateFollow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("CreateFollow() error = %v", err)
	}

	following, err := db.IsFollowing(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("IsFollowing() error = %v", err)
	}
	if !following {
		t.Error("IsFollowing() = false, want true")
	}

	// Following is directional.
	reverse, _ := db.IsFollowing(ctx, bob.ID, alice.ID)
	if reverse {
		t.Error("IsFollowing(bob, alice) = true, want false")
	}
}

func TestCreateFollow_Self(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")

	err := db.CreateFollow(context.Background(), alice.ID, alice.ID)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("CreateFollow(self) error = %v, want ErrValidation", err)
	}
}

func TestCreateFollow_Duplicate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	if err := db.CreateFollow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("CreateFollow() error = %v", err)
	}
	err := db.CreateFollow(ctx, alice.ID, bob.ID)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("second CreateFollow() error = %v, want ErrConflict", err)
	}
}

func TestCreateFollow_UnknownAuthor(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")

	err := db.CreateFollow(context.Background(), alice.ID, 999)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("CreateFollow(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestDeleteFollow(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	if err := db.DeleteFollow(ctx, alice.ID, bob.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DeleteFollow() before follow error = %v, want ErrNotFound", err)
	}

	if err := db.CreateFollow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("CreateFollow() error = %v", err)
	}
	if err := db.DeleteFollow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("DeleteFollow() error = %v", err)
	}
	if following, _ := db.IsFollowing(ctx, alice.ID, bob.ID); following {
		t.Error("IsFollowing() = true after DeleteFollow")
	}
}

func TestListFollowing_NewestFirst(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")

	for _, author := range []int64{bob.ID, carol.ID} {
		if err := db.CreateFollow(ctx, alice.ID, author); err != nil {
			t.Fatalf("CreateFollow() error = %v", err)
		}
	}

	profiles, total, err := db.ListFollowing(ctx, alice.ID, repository.ListOptions{Limit: 10})
	if err != nil {
		t.Fatalf("ListFollowing() error = %v", err)
	}
	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}
	if len(profiles) != 2 || profiles[0].ID != carol.ID || profiles[1].ID != bob.ID {
		t.Fatalf("profiles = %+v, want carol then bob", profiles)
	}
	for _, p := range profiles {
		if !p.IsSubscribed {
			t.Errorf("profile %s IsSubscribed = false", p.Username)
		}
	}
}
