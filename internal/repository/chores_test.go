package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/LionelROLLAND/colocatron/internal/models"
	"github.com/LionelROLLAND/colocatron/internal/repository"
	"github.com/LionelROLLAND/colocatron/internal/testutil"
)

func TestChoreRepository_CreateAndFindByID(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	repo := repository.NewChoreRepository(db)
	ctx := context.Background()

	weight := 2.5
	created, err := repo.Create(ctx, models.Chore{
		Name:              "dishes",
		Description:       "wash the dishes",
		IdentityName:      "dishes",
		Proportional:      true,
		MinProportion:     0.25,
		MinOccupants:      2,
		WeightPerOccupant: &weight,
	})
	if err != nil {
		t.Fatalf("creating chore: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected non-empty ID")
	}

	found, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("finding chore: %v", err)
	}
	if found.Name != "dishes" {
		t.Errorf("expected name 'dishes', got '%s'", found.Name)
	}
	if !found.Proportional {
		t.Error("expected proportional chore")
	}
	if found.WeightPerOccupant == nil || *found.WeightPerOccupant != 2.5 {
		t.Errorf("expected weight per occupant 2.5, got %v", found.WeightPerOccupant)
	}
	if found.TotalWeight != nil {
		t.Errorf("expected nil total weight, got %v", *found.TotalWeight)
	}
}

func TestChoreRepository_Update(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	repo := repository.NewChoreRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, models.Chore{Name: "dishes", IdentityName: "dishes"})
	if err != nil {
		t.Fatalf("creating chore: %v", err)
	}

	days := 3
	created.Description = "updated"
	created.EachNDays = &days
	if err := repo.Update(ctx, created); err != nil {
		t.Fatalf("updating chore: %v", err)
	}

	found, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("finding chore: %v", err)
	}
	if found.Description != "updated" {
		t.Errorf("expected description 'updated', got '%s'", found.Description)
	}
	if found.EachNDays == nil || *found.EachNDays != 3 {
		t.Errorf("expected each_n_days 3, got %v", found.EachNDays)
	}
}

func TestChoreRepository_Delete(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	repo := repository.NewChoreRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, models.Chore{Name: "dishes", IdentityName: "dishes"})
	if err != nil {
		t.Fatalf("creating chore: %v", err)
	}

	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("deleting chore: %v", err)
	}

	_, err = repo.FindByID(ctx, created.ID)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected wrapped sql.ErrNoRows, got %v", err)
	}
}

func TestChoreRepository_NextIdentitySeqDistinguishesSameName(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	repo := repository.NewChoreRepository(db)
	ctx := context.Background()

	seq, err := repo.NextIdentitySeq(ctx, "dishes")
	if err != nil {
		t.Fatalf("NextIdentitySeq: %v", err)
	}
	if _, err := repo.Create(ctx, models.Chore{Name: "dishes", IdentityName: "dishes", IdentitySeq: seq}); err != nil {
		t.Fatalf("creating chore: %v", err)
	}

	next, err := repo.NextIdentitySeq(ctx, "dishes")
	if err != nil {
		t.Fatalf("NextIdentitySeq: %v", err)
	}
	if next != seq+1 {
		t.Errorf("expected seq %d, got %d", seq+1, next)
	}
}
