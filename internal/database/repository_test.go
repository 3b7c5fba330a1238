package database

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestItemRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewItemRepository(setupTestDB(t))

	created := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	located := created.Add(time.Minute)
	image := "https://img/milk.jpg"

	err := repo.WithTx(ctx, func(ctx context.Context, tx ItemTx) error {
		if err := tx.InsertItem(ctx, "r1", "Milk", created); err != nil {
			return err
		}
		if err := tx.InsertItem(ctx, "r2", "Bread", created); err != nil {
			return err
		}
		return tx.SetLocation(ctx, "r1", "Aisle 3", &image, located)
	})
	if err != nil {
		t.Fatalf("WithTx returned error: %v", err)
	}

	items, err := repo.ListItems(ctx)
	if err != nil {
		t.Fatalf("ListItems error: %v", err)
	}
	if len(items) != 2 || items[0].ID != "r1" || items[1].ID != "r2" {
		t.Fatalf("expected r1, r2 in insertion order, got %#v", items)
	}

	milk, err := repo.FindByID(ctx, "r1")
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if milk.Aisle == nil || *milk.Aisle != "Aisle 3" {
		t.Fatalf("expected aisle to be stored, got %#v", milk.Aisle)
	}
	if milk.Image == nil || *milk.Image != image {
		t.Fatalf("expected image to be stored, got %#v", milk.Image)
	}
	if !milk.CreatedAt.Equal(created) || !milk.UpdatedAt.Equal(located) {
		t.Fatalf("unexpected timestamps created=%s updated=%s", milk.CreatedAt, milk.UpdatedAt)
	}

	err = repo.WithTx(ctx, func(ctx context.Context, tx ItemTx) error {
		if err := tx.SetError(ctx, "r1", "503", located.Add(time.Minute)); err != nil {
			return err
		}
		if err := tx.RenameItem(ctx, "r2", "Sourdough", located); err != nil {
			return err
		}
		return tx.DeleteItem(ctx, "missing")
	})
	if err != nil {
		t.Fatalf("second WithTx returned error: %v", err)
	}

	milk, err = repo.FindByID(ctx, "r1")
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if milk.Error == nil || *milk.Error != "503" {
		t.Fatalf("expected error code 503, got %#v", milk.Error)
	}
	if milk.Aisle == nil || *milk.Aisle != "Aisle 3" {
		t.Fatalf("SetError must keep the stored aisle, got %#v", milk.Aisle)
	}

	bread, err := repo.FindByID(ctx, "r2")
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if bread.Name != "Sourdough" {
		t.Fatalf("expected renamed item, got %q", bread.Name)
	}
}

func TestSetLocationClearsError(t *testing.T) {
	ctx := context.Background()
	repo := NewItemRepository(setupTestDB(t))
	now := time.Now().UTC()

	err := repo.WithTx(ctx, func(ctx context.Context, tx ItemTx) error {
		if err := tx.InsertItem(ctx, "r1", "Milk", now); err != nil {
			return err
		}
		if err := tx.SetError(ctx, "r1", "unknown", now); err != nil {
			return err
		}
		return tx.SetLocation(ctx, "r1", "Unknown", nil, now)
	})
	if err != nil {
		t.Fatalf("WithTx returned error: %v", err)
	}

	item, err := repo.FindByID(ctx, "r1")
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if item.Error != nil {
		t.Fatalf("expected error to be cleared, got %q", *item.Error)
	}
	if item.Image != nil {
		t.Fatalf("expected nil image, got %q", *item.Image)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	dbCtx := setupTestDB(t)
	repo := NewItemRepository(dbCtx)
	boom := errors.New("boom")

	err := repo.WithTx(ctx, func(ctx context.Context, tx ItemTx) error {
		if err := tx.InsertItem(ctx, "r1", "Milk", time.Now()); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	assertCount(t, dbCtx.DB, "items", 0)
}

func TestUpdatesOnMissingItemReportNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewItemRepository(setupTestDB(t))
	now := time.Now()

	if _, err := repo.FindByID(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from FindByID, got %v", err)
	}

	err := repo.WithTx(ctx, func(ctx context.Context, tx ItemTx) error {
		if err := tx.SetLocation(ctx, "nope", "Aisle 1", nil, now); !errors.Is(err, ErrNotFound) {
			t.Errorf("SetLocation: expected ErrNotFound, got %v", err)
		}
		if err := tx.SetError(ctx, "nope", "404", now); !errors.Is(err, ErrNotFound) {
			t.Errorf("SetError: expected ErrNotFound, got %v", err)
		}
		if err := tx.RenameItem(ctx, "nope", "x", now); !errors.Is(err, ErrNotFound) {
			t.Errorf("RenameItem: expected ErrNotFound, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx returned error: %v", err)
	}
}
