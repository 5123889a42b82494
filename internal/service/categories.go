package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jask/extracta/internal/database"
	"github.com/jask/extracta/internal/database/repository"
)

// CategoryService manages categories and their assignment to transactions.
type CategoryService struct {
	DB *sql.DB
}

func (s *CategoryService) Create(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, ErrInvalidName
	}
	repo := repository.NewCategoryRepo(s.DB)
	existing, err := repo.GetByName(ctx, name)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return 0, fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	return repo.Create(ctx, name)
}

func (s *CategoryService) List(ctx context.Context) ([]repository.Category, error) {
	return repository.NewCategoryRepo(s.DB).List(ctx)
}

func (s *CategoryService) Rename(ctx context.Context, id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	repo := repository.NewCategoryRepo(s.DB)
	existing, err := repo.GetByName(ctx, name)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != id {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	ok, err := repo.Rename(ctx, id, name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("category %d: %w", id, ErrNotFound)
	}
	return nil
}

// Assign sets the category of a transaction; a nil categoryID clears it.
func (s *CategoryService) Assign(ctx context.Context, transactionID string, categoryID *int64) error {
	return database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		if categoryID != nil {
			c, err := repository.NewCategoryRepo(tx).Get(ctx, *categoryID)
			if err != nil {
				return err
			}
			if c == nil {
				return fmt.Errorf("category %d: %w", *categoryID, ErrNotFound)
			}
		}
		ok, err := repository.NewTransactionRepo(tx).UpdateCategory(ctx, transactionID, categoryID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("transaction %s: %w", transactionID, ErrNotFound)
		}
		return nil
	})
}

// Delete refuses to remove a category that transactions still use.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	return database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		inUse, err := repository.NewTransactionRepo(tx).CategoryInUse(ctx, id)
		if err != nil {
			return err
		}
		if inUse {
			return ErrCategoryInUse
		}
		ok, err := repository.NewCategoryRepo(tx).Delete(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("category %d: %w", id, ErrNotFound)
		}
		return nil
	})
}
