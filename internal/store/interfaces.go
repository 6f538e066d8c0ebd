package store

import (
	"context"
	"errors"

	"medicine-inventory-service/internal/domain"
)

// Predefined errors for store operations
var (
	ErrCategoryNotFound   = errors.New("store: category not found")
	ErrCategoryNameExists = errors.New("store: category name already exists")
	ErrCategoryInUse      = errors.New("store: category is referenced by at least one medicine")
	ErrMedicineNotFound   = errors.New("store: medicine not found")
	ErrInvalidCategory    = errors.New("store: medicine category does not exist")
)

// IsNotFound reports whether err means the referenced id does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCategoryNotFound) || errors.Is(err, ErrMedicineNotFound)
}

// CategoryStorer defines the operations on categories.
type CategoryStorer interface {
	CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
	GetCategoryByID(ctx context.Context, id string) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error) // insertion order
	DeleteCategory(ctx context.Context, id string) error
}

// MedicineStorer defines the operations on medicines.
type MedicineStorer interface {
	CreateMedicine(ctx context.Context, medicine *domain.Medicine) (*domain.Medicine, error)
	GetMedicineByID(ctx context.Context, id string) (*domain.Medicine, error)
	ListMedicines(ctx context.Context) ([]domain.Medicine, error) // insertion order
	UpdateMedicine(ctx context.Context, id string, update domain.MedicineUpdate) (*domain.Medicine, error)
	DeleteMedicine(ctx context.Context, id string) error
}

// Store is a complete backend: both collections plus a lifecycle.
type Store interface {
	CategoryStorer
	MedicineStorer
	Ping(ctx context.Context) error
	Close() error
}

// SeedCategories creates each category whose name is not already taken.
// It returns the number of categories created.
func SeedCategories(ctx context.Context, cs CategoryStorer, categories []domain.Category) (int, error) {
	created := 0
	for i := range categories {
		c := categories[i]
		if _, err := cs.CreateCategory(ctx, &c); err != nil {
			if errors.Is(err, ErrCategoryNameExists) {
				continue
			}
			return created, err
		}
		created++
	}
	return created, nil
}
