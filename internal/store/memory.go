package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"medicine-inventory-service/internal/domain"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps both collections in process memory, in insertion order.
// All state is lost when the process exits.
type MemoryStore struct {
	mu         sync.RWMutex
	categories []domain.Category
	medicines  []domain.Medicine

	now   func() time.Time
	newID func() string
}

// MemoryOption customizes a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock sets the time source used for created_at and updated_at.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(newID func() string) MemoryOption {
	return func(s *MemoryStore) { s.newID = newID }
}

// NewMemoryStore returns an empty store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// --- CategoryStorer Implementation ---

func (s *MemoryStore) CreateCategory(_ context.Context, category *domain.Category) (*domain.Category, error) {
	if err := category.Validate(); err != nil {
		return nil, fmt.Errorf("store: CreateCategory: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.categoryIndexByName(category.Name) >= 0 {
		return nil, ErrCategoryNameExists
	}

	now := s.now()
	created := domain.Category{
		ID:          s.newID(),
		Name:        category.Name,
		Description: copyString(category.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.categories = append(s.categories, created)
	return cloneCategory(created), nil
}

func (s *MemoryStore) GetCategoryByID(_ context.Context, id string) (*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.categoryIndex(id)
	if i < 0 {
		return nil, ErrCategoryNotFound
	}
	return cloneCategory(s.categories[i]), nil
}

func (s *MemoryStore) ListCategories(_ context.Context) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Category, len(s.categories))
	for i := range s.categories {
		out[i] = *cloneCategory(s.categories[i])
	}
	return out, nil
}

func (s *MemoryStore) DeleteCategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.categoryIndex(id)
	if i < 0 {
		return ErrCategoryNotFound
	}
	name := s.categories[i].Name
	for j := range s.medicines {
		if s.medicines[j].Category == name {
			return ErrCategoryInUse
		}
	}
	s.categories = append(s.categories[:i], s.categories[i+1:]...)
	return nil
}

// --- MedicineStorer Implementation ---

func (s *MemoryStore) CreateMedicine(_ context.Context, medicine *domain.Medicine) (*domain.Medicine, error) {
	if err := medicine.Validate(); err != nil {
		return nil, fmt.Errorf("store: CreateMedicine: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.categoryIndexByName(medicine.Category) < 0 {
		return nil, ErrInvalidCategory
	}

	now := s.now()
	created := *medicine
	created.ID = s.newID()
	created.Price = copyDecimal(medicine.Price)
	created.Description = copyString(medicine.Description)
	created.CreatedAt = now
	created.UpdatedAt = now
	s.medicines = append(s.medicines, created)
	return cloneMedicine(created), nil
}

func (s *MemoryStore) GetMedicineByID(_ context.Context, id string) (*domain.Medicine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.medicineIndex(id)
	if i < 0 {
		return nil, ErrMedicineNotFound
	}
	return cloneMedicine(s.medicines[i]), nil
}

func (s *MemoryStore) ListMedicines(_ context.Context) ([]domain.Medicine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Medicine, len(s.medicines))
	for i := range s.medicines {
		out[i] = *cloneMedicine(s.medicines[i])
	}
	return out, nil
}

func (s *MemoryStore) UpdateMedicine(_ context.Context, id string, update domain.MedicineUpdate) (*domain.Medicine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.medicineIndex(id)
	if i < 0 {
		return nil, ErrMedicineNotFound
	}
	current := s.medicines[i]
	if update.IsEmpty() {
		return cloneMedicine(current), nil
	}

	updated := update.Apply(current)
	if err := updated.Validate(); err != nil {
		return nil, fmt.Errorf("store: UpdateMedicine: %w", err)
	}
	if updated.Category != current.Category && s.categoryIndexByName(updated.Category) < 0 {
		return nil, ErrInvalidCategory
	}
	updated.UpdatedAt = s.now()
	s.medicines[i] = *cloneMedicine(updated)
	return cloneMedicine(updated), nil
}

func (s *MemoryStore) DeleteMedicine(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.medicineIndex(id)
	if i < 0 {
		return ErrMedicineNotFound
	}
	s.medicines = append(s.medicines[:i], s.medicines[i+1:]...)
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

// Lookups are linear; the collections are small.
// Callers must hold s.mu.

func (s *MemoryStore) categoryIndex(id string) int {
	for i := range s.categories {
		if s.categories[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *MemoryStore) categoryIndexByName(name string) int {
	for i := range s.categories {
		if s.categories[i].Name == name {
			return i
		}
	}
	return -1
}

func (s *MemoryStore) medicineIndex(id string) int {
	for i := range s.medicines {
		if s.medicines[i].ID == id {
			return i
		}
	}
	return -1
}

// Records never share pointers with callers; everything handed in or out is cloned.

func cloneCategory(c domain.Category) *domain.Category {
	c.Description = copyString(c.Description)
	return &c
}

func cloneMedicine(m domain.Medicine) *domain.Medicine {
	m.Price = copyDecimal(m.Price)
	m.Description = copyString(m.Description)
	return &m
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func copyDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}
