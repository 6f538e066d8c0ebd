package api

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"medicine-inventory-service/internal/domain"
)

// titleCase upper-cases the first letter of every word and lower-cases the rest.
// A Caser is stateful, so one is built per call.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

func normalizeCategoryName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

// trimOptional trims s and drops it when nothing is left.
func trimOptional(s *string) *string {
	t := trimPtr(s)
	if t == nil || *t == "" {
		return nil
	}
	return t
}

func mapPtr(s *string, fn func(string) string) *string {
	if s == nil {
		return nil
	}
	v := fn(*s)
	return &v
}

// nullable tells an absent JSON field apart from an explicit null.
type nullable[T any] struct {
	Set   bool
	Value *T
}

func (n *nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// cleared reports an explicit null.
func (n nullable[T]) cleared() bool { return n.Set && n.Value == nil }

// CategoryCreateInput defines the expected input for creating a category.
type CategoryCreateInput struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description" validate:"omitempty,max=300"`
}

func (in *CategoryCreateInput) normalize() {
	in.Name = normalizeCategoryName(in.Name)
	in.Description = trimOptional(in.Description)
}

// MedicineCreateInput defines the expected input for creating a medicine.
// Price accepts a JSON number or a numeric string.
type MedicineCreateInput struct {
	Name          string           `json:"name" validate:"required,max=200"`
	Category      string           `json:"category" validate:"required,max=100"`
	Dosage        string           `json:"dosage" validate:"required,max=100"`
	Manufacturer  string           `json:"manufacturer" validate:"required,max=200"`
	ExpiryDate    string           `json:"expiry_date" validate:"required,datetime=2006-01-02"`
	StockQuantity *int             `json:"stock_quantity" validate:"required,gte=0"`
	Price         *decimal.Decimal `json:"price" validate:"-"`
	Description   *string          `json:"description" validate:"omitempty,max=500"`
}

func (in *MedicineCreateInput) normalize() {
	in.Name = titleCase(strings.TrimSpace(in.Name))
	in.Category = normalizeCategoryName(in.Category)
	in.Dosage = strings.TrimSpace(in.Dosage)
	in.Manufacturer = titleCase(strings.TrimSpace(in.Manufacturer))
	in.ExpiryDate = strings.TrimSpace(in.ExpiryDate)
	in.Description = trimOptional(in.Description)
}

// toDomain converts validated input and rejects expiry dates that are not after today.
func (in *MedicineCreateInput) toDomain(today domain.Date) (*domain.Medicine, error) {
	expiry, err := parseFutureDate(in.ExpiryDate, today)
	if err != nil {
		return nil, err
	}
	if in.Price != nil && in.Price.IsNegative() {
		return nil, &domain.ValidationError{Field: "price", Reason: "must be greater than or equal to 0"}
	}
	return &domain.Medicine{
		Name:          in.Name,
		Category:      in.Category,
		Dosage:        in.Dosage,
		Manufacturer:  in.Manufacturer,
		ExpiryDate:    expiry,
		StockQuantity: *in.StockQuantity,
		Price:         in.Price,
		Description:   in.Description,
	}, nil
}

// MedicineUpdateInput carries a partial update. Absent fields stay unchanged;
// an explicit null clears price or description.
type MedicineUpdateInput struct {
	Name          *string                   `json:"name" validate:"omitempty,min=1,max=200"`
	Category      *string                   `json:"category" validate:"omitempty,min=1,max=100"`
	Dosage        *string                   `json:"dosage" validate:"omitempty,min=1,max=100"`
	Manufacturer  *string                   `json:"manufacturer" validate:"omitempty,min=1,max=200"`
	ExpiryDate    *string                   `json:"expiry_date" validate:"omitempty,datetime=2006-01-02"`
	StockQuantity *int                      `json:"stock_quantity" validate:"omitempty,gte=0"`
	Price         nullable[decimal.Decimal] `json:"price" validate:"-"`
	Description   nullable[string]          `json:"description" validate:"-"`
}

func (in *MedicineUpdateInput) normalize() {
	in.Name = mapPtr(trimPtr(in.Name), titleCase)
	in.Category = mapPtr(in.Category, normalizeCategoryName)
	in.Dosage = trimPtr(in.Dosage)
	in.Manufacturer = mapPtr(trimPtr(in.Manufacturer), titleCase)
	in.ExpiryDate = trimPtr(in.ExpiryDate)
	in.Description.Value = trimPtr(in.Description.Value)
}

func (in *MedicineUpdateInput) toDomain(today domain.Date) (domain.MedicineUpdate, error) {
	update := domain.MedicineUpdate{
		Name:          in.Name,
		Category:      in.Category,
		Dosage:        in.Dosage,
		Manufacturer:  in.Manufacturer,
		StockQuantity: in.StockQuantity,
		Price:         in.Price.Value,
		Description:   in.Description.Value,

		ClearPrice:       in.Price.cleared(),
		ClearDescription: in.Description.cleared(),
	}
	if in.ExpiryDate != nil {
		expiry, err := parseFutureDate(*in.ExpiryDate, today)
		if err != nil {
			return domain.MedicineUpdate{}, err
		}
		update.ExpiryDate = &expiry
	}
	if in.Price.Value != nil && in.Price.Value.IsNegative() {
		return domain.MedicineUpdate{}, &domain.ValidationError{Field: "price", Reason: "must be greater than or equal to 0"}
	}
	if in.Description.Value != nil && utf8.RuneCountInString(*in.Description.Value) > 500 {
		return domain.MedicineUpdate{}, &domain.ValidationError{Field: "description", Reason: "must be at most 500 characters"}
	}
	return update, nil
}

// parseFutureDate accepts only dates strictly after today.
func parseFutureDate(s string, today domain.Date) (domain.Date, error) {
	d, err := domain.ParseDate(s)
	if err != nil {
		return domain.Date{}, &domain.ValidationError{Field: "expiry_date", Reason: "must be a date in YYYY-MM-DD format"}
	}
	if !d.After(today) {
		return domain.Date{}, &domain.ValidationError{Field: "expiry_date", Reason: "must be in the future"}
	}
	return d, nil
}
