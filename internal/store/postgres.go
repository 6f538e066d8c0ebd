package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"medicine-inventory-service/internal/domain"
)

var _ Store = (*PostgresStore)(nil)

// Schema creates the tables used by PostgresStore. It is idempotent and does not migrate.
const Schema = `
CREATE SCHEMA IF NOT EXISTS inventory;

CREATE TABLE IF NOT EXISTS inventory.categories (
	seq         BIGSERIAL,
	id          TEXT PRIMARY KEY,
	name        VARCHAR(100) NOT NULL,
	description TEXT,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL,
	CONSTRAINT categories_name_key UNIQUE (name)
);

CREATE TABLE IF NOT EXISTS inventory.medicines (
	seq            BIGSERIAL,
	id             TEXT PRIMARY KEY,
	name           VARCHAR(200) NOT NULL,
	category       VARCHAR(100) NOT NULL REFERENCES inventory.categories (name),
	dosage         VARCHAR(100) NOT NULL,
	manufacturer   VARCHAR(200) NOT NULL,
	expiry_date    DATE NOT NULL,
	stock_quantity INTEGER NOT NULL CHECK (stock_quantity >= 0),
	price          NUMERIC CHECK (price >= 0),
	description    TEXT,
	created_at     TIMESTAMPTZ NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL
);
`

const medicineColumns = `id, name, category, dosage, manufacturer, expiry_date, stock_quantity, price, description, created_at, updated_at`

// PostgresStore implements Store on PostgreSQL. Insertion order is kept by the seq columns.
type PostgresStore struct {
	db    *sql.DB
	now   func() time.Time
	newID func() string
}

// NewPostgresStore creates a new PostgresStore instance.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now, newID: uuid.NewString}
}

// EnsureSchema creates the inventory tables if they do not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("store: EnsureSchema failed: %w", err)
	}
	return nil
}

// --- CategoryStorer Implementation ---

func (s *PostgresStore) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if err := category.Validate(); err != nil {
		return nil, fmt.Errorf("store: CreateCategory: %w", err)
	}
	query := `
		INSERT INTO inventory.categories (id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING id, name, description, created_at, updated_at;
	`
	row := s.db.QueryRowContext(ctx, query, s.newID(), category.Name, category.Description, s.now().UTC())

	var created domain.Category
	err := row.Scan(&created.ID, &created.Name, &created.Description, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "categories_name_key", "Key (name)") {
			return nil, ErrCategoryNameExists
		}
		return nil, fmt.Errorf("store: CreateCategory failed to scan row: %w", err)
	}
	return &created, nil
}

func (s *PostgresStore) GetCategoryByID(ctx context.Context, id string) (*domain.Category, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM inventory.categories
		WHERE id = $1;
	`
	var category domain.Category
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&category.ID, &category.Name, &category.Description, &category.CreatedAt, &category.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("store: GetCategoryByID failed to scan row: %w", err)
	}
	return &category, nil
}

func (s *PostgresStore) ListCategories(ctx context.Context) ([]domain.Category, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM inventory.categories
		ORDER BY seq ASC;
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("store: ListCategories failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("store: ListCategories failed to scan category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("store: ListCategories iteration error: %w", err)
	}
	return categories, nil
}

// DeleteCategory removes the category only when no medicine references its name.
// When nothing is deleted, a follow-up existence check tells not-found from in-use.
func (s *PostgresStore) DeleteCategory(ctx context.Context, id string) error {
	query := `
		DELETE FROM inventory.categories c
		WHERE c.id = $1
		  AND NOT EXISTS (SELECT 1 FROM inventory.medicines m WHERE m.category = c.name);
	`
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrCategoryInUse
		}
		return fmt.Errorf("store: DeleteCategory failed to execute delete: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: DeleteCategory failed to get rows affected: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	var exists bool
	checkExistenceQuery := `SELECT EXISTS(SELECT 1 FROM inventory.categories WHERE id = $1)`
	if err := s.db.QueryRowContext(ctx, checkExistenceQuery, id).Scan(&exists); err != nil {
		return fmt.Errorf("store: DeleteCategory failed to check existence: %w", err)
	}
	if !exists {
		return ErrCategoryNotFound
	}
	return ErrCategoryInUse
}

// --- MedicineStorer Implementation ---

// CreateMedicine inserts only when the referenced category exists; no row back means it does not.
func (s *PostgresStore) CreateMedicine(ctx context.Context, medicine *domain.Medicine) (*domain.Medicine, error) {
	if err := medicine.Validate(); err != nil {
		return nil, fmt.Errorf("store: CreateMedicine: %w", err)
	}
	query := `
		INSERT INTO inventory.medicines
			(id, name, category, dosage, manufacturer, expiry_date, stock_quantity, price, description, created_at, updated_at)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10
		WHERE EXISTS (SELECT 1 FROM inventory.categories WHERE name = $3)
		RETURNING ` + medicineColumns + `;
	`
	row := s.db.QueryRowContext(ctx, query,
		s.newID(), medicine.Name, medicine.Category, medicine.Dosage, medicine.Manufacturer,
		medicine.ExpiryDate, medicine.StockQuantity, nullDecimal(medicine.Price), medicine.Description,
		s.now().UTC(),
	)

	created, err := scanMedicine(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isForeignKeyViolation(err) {
			return nil, ErrInvalidCategory
		}
		return nil, fmt.Errorf("store: CreateMedicine failed to scan row: %w", err)
	}
	return created, nil
}

func (s *PostgresStore) GetMedicineByID(ctx context.Context, id string) (*domain.Medicine, error) {
	query := `SELECT ` + medicineColumns + ` FROM inventory.medicines WHERE id = $1;`
	m, err := scanMedicine(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMedicineNotFound
		}
		return nil, fmt.Errorf("store: GetMedicineByID failed to scan row: %w", err)
	}
	return m, nil
}

func (s *PostgresStore) ListMedicines(ctx context.Context) ([]domain.Medicine, error) {
	query := `SELECT ` + medicineColumns + ` FROM inventory.medicines ORDER BY seq ASC;`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("store: ListMedicines failed to query medicines: %w", err)
	}
	defer rows.Close()

	medicines := []domain.Medicine{}
	for rows.Next() {
		m, err := scanMedicine(rows)
		if err != nil {
			return nil, fmt.Errorf("store: ListMedicines failed to scan medicine row: %w", err)
		}
		medicines = append(medicines, *m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("store: ListMedicines iteration error: %w", err)
	}
	return medicines, nil
}

// UpdateMedicine locks the row, merges the update in Go and writes every mutable column back.
func (s *PostgresStore) UpdateMedicine(ctx context.Context, id string, update domain.MedicineUpdate) (*domain.Medicine, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store: UpdateMedicine failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	selectQuery := `SELECT ` + medicineColumns + ` FROM inventory.medicines WHERE id = $1 FOR UPDATE;`
	current, err := scanMedicine(tx.QueryRowContext(ctx, selectQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMedicineNotFound
		}
		return nil, fmt.Errorf("store: UpdateMedicine failed to load medicine: %w", err)
	}
	if update.IsEmpty() {
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("store: UpdateMedicine failed to commit: %w", err)
		}
		return current, nil
	}

	merged := update.Apply(*current)
	if err := merged.Validate(); err != nil {
		return nil, fmt.Errorf("store: UpdateMedicine: %w", err)
	}

	updateQuery := `
		UPDATE inventory.medicines
		SET name = $1, category = $2, dosage = $3, manufacturer = $4, expiry_date = $5,
			stock_quantity = $6, price = $7, description = $8, updated_at = $9
		WHERE id = $10
		  AND EXISTS (SELECT 1 FROM inventory.categories WHERE name = $2)
		RETURNING ` + medicineColumns + `;
	`
	updated, err := scanMedicine(tx.QueryRowContext(ctx, updateQuery,
		merged.Name, merged.Category, merged.Dosage, merged.Manufacturer, merged.ExpiryDate,
		merged.StockQuantity, nullDecimal(merged.Price), merged.Description, s.now().UTC(), id,
	))
	if err != nil {
		// The row is locked, so no row back means the category does not exist.
		if errors.Is(err, sql.ErrNoRows) || isForeignKeyViolation(err) {
			return nil, ErrInvalidCategory
		}
		return nil, fmt.Errorf("store: UpdateMedicine failed to scan row: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: UpdateMedicine failed to commit: %w", err)
	}
	return updated, nil
}

func (s *PostgresStore) DeleteMedicine(ctx context.Context, id string) error {
	query := `DELETE FROM inventory.medicines WHERE id = $1;`
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("store: DeleteMedicine failed to execute delete: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: DeleteMedicine failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrMedicineNotFound
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// --- Helpers ---

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMedicine(row rowScanner) (*domain.Medicine, error) {
	var (
		m     domain.Medicine
		price decimal.NullDecimal
	)
	err := row.Scan(
		&m.ID, &m.Name, &m.Category, &m.Dosage, &m.Manufacturer, &m.ExpiryDate,
		&m.StockQuantity, &price, &m.Description, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if price.Valid {
		p := price.Decimal
		m.Price = &p
	}
	return &m, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func isUniqueViolation(err error, constraint, detail string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return false
	}
	return strings.Contains(pqErr.Constraint, constraint) || strings.Contains(pqErr.Detail, detail)
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}
