package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"medicine-inventory-service/internal/domain"
	"medicine-inventory-service/internal/logger"
	"medicine-inventory-service/internal/query"
	"medicine-inventory-service/internal/store"
)

// Limits bounds list pagination for both transports.
type Limits struct {
	DefaultLimit int
	MaxLimit     int
}

// DefaultLimits mirrors the query package defaults.
func DefaultLimits() Limits {
	return Limits{DefaultLimit: query.DefaultLimit, MaxLimit: query.MaxLimit}
}

// HTTPHandler holds dependencies for HTTP handlers.
type HTTPHandler struct {
	categoryStore store.CategoryStorer
	medicineStore store.MedicineStorer
	validate      *validator.Validate
	log           *logger.Logger
	limits        Limits
	now           func() time.Time
}

// NewHTTPHandler creates a new HTTPHandler with dependencies.
func NewHTTPHandler(cs store.CategoryStorer, ms store.MedicineStorer, log *logger.Logger, limits Limits) *HTTPHandler {
	return &HTTPHandler{
		categoryStore: cs,
		medicineStore: ms,
		validate:      validator.New(),
		log:           log,
		limits:        limits,
		now:           time.Now,
	}
}

func (h *HTTPHandler) today() domain.Date {
	return domain.DateOf(h.now())
}

// --- Helpers ---

// ErrorResponse defines the structure for JSON error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (h *HTTPHandler) respondWithError(w http.ResponseWriter, code int, message string) {
	h.respondWithJSON(w, code, ErrorResponse{Error: message})
}

func (h *HTTPHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil { // Avoid writing empty body for 204 No Content
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			h.log.Errorf("Failed to encode JSON response: %v", err)
		}
	}
}

// respondWithStoreError maps store and domain errors onto HTTP status codes.
// action names the failed operation in the generic 500 message.
func (h *HTTPHandler) respondWithStoreError(w http.ResponseWriter, err error, action string) {
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		h.respondWithError(w, http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, store.ErrCategoryNotFound):
		h.respondWithError(w, http.StatusNotFound, store.ErrCategoryNotFound.Error())
	case errors.Is(err, store.ErrMedicineNotFound):
		h.respondWithError(w, http.StatusNotFound, store.ErrMedicineNotFound.Error())
	case errors.Is(err, store.ErrCategoryNameExists):
		h.respondWithError(w, http.StatusConflict, store.ErrCategoryNameExists.Error())
	case errors.Is(err, store.ErrCategoryInUse):
		h.respondWithError(w, http.StatusConflict, store.ErrCategoryInUse.Error())
	case errors.Is(err, store.ErrInvalidCategory):
		h.respondWithError(w, http.StatusBadRequest, store.ErrInvalidCategory.Error())
	default:
		h.log.Errorf("%s: %v", action, err)
		h.respondWithError(w, http.StatusInternalServerError, "Failed to "+action)
	}
}

func (h *HTTPHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, input interface{ normalize() }) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(input); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return false
	}
	input.normalize()
	if err := h.validate.Struct(input); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return false
	}
	return true
}

// --- Category Handlers ---

// CategoryListResponse wraps the category collection.
type CategoryListResponse struct {
	Data []domain.Category `json:"data"`
}

func (h *HTTPHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var input CategoryCreateInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}

	created, err := h.categoryStore.CreateCategory(r.Context(), &domain.Category{
		Name:        input.Name,
		Description: input.Description,
	})
	if err != nil {
		h.log.Debugf("CreateCategory %q rejected: %v", input.Name, err)
		h.respondWithStoreError(w, err, "create category")
		return
	}

	h.log.Infof("Category %q created with ID %s", created.Name, created.ID)
	h.respondWithJSON(w, http.StatusCreated, created)
}

func (h *HTTPHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryStore.ListCategories(r.Context())
	if err != nil {
		h.respondWithStoreError(w, err, "retrieve categories")
		return
	}
	if categories == nil {
		categories = []domain.Category{}
	}
	h.respondWithJSON(w, http.StatusOK, CategoryListResponse{Data: categories})
}

func (h *HTTPHandler) GetCategoryByID(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "categoryId")

	category, err := h.categoryStore.GetCategoryByID(r.Context(), categoryID)
	if err != nil {
		h.respondWithStoreError(w, err, "retrieve category")
		return
	}
	h.respondWithJSON(w, http.StatusOK, category)
}

func (h *HTTPHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "categoryId")

	if err := h.categoryStore.DeleteCategory(r.Context(), categoryID); err != nil {
		h.log.Debugf("DeleteCategory %s rejected: %v", categoryID, err)
		h.respondWithStoreError(w, err, "delete category")
		return
	}

	h.log.Infof("Category %s deleted", categoryID)
	h.respondWithJSON(w, http.StatusNoContent, nil)
}

// RegisterRoutes sets up the HTTP routes for the service.
func (h *HTTPHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Index)

	r.Route("/api/medicines", func(r chi.Router) {
		r.Post("/", h.CreateMedicine)    // POST /api/medicines
		r.Get("/", h.ListMedicines)      // GET /api/medicines
		r.Get("/stats", h.GetStatistics) // GET /api/medicines/stats

		r.Route("/{medicineId}", func(r chi.Router) {
			r.Get("/", h.GetMedicineByID)
			r.Put("/", h.UpdateMedicine)
			r.Patch("/", h.UpdateMedicine)
			r.Delete("/", h.DeleteMedicine)
		})
	})

	r.Route("/api/categories", func(r chi.Router) {
		r.Post("/", h.CreateCategory) // POST /api/categories
		r.Get("/", h.ListCategories)  // GET /api/categories
		r.Route("/{categoryId}", func(r chi.Router) {
			r.Get("/", h.GetCategoryByID)
			r.Delete("/", h.DeleteCategory)
		})
	})
}
