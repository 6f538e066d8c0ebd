package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"medicine-inventory-service/internal/domain"
	"medicine-inventory-service/internal/query"
)

// MedicineResponse is a medicine with its derived flags.
type MedicineResponse struct {
	domain.Medicine
	IsExpired  bool `json:"is_expired"`
	IsLowStock bool `json:"is_low_stock"`
}

func newMedicineResponse(m domain.Medicine, today domain.Date) MedicineResponse {
	return MedicineResponse{
		Medicine:   m,
		IsExpired:  m.IsExpired(today),
		IsLowStock: m.IsLowStock(),
	}
}

func newMedicineResponses(medicines []domain.Medicine, today domain.Date) []MedicineResponse {
	out := make([]MedicineResponse, 0, len(medicines))
	for _, m := range medicines {
		out = append(out, newMedicineResponse(m, today))
	}
	return out
}

// Pagination echoes the effective window and the filtered total.
type Pagination struct {
	Skip       int `json:"skip"`
	Limit      int `json:"limit"`
	TotalItems int `json:"total_items"`
}

// MedicineListResponse is one page of medicines.
type MedicineListResponse struct {
	Data       []MedicineResponse `json:"data"`
	Pagination Pagination         `json:"pagination"`
}

// parseFilter reads search, category, expired, skip and limit from the query string.
func (l Limits) parseFilter(q url.Values) (query.Filter, error) {
	f := query.Filter{Limit: l.DefaultLimit}

	if s := strings.TrimSpace(q.Get("search")); s != "" {
		f.Search = &s
	}
	if c := normalizeCategoryName(q.Get("category")); c != "" {
		f.Category = &c
	}
	if raw := strings.TrimSpace(q.Get("expired")); raw != "" {
		expired, err := strconv.ParseBool(raw)
		if err != nil {
			return query.Filter{}, fmt.Errorf("invalid expired %q: must be true or false", raw)
		}
		f.Expired = &expired
	}
	if raw := strings.TrimSpace(q.Get("skip")); raw != "" {
		skip, err := strconv.Atoi(raw)
		if err != nil || skip < 0 {
			return query.Filter{}, fmt.Errorf("invalid skip %q: must be a non-negative integer", raw)
		}
		f.Skip = skip
	}
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return query.Filter{}, fmt.Errorf("invalid limit %q: must be a non-negative integer", raw)
		}
		f.Limit = limit
	}
	f.Limit = l.clamp(f.Limit)
	return f, nil
}

func (l Limits) clamp(limit int) int {
	if limit > l.MaxLimit {
		return l.MaxLimit
	}
	return limit
}

// --- Medicine Handlers ---

func (h *HTTPHandler) CreateMedicine(w http.ResponseWriter, r *http.Request) {
	var input MedicineCreateInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}

	today := h.today()
	medicine, err := input.toDomain(today)
	if err != nil {
		h.respondWithStoreError(w, err, "create medicine")
		return
	}

	created, err := h.medicineStore.CreateMedicine(r.Context(), medicine)
	if err != nil {
		h.log.Debugf("CreateMedicine %q rejected: %v", input.Name, err)
		h.respondWithStoreError(w, err, "create medicine")
		return
	}

	h.log.Infof("Medicine %q created with ID %s", created.Name, created.ID)
	h.respondWithJSON(w, http.StatusCreated, newMedicineResponse(*created, today))
}

func (h *HTTPHandler) ListMedicines(w http.ResponseWriter, r *http.Request) {
	filter, err := h.limits.parseFilter(r.URL.Query())
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	medicines, err := h.medicineStore.ListMedicines(r.Context())
	if err != nil {
		h.respondWithStoreError(w, err, "retrieve medicines")
		return
	}

	today := h.today()
	page := query.Apply(medicines, filter, today)
	h.respondWithJSON(w, http.StatusOK, MedicineListResponse{
		Data: newMedicineResponses(page.Items, today),
		Pagination: Pagination{
			Skip:       page.Skip,
			Limit:      page.Limit,
			TotalItems: page.Total,
		},
	})
}

// GetStatistics summarizes every medicine matching the filters, ignoring skip and limit.
func (h *HTTPHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	filter, err := h.limits.parseFilter(r.URL.Query())
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	medicines, err := h.medicineStore.ListMedicines(r.Context())
	if err != nil {
		h.respondWithStoreError(w, err, "compute statistics")
		return
	}

	today := h.today()
	h.respondWithJSON(w, http.StatusOK, query.Summarize(query.Select(medicines, filter, today), today))
}

func (h *HTTPHandler) GetMedicineByID(w http.ResponseWriter, r *http.Request) {
	medicineID := chi.URLParam(r, "medicineId")

	medicine, err := h.medicineStore.GetMedicineByID(r.Context(), medicineID)
	if err != nil {
		h.respondWithStoreError(w, err, "retrieve medicine")
		return
	}
	h.respondWithJSON(w, http.StatusOK, newMedicineResponse(*medicine, h.today()))
}

// UpdateMedicine serves both PUT and PATCH; only the supplied fields change.
func (h *HTTPHandler) UpdateMedicine(w http.ResponseWriter, r *http.Request) {
	medicineID := chi.URLParam(r, "medicineId")

	var input MedicineUpdateInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}

	today := h.today()
	update, err := input.toDomain(today)
	if err != nil {
		h.respondWithStoreError(w, err, "update medicine")
		return
	}

	updated, err := h.medicineStore.UpdateMedicine(r.Context(), medicineID, update)
	if err != nil {
		h.log.Debugf("UpdateMedicine %s rejected: %v", medicineID, err)
		h.respondWithStoreError(w, err, "update medicine")
		return
	}

	h.log.Infof("Medicine %s updated", medicineID)
	h.respondWithJSON(w, http.StatusOK, newMedicineResponse(*updated, today))
}

func (h *HTTPHandler) DeleteMedicine(w http.ResponseWriter, r *http.Request) {
	medicineID := chi.URLParam(r, "medicineId")

	if err := h.medicineStore.DeleteMedicine(r.Context(), medicineID); err != nil {
		h.respondWithStoreError(w, err, "delete medicine")
		return
	}

	h.log.Infof("Medicine %s deleted", medicineID)
	h.respondWithJSON(w, http.StatusNoContent, nil)
}
