package api

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"

	"medicine-inventory-service/internal/domain"
	"medicine-inventory-service/internal/query"
)

//go:embed templates/index.gohtml
var templatesFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templatesFS, "templates/index.gohtml"))

// pageBootstrap is rendered into the page so the first paint needs no API round trip.
type pageBootstrap struct {
	Categories []domain.Category    `json:"categories"`
	Medicines  MedicineListResponse `json:"medicines"`
	Stats      query.Stats          `json:"stats"`
}

type pageData struct {
	Title         string
	LowStockLimit int
	Bootstrap     template.JS
}

// Index renders the inventory page.
func (h *HTTPHandler) Index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	categories, err := h.categoryStore.ListCategories(ctx)
	if err != nil {
		h.log.Errorf("Index: listing categories failed: %v", err)
		http.Error(w, "Failed to load inventory", http.StatusInternalServerError)
		return
	}
	medicines, err := h.medicineStore.ListMedicines(ctx)
	if err != nil {
		h.log.Errorf("Index: listing medicines failed: %v", err)
		http.Error(w, "Failed to load inventory", http.StatusInternalServerError)
		return
	}
	if categories == nil {
		categories = []domain.Category{}
	}

	today := h.today()
	page := query.Apply(medicines, query.Filter{Limit: h.limits.DefaultLimit}, today)
	payload, err := json.Marshal(pageBootstrap{
		Categories: categories,
		Medicines: MedicineListResponse{
			Data:       newMedicineResponses(page.Items, today),
			Pagination: Pagination{Skip: page.Skip, Limit: page.Limit, TotalItems: page.Total},
		},
		Stats: query.Summarize(medicines, today),
	})
	if err != nil {
		h.log.Errorf("Index: encoding bootstrap data failed: %v", err)
		http.Error(w, "Failed to load inventory", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, pageData{
		Title:         "Medicine Inventory",
		LowStockLimit: domain.LowStockThreshold,
		Bootstrap:     template.JS(payload),
	}); err != nil {
		h.log.Errorf("Index: rendering template failed: %v", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
