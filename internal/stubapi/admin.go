package stubapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Shimizu-Technology/hafaloha-go/internal/domain"
)

func (s *Server) adminListProducts(w http.ResponseWriter, r *http.Request) {
	includeArchived := r.URL.Query().Get("include_archived") == "true"
	s.mu.Lock()
	var out []domain.Product
	for _, p := range s.products {
		if p.Archived && !includeArchived {
			continue
		}
		out = append(out, *p)
	}
	s.mu.Unlock()
	respondJSON(w, http.StatusOK, map[string]interface{}{"products": out})
}

func (s *Server) adminCreateProduct(w http.ResponseWriter, r *http.Request) {
	var in domain.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if in.Name == "" {
		respondError(w, http.StatusBadRequest, "invalid_product", "name is required")
		return
	}
	if in.InventoryLevel != "" && !in.InventoryLevel.Valid() {
		respondError(w, http.StatusBadRequest, "invalid_inventory_level", "inventory_level must be none, product or variant")
		return
	}

	s.mu.Lock()
	p := &domain.Product{
		ID:             s.nextID("p"),
		Name:           in.Name,
		Description:    in.Description,
		SKU:            in.SKU,
		Price:          in.Price,
		Available:      in.Available,
		InventoryLevel: in.InventoryLevel,
		StockQuantity:  in.StockQuantity,
		CollectionIDs:  in.CollectionIDs,
		UpdatedAt:      time.Now(),
	}
	if p.InventoryLevel == "" {
		p.InventoryLevel = domain.InventoryNone
	}
	s.products[p.ID] = p
	copied := *p
	s.mu.Unlock()
	respondJSON(w, http.StatusCreated, copied)
}

func (s *Server) adminUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var in domain.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[chi.URLParam(r, "id")]
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "product not found")
		return
	}
	p.Name = in.Name
	p.Description = in.Description
	p.SKU = in.SKU
	p.Price = in.Price
	p.Available = in.Available
	if in.InventoryLevel != "" {
		if !in.InventoryLevel.Valid() {
			respondError(w, http.StatusBadRequest, "invalid_inventory_level", "inventory_level must be none, product or variant")
			return
		}
		p.InventoryLevel = in.InventoryLevel
	}
	p.StockQuantity = in.StockQuantity
	p.CollectionIDs = in.CollectionIDs
	p.UpdatedAt = time.Now()
	respondJSON(w, http.StatusOK, *p)
}

func (s *Server) adminArchiveProduct(w http.ResponseWriter, r *http.Request) {
	s.setArchived(w, r, true)
}

func (s *Server) adminUnarchiveProduct(w http.ResponseWriter, r *http.Request) {
	s.setArchived(w, r, false)
}

func (s *Server) setArchived(w http.ResponseWriter, r *http.Request, archived bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[chi.URLParam(r, "id")]
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "product not found")
		return
	}
	p.Archived = archived
	p.UpdatedAt = time.Now()
	respondJSON(w, http.StatusOK, *p)
}

func (s *Server) adminListVariants(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[chi.URLParam(r, "id")]
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "product not found")
		return
	}
	variants := append([]domain.Variant(nil), p.Variants...)
	respondJSON(w, http.StatusOK, map[string]interface{}{"variants": variants})
}

func (s *Server) adminCreateVariant(w http.ResponseWriter, r *http.Request) {
	var in domain.VariantInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[chi.URLParam(r, "id")]
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "product not found")
		return
	}
	v := domain.Variant{
		ID:            s.nextID("v"),
		ProductID:     p.ID,
		Size:          in.Size,
		Color:         in.Color,
		SKU:           in.SKU,
		Price:         in.Price,
		Available:     in.Available,
		StockQuantity: in.StockQuantity,
	}
	p.Variants = append(p.Variants, v)
	respondJSON(w, http.StatusCreated, v)
}

// adminGenerateVariants creates the requested size/color combinations,
// skipping any that already exist. Generation is idempotent by (size, color).
func (s *Server) adminGenerateVariants(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Combinations []domain.VariantKey `json:"combinations"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[chi.URLParam(r, "id")]
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "product not found")
		return
	}

	have := make(map[domain.VariantKey]struct{}, len(p.Variants))
	for _, v := range p.Variants {
		have[domain.VariantKey{Size: v.Size, Color: v.Color}] = struct{}{}
	}

	created := 0
	for _, key := range req.Combinations {
		if _, exists := have[key]; exists {
			continue
		}
		have[key] = struct{}{}
		p.Variants = append(p.Variants, domain.Variant{
			ID:        s.nextID("v"),
			ProductID: p.ID,
			Size:      key.Size,
			Color:     key.Color,
			Price:     p.Price,
			Available: true,
		})
		created++
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"created":  created,
		"variants": append([]domain.Variant(nil), p.Variants...),
	})
}

func (s *Server) adminUpdateVariant(w http.ResponseWriter, r *http.Request) {
	var in domain.VariantInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := chi.URLParam(r, "id")
	for _, p := range s.products {
		for i := range p.Variants {
			if p.Variants[i].ID == id {
				v := &p.Variants[i]
				v.Size = in.Size
				v.Color = in.Color
				v.SKU = in.SKU
				v.Price = in.Price
				v.Available = in.Available
				v.StockQuantity = in.StockQuantity
				respondJSON(w, http.StatusOK, *v)
				return
			}
		}
	}
	respondError(w, http.StatusNotFound, "not_found", "variant not found")
}

func (s *Server) adminDeleteVariant(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := chi.URLParam(r, "id")
	for _, p := range s.products {
		for i := range p.Variants {
			if p.Variants[i].ID == id {
				p.Variants = append(p.Variants[:i], p.Variants[i+1:]...)
				respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
				return
			}
		}
	}
	respondError(w, http.StatusNotFound, "not_found", "variant not found")
}

func (s *Server) adminUploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "file field is required")
		return
	}
	file.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[chi.URLParam(r, "id")]
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "product not found")
		return
	}
	img := domain.Image{
		ID:        s.nextID("img"),
		ProductID: p.ID,
		URL:       "https://cdn.hafaloha.example/" + header.Filename,
		AltText:   r.FormValue("alt_text"),
		Primary:   len(p.Images) == 0,
		Position:  len(p.Images),
	}
	p.Images = append(p.Images, img)
	respondJSON(w, http.StatusCreated, img)
}

func (s *Server) adminDeleteImage(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := chi.URLParam(r, "id")
	for _, p := range s.products {
		for i := range p.Images {
			if p.Images[i].ID == id {
				p.Images = append(p.Images[:i], p.Images[i+1:]...)
				respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
				return
			}
		}
	}
	respondError(w, http.StatusNotFound, "not_found", "image not found")
}

func (s *Server) adminSetPrimaryImage(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := chi.URLParam(r, "id")
	for _, p := range s.products {
		for i := range p.Images {
			if p.Images[i].ID != id {
				continue
			}
			for j := range p.Images {
				p.Images[j].Primary = j == i
			}
			respondJSON(w, http.StatusOK, p.Images[i])
			return
		}
	}
	respondError(w, http.StatusNotFound, "not_found", "image not found")
}

func (s *Server) adminListCollections(w http.ResponseWriter, r *http.Request) {
	s.listCollections(w, r)
}

func (s *Server) adminCreateCollection(w http.ResponseWriter, r *http.Request) {
	var in domain.CollectionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	s.mu.Lock()
	c := &domain.Collection{ID: s.nextID("col"), Name: in.Name, Description: in.Description}
	s.collections[c.ID] = c
	copied := *c
	s.mu.Unlock()
	respondJSON(w, http.StatusCreated, copied)
}

func (s *Server) adminUpdateCollection(w http.ResponseWriter, r *http.Request) {
	var in domain.CollectionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[chi.URLParam(r, "id")]
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "collection not found")
		return
	}
	c.Name = in.Name
	c.Description = in.Description
	respondJSON(w, http.StatusOK, *c)
}

func (s *Server) adminDeleteCollection(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := chi.URLParam(r, "id")
	if _, ok := s.collections[id]; !ok {
		respondError(w, http.StatusNotFound, "not_found", "collection not found")
		return
	}
	delete(s.collections, id)
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) adminSetCollectionProducts(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductIDs []string `json:"product_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[chi.URLParam(r, "id")]
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "collection not found")
		return
	}
	c.ProductIDs = req.ProductIDs
	respondJSON(w, http.StatusOK, *c)
}

func (s *Server) adminUploadImport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "file field is required")
		return
	}
	file.Close()

	job := domain.ImportJob{
		ID:        uuid.NewString(),
		FileName:  header.Filename,
		Status:    domain.ImportPending,
		CreatedAt: time.Now(),
	}
	s.mu.Lock()
	s.imports[job.ID] = &importState{job: job}
	s.mu.Unlock()
	respondJSON(w, http.StatusCreated, job)
}

// adminGetImport advances the job one step per poll: pending, processing,
// then a terminal status. Files whose name contains "fail" end failed.
func (s *Server) adminGetImport(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.imports[chi.URLParam(r, "id")]
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "import job not found")
		return
	}
	if !state.job.Status.IsTerminal() {
		state.polls++
		switch {
		case state.polls == 1:
			state.job.Status = domain.ImportPending
		case state.polls == 2:
			state.job.Status = domain.ImportProcessing
		case strings.Contains(state.job.FileName, "fail"):
			state.job.Status = domain.ImportFailed
			state.job.ErrorMessage = "import failed: malformed rows"
		default:
			state.job.Status = domain.ImportCompleted
			state.job.TotalRows = 10
			state.job.ProcessedRows = 10
		}
	}
	respondJSON(w, http.StatusOK, state.job)
}

func (s *Server) adminListImports(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	var jobs []domain.ImportJob
	for _, state := range s.imports {
		jobs = append(jobs, state.job)
	}
	s.mu.Unlock()
	respondJSON(w, http.StatusOK, map[string]interface{}{"imports": jobs})
}
