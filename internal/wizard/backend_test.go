package wizard

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"mobility-service/internal/clients"
	"mobility-service/internal/domain/session"
	"mobility-service/internal/domain/vehicle"
)

// fakeBackend is an in-memory stand-in for the HTTP API, just enough for
// the wizard flows under test.
type fakeBackend struct {
	t  *testing.T
	mu sync.Mutex

	session session.UserSession
	cars    []vehicle.ReferenceCar
	docs    map[string]string

	saveDocCalls      int
	submitCalls       int
	listCalls         int
	distributionCalls int
	facetsCalls       int
	viesCalls         int
	stepCalls         []int

	viesGate chan struct{}

	failDocSave          bool
	categoryDeleteStatus int
	nextCategoryID       int

	server *httptest.Server
}

func newFakeBackend(t *testing.T) *fakeBackend {
	b := &fakeBackend{t: t, docs: make(map[string]string)}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/user-sessions", b.listSessions)
	mux.HandleFunc("GET /api/user-sessions/{id}", b.getSession)
	mux.HandleFunc("PUT /api/user-sessions/{id}/step", b.updateStep)
	mux.HandleFunc("POST /api/user-sessions/{id}/submit", b.submit)
	mux.HandleFunc("POST /api/user-sessions/{id}/save-document", b.saveDocument)
	mux.HandleFunc("GET /api/user-sessions/{id}/document-content", b.getDocument)
	mux.HandleFunc("PUT /api/user-sessions/{id}/document-content", b.putDocument)
	mux.HandleFunc("POST /api/user-sessions/{id}/car-categories", b.addCategory)
	mux.HandleFunc("PUT /api/user-sessions/{id}/car-categories/{catId}", b.updateCategory)
	mux.HandleFunc("DELETE /api/user-sessions/{id}/car-categories/{catId}", b.deleteCategory)
	mux.HandleFunc("GET /api/cars", b.listCars)
	mux.HandleFunc("GET /api/cars/distribution", b.distribution)
	mux.HandleFunc("GET /api/cars/facets", b.facets)
	mux.HandleFunc("GET /api/vies/check/{countryCode}/{vatNumber}", b.checkVat)

	b.server = httptest.NewServer(mux)
	t.Cleanup(b.server.Close)
	return b
}

func (b *fakeBackend) client() *Client {
	return NewClient(b.server.URL, "mobility", "budget2025")
}

func respond(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": status < 400,
		"data":    data,
	})
}

func respondError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   msg,
	})
}

func (b *fakeBackend) listSessions(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.session.ID == "" {
		respond(w, http.StatusOK, []session.UserSession{})
		return
	}
	respond(w, http.StatusOK, []session.UserSession{b.session})
}

func (b *fakeBackend) getSession(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if r.PathValue("id") != b.session.ID {
		respondError(w, http.StatusNotFound, "session not found")
		return
	}
	respond(w, http.StatusOK, b.session)
}

func (b *fakeBackend) updateStep(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var req session.UpdateStepRequest
	json.NewDecoder(r.Body).Decode(&req)
	b.stepCalls = append(b.stepCalls, req.Step)
	b.session.CurrentStep = req.Step
	if b.session.Status == session.StatusDraft {
		b.session.Status = session.StatusInProgress
	}
	respond(w, http.StatusOK, b.session)
}

func (b *fakeBackend) submit(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.submitCalls++
	if !b.session.CanGenerateDocument() {
		respondError(w, http.StatusUnprocessableEntity, "incomplete categories")
		return
	}
	b.session.Status = session.StatusSubmitted
	b.session.DocumentStatus = session.DocumentSubmitted
	b.session.CurrentStep = session.LastStep
	respond(w, http.StatusOK, b.session)
}

func (b *fakeBackend) saveDocument(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.saveDocCalls++
	if b.failDocSave {
		respondError(w, http.StatusInternalServerError, "storage down")
		return
	}
	if !b.session.CanGenerateDocument() {
		respondError(w, http.StatusUnprocessableEntity, "incomplete categories")
		return
	}
	urls := map[string]session.DocumentURL{}
	for _, lang := range []string{"en", "nl", "fr"} {
		b.docs[lang] = "<html>" + lang + "</html>"
		urls[lang] = session.DocumentURL{PreviewURL: "/doc/" + lang}
	}
	respond(w, http.StatusOK, session.SaveDocumentResponse{DocumentURLs: urls})
}

func (b *fakeBackend) getDocument(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	lang := r.URL.Query().Get("language")
	content, ok := b.docs[lang]
	if !ok {
		respondError(w, http.StatusNotFound, "no document")
		return
	}
	respond(w, http.StatusOK, session.DocumentContentResponse{Language: lang, Content: content})
}

func (b *fakeBackend) putDocument(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failDocSave {
		respondError(w, http.StatusInternalServerError, "storage down")
		return
	}
	var req session.UpdateDocumentContentRequest
	json.NewDecoder(r.Body).Decode(&req)
	b.docs[req.Language] = req.DocumentContent
	respond(w, http.StatusOK, nil)
}

func (b *fakeBackend) storeCategory(req *session.CategoryRequest, id string) session.CarCategory {
	c := session.CarCategory{
		ID:               id,
		Name:             req.Name,
		AnnualKilometers: req.AnnualKilometers,
		LeasingDuration:  req.LeasingDuration,
		ReferenceCar:     req.ReferenceCar,
		MonthlyTco:       req.MonthlyTco,
		Status:           session.CategoryPending,
	}
	if c.Valid() {
		c.Status = session.CategorySuccess
	}
	return c
}

func (b *fakeBackend) addCategory(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var req session.CategoryRequest
	json.NewDecoder(r.Body).Decode(&req)
	b.nextCategoryID++
	c := b.storeCategory(&req, "cat-"+strconv.Itoa(b.nextCategoryID))
	b.session.CarCategories = append(b.session.CarCategories, c)
	respond(w, http.StatusCreated, b.session)
}

func (b *fakeBackend) updateCategory(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var req session.CategoryRequest
	json.NewDecoder(r.Body).Decode(&req)
	id := r.PathValue("catId")
	for i := range b.session.CarCategories {
		if b.session.CarCategories[i].ID == id {
			b.session.CarCategories[i] = b.storeCategory(&req, id)
			respond(w, http.StatusOK, b.session)
			return
		}
	}
	respondError(w, http.StatusNotFound, "category not found")
}

func (b *fakeBackend) deleteCategory(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.categoryDeleteStatus > 0 {
		respondError(w, b.categoryDeleteStatus, "delete refused")
		return
	}
	id := r.PathValue("catId")
	for i := range b.session.CarCategories {
		if b.session.CarCategories[i].ID == id {
			b.session.CarCategories = append(b.session.CarCategories[:i], b.session.CarCategories[i+1:]...)
			respond(w, http.StatusOK, b.session)
			return
		}
	}
	respondError(w, http.StatusNotFound, "category not found")
}

func (b *fakeBackend) listCars(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.listCalls++
	respond(w, http.StatusOK, vehicle.ListResponse{
		Cars:       b.cars,
		Total:      int64(len(b.cars)),
		Page:       1,
		TotalPages: 1,
	})
}

func (b *fakeBackend) distribution(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.distributionCalls++
	buckets := []vehicle.DistributionBucket{}
	if len(b.cars) > 0 {
		lo, hi := b.cars[0].MonthlyTco, b.cars[0].MonthlyTco
		for _, c := range b.cars[1:] {
			if c.MonthlyTco < lo {
				lo = c.MonthlyTco
			}
			if c.MonthlyTco > hi {
				hi = c.MonthlyTco
			}
		}
		buckets = append(buckets, vehicle.DistributionBucket{RangeMin: lo, RangeMax: hi, Count: len(b.cars)})
	}
	respond(w, http.StatusOK, buckets)
}

func (b *fakeBackend) facets(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.facetsCalls++
	f := vehicle.Facets{Brands: []string{}, FuelTypes: []string{}}
	seenBrand := map[string]bool{}
	seenFuel := map[string]bool{}
	for _, c := range b.cars {
		if !seenBrand[c.Brand] {
			seenBrand[c.Brand] = true
			f.Brands = append(f.Brands, c.Brand)
		}
		if !seenFuel[c.FuelType] {
			seenFuel[c.FuelType] = true
			f.FuelTypes = append(f.FuelTypes, c.FuelType)
		}
	}
	respond(w, http.StatusOK, f)
}

func (b *fakeBackend) checkVat(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.viesCalls++
	gate := b.viesGate
	b.mu.Unlock()

	if gate != nil {
		<-gate
	}
	respond(w, http.StatusOK, clients.VATCheckResult{
		CountryCode: r.PathValue("countryCode"),
		VatNumber:   r.PathValue("vatNumber"),
		Valid:       true,
		Name:        "ACME BV",
	})
}

func tco(v float64) *float64 { return &v }

func validCategory(id string) session.CarCategory {
	return session.CarCategory{
		ID:               id,
		Name:             "Category " + id,
		AnnualKilometers: 15000,
		LeasingDuration:  48,
		MonthlyTco:       tco(450),
		ReferenceCar:     &session.ReferenceCarRef{ID: 1, Brand: "Volvo", Model: "XC40", FuelType: "hybrid"},
		Status:           session.CategorySuccess,
	}
}
