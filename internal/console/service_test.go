package console

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"
)

// fakeService is an in-memory promotion service speaking the same JSON as
// the real one. Dates are returned as HTTP dates, the way the service
// serializes datetimes.
type fakeService struct {
	mu     sync.Mutex
	nextID int
	items  map[int]fakePromotion

	deleteStatus int
}

type fakePromotion struct {
	ID            int       `json:"id"`
	Title         string    `json:"title"`
	PromotionType string    `json:"promotion_type"`
	StartDate     time.Time `json:"-"`
	EndDate       time.Time `json:"-"`
	Active        bool      `json:"active"`
}

func (p fakePromotion) MarshalJSON() ([]byte, error) {
	type alias fakePromotion
	return json.Marshal(struct {
		alias
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
	}{alias(p), p.StartDate.UTC().Format(http.TimeFormat), p.EndDate.UTC().Format(http.TimeFormat)})
}

func newFakeService(t *testing.T) (*fakeService, *httptest.Server) {
	t.Helper()
	svc := &fakeService{nextID: 1, items: map[int]fakePromotion{}}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /promotions", svc.create)
	mux.HandleFunc("GET /promotions", svc.list)
	mux.HandleFunc("GET /promotions/{id}", svc.get)
	mux.HandleFunc("PUT /promotions/{id}", svc.update)
	mux.HandleFunc("DELETE /promotions/{id}", svc.delete)
	mux.HandleFunc("PUT /promotions/{id}/activate", svc.setActive(true))
	mux.HandleFunc("PUT /promotions/{id}/deactivate", svc.setActive(false))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return svc, server
}

func (s *fakeService) seed(p fakePromotion) fakePromotion {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.nextID
	s.nextID++
	s.items[p.ID] = p
	return p
}

// stored returns the promotions currently held, keyed by ID.
func (s *fakeService) stored() map[int]fakePromotion {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make(map[int]fakePromotion, len(s.items))
	for id, p := range s.items {
		items[id] = p
	}
	return items
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, format string, args ...any) {
	writeJSON(w, status, map[string]any{
		"status":  status,
		"error":   http.StatusText(status),
		"message": fmt.Sprintf(format, args...),
	})
}

// decodeBody reads a create/update body. active may be a bool or a string.
func decodeBody(r *http.Request) (fakePromotion, error) {
	var body struct {
		Title         string `json:"title"`
		PromotionType string `json:"promotion_type"`
		StartDate     string `json:"start_date"`
		EndDate       string `json:"end_date"`
		Active        any    `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return fakePromotion{}, err
	}
	start, err := time.Parse("2006-01-02", body.StartDate)
	if err != nil {
		return fakePromotion{}, fmt.Errorf("invalid start_date: %s", body.StartDate)
	}
	end, err := time.Parse("2006-01-02", body.EndDate)
	if err != nil {
		return fakePromotion{}, fmt.Errorf("invalid end_date: %s", body.EndDate)
	}

	p := fakePromotion{Title: body.Title, PromotionType: body.PromotionType, StartDate: start, EndDate: end}
	switch v := body.Active.(type) {
	case bool:
		p.Active = v
	case string:
		p.Active = v == "true"
	}
	return p, nil
}

func (s *fakeService) lookup(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err == nil {
		if _, ok := s.items[id]; ok {
			return id, true
		}
	}
	writeMessage(w, http.StatusNotFound, "Promotion with id '%s' was not found.", r.PathValue("id"))
	return 0, false
}

func (s *fakeService) create(w http.ResponseWriter, r *http.Request) {
	p, err := decodeBody(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "%s", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, s.seed(p))
}

func (s *fakeService) get(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.lookup(w, r); ok {
		writeJSON(w, http.StatusOK, s.items[id])
	}
}

func (s *fakeService) update(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.lookup(w, r)
	if !ok {
		return
	}
	p, err := decodeBody(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "%s", err.Error())
		return
	}
	p.ID = id
	s.items[id] = p
	writeJSON(w, http.StatusOK, p)
}

func (s *fakeService) delete(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteStatus != 0 {
		writeMessage(w, s.deleteStatus, "Delete is disabled.")
		return
	}
	if id, err := strconv.Atoi(r.PathValue("id")); err == nil {
		delete(s.items, id)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *fakeService) setActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		id, ok := s.lookup(w, r)
		if !ok {
			return
		}
		p := s.items[id]
		p.Active = active
		s.items[id] = p
		writeJSON(w, http.StatusOK, p)
	}
}

func (s *fakeService) list(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := r.URL.Query()

	results := []fakePromotion{}
	for _, p := range s.items {
		if title := q.Get("title"); title != "" && p.Title != title {
			continue
		}
		if typ := q.Get("type"); typ != "" && p.PromotionType != typ {
			continue
		}
		if active := q.Get("active"); active != "" && strconv.FormatBool(p.Active) != active {
			continue
		}
		results = append(results, p)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	writeJSON(w, http.StatusOK, results)
}
