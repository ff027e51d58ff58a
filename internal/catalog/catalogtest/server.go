// Package catalogtest runs an in-process catalog service for tests. It
// answers /search, /recommend and /image/<id> the way the real service does,
// with knobs for failures.
package catalogtest

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/abelbrown/outfitter/internal/catalog"
	json "github.com/goccy/go-json"
)

// Server is a fake catalog service.
type Server struct {
	*httptest.Server

	mu              sync.Mutex
	products        []catalog.Product
	recommendations map[catalog.ProductID][]catalog.Product
	status          map[string]int // path -> forced status
	missingImages   map[string]bool
	hits            map[string]int
}

// NewServer starts a fake service seeded with products. It is closed when
// the test ends.
func NewServer(t testing.TB, products ...catalog.Product) *Server {
	t.Helper()
	s := &Server{
		products:        products,
		recommendations: make(map[catalog.ProductID][]catalog.Product),
		status:          make(map[string]int),
		missingImages:   make(map[string]bool),
		hits:            make(map[string]int),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/search", s.handleSearch)
	mux.HandleFunc("/recommend", s.handleRecommend)
	mux.HandleFunc("/image/", s.handleImage)
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// SetRecommendations fixes the answer to /recommend?id=<id>.
func (s *Server) SetRecommendations(id catalog.ProductID, products ...catalog.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recommendations[id] = products
}

// SetStatus forces every request to path to answer with status. Zero clears it.
func (s *Server) SetStatus(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.status, path)
		return
	}
	s.status[path] = status
}

// MissingImage makes /image/<id> answer 404.
func (s *Server) MissingImage(id catalog.ProductID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.missingImages[id.String()] = true
}

// Hits returns how many requests reached path.
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// ImageURL is the locator the fake service hands out for a product image.
func ImageURL(id catalog.ProductID) string {
	return "/image/" + id.String()
}

// Product builds a fully populated product record.
func Product(id, name, category, color string) catalog.Product {
	pid := catalog.ProductID(id)
	return catalog.Product{
		ID:          pid,
		DisplayName: name,
		Category:    category,
		Color:       color,
		Image:       ImageURL(pid),
	}
}

func (s *Server) begin(w http.ResponseWriter, r *http.Request) bool {
	s.mu.Lock()
	s.hits[r.URL.Path]++
	status := s.status[r.URL.Path]
	s.mu.Unlock()
	if status != 0 {
		http.Error(w, http.StatusText(status), status)
		return false
	}
	return true
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if !s.begin(w, r) {
		return
	}
	q := strings.ToLower(r.URL.Query().Get("q"))

	s.mu.Lock()
	var out []catalog.Product
	for _, p := range s.products {
		if strings.Contains(strings.ToLower(p.DisplayName), q) {
			out = append(out, p)
		}
	}
	s.mu.Unlock()
	writeProducts(w, out)
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	if !s.begin(w, r) {
		return
	}
	id := catalog.ProductID(r.URL.Query().Get("id"))

	s.mu.Lock()
	out := s.recommendations[id]
	s.mu.Unlock()
	writeProducts(w, out)
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	if !s.begin(w, r) {
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/image/")

	s.mu.Lock()
	missing := s.missingImages[id]
	s.mu.Unlock()
	if missing {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.WriteHeader(http.StatusOK)
}

// writeProducts encodes records the way the real service does: numeric ids
// go out as JSON numbers.
func writeProducts(w http.ResponseWriter, products []catalog.Product) {
	records := make([]map[string]any, 0, len(products))
	for _, p := range products {
		rec := map[string]any{
			"id":                 wireID(p.ID),
			"productDisplayName": p.DisplayName,
			"masterCategory":     p.Category,
			"baseColour":         p.Color,
			"image":              p.Image,
		}
		if p.ArticleType != "" {
			rec["articleType"] = p.ArticleType
		}
		if p.Year != "" {
			if n, err := strconv.Atoi(p.Year.String()); err == nil {
				rec["year"] = n
			} else {
				rec["year"] = p.Year
			}
		}
		records = append(records, rec)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(records)
}

func wireID(id catalog.ProductID) any {
	if n, err := strconv.ParseInt(id.String(), 10, 64); err == nil {
		return n
	}
	return id.String()
}
