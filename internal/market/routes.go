package market

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the market price API onto the given router.
func (s *Store) RegisterRoutes(r chi.Router) {
	r.Get("/api/market/prices", s.handleList)
	r.Get("/api/market/prices/{crop}", s.handleCrop)
}

func (s *Store) handleList(w http.ResponseWriter, r *http.Request) {
	prices, err := s.List(r.Context(), r.URL.Query().Get("crop"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if prices == nil {
		prices = []Price{}
	}
	writeJSON(w, http.StatusOK, prices)
}

func (s *Store) handleCrop(w http.ResponseWriter, r *http.Request) {
	crop := chi.URLParam(r, "crop")
	prices, err := s.List(r.Context(), crop)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if len(prices) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no prices for crop: " + crop})
		return
	}
	writeJSON(w, http.StatusOK, prices)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
