// Package main implements a mock Flipp API server for local development.
// It serves canned flyers and items from a JSON fixture so the tracker can
// run a full refresh without reaching the real flyer gateway.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

type fixture struct {
	Flyers []json.RawMessage            `json:"flyers"`
	Items  map[string][]json.RawMessage `json:"items"`
}

type named struct {
	Name         string `json:"name"`
	MerchantName string `json:"merchant_name"`
}

func main() {
	port := flag.Int("port", 8089, "port to listen on")
	fixtureFile := flag.String("fixture", "tools/mock-server/testdata/flipp.json", "path to flyer fixture")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	fx, err := loadFixture(*fixtureFile)
	if err != nil {
		logger.Error("failed to load fixture", "path", *fixtureFile, "error", err)
		os.Exit(1)
	}
	logger.Info("loaded fixture", "flyers", len(fx.Flyers))

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock Flipp server", "addr", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      requestLogger(logger, newMux(logger, fx)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newMux(logger *slog.Logger, fx *fixture) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /flyers", flyersHandler(logger, fx))
	mux.HandleFunc("GET /flyers/{id}/items", flyerItemsHandler(logger, fx))
	mux.HandleFunc("GET /items/search", searchHandler(logger, fx))
	return mux
}

func loadFixture(path string) (*fixture, error) {
	data, err := os.ReadFile(path) //nolint:gosec // fixture path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	var fx fixture
	if err := json.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	return &fx, nil
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery)
		next.ServeHTTP(w, r)
	})
}

func requireLocation(w http.ResponseWriter, r *http.Request) bool {
	if r.URL.Query().Get("postal_code") == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "postal_code is required"})
		return false
	}
	return true
}

func flyersHandler(logger *slog.Logger, fx *fixture) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireLocation(w, r) {
			return
		}
		q := strings.ToLower(r.URL.Query().Get("q"))

		flyers := []json.RawMessage{}
		for _, raw := range fx.Flyers {
			var f named
			//nolint:errcheck,gosec // fixture data is trusted; name extraction is best-effort
			json.Unmarshal(raw, &f)
			if q == "" || strings.Contains(strings.ToLower(f.MerchantName), q) {
				flyers = append(flyers, raw)
			}
		}

		writeJSON(w, http.StatusOK, map[string]any{"flyers": flyers})
		logger.Info("flyers", "query", q, "returned", len(flyers))
	}
}

func flyerItemsHandler(logger *slog.Logger, fx *fixture) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		items, ok := fx.Items[id]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "flyer not found"})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"items": items})
		logger.Info("flyer items", "flyer_id", id, "returned", len(items))
	}
}

func searchHandler(logger *slog.Logger, fx *fixture) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireLocation(w, r) {
			return
		}
		q := strings.ToLower(r.URL.Query().Get("q"))

		matched := []json.RawMessage{}
		for _, f := range fx.Flyers {
			var flyer struct {
				ID           int64  `json:"id"`
				MerchantName string `json:"merchant_name"`
			}
			//nolint:errcheck,gosec // fixture data is trusted
			json.Unmarshal(f, &flyer)

			for _, raw := range fx.Items[fmt.Sprint(flyer.ID)] {
				var it named
				//nolint:errcheck,gosec // fixture data is trusted
				json.Unmarshal(raw, &it)
				if q == "" || !strings.Contains(strings.ToLower(it.Name), q) {
					continue
				}
				matched = append(matched, withMerchant(raw, flyer.ID, flyer.MerchantName))
			}
		}

		writeJSON(w, http.StatusOK, map[string]any{"items": matched})
		logger.Info("search", "query", q, "matched", len(matched))
	}
}

// withMerchant adds the flyer id and merchant name that search results carry
// but per-flyer item listings omit.
func withMerchant(raw json.RawMessage, flyerID int64, merchant string) json.RawMessage {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return raw
	}
	m["flyer_id"] = flyerID
	m["merchant_name"] = merchant
	out, err := json.Marshal(m)
	if err != nil {
		return raw
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	json.NewEncoder(w).Encode(v)
}
