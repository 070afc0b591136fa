// Package expapi provides HTTP handlers for inspecting and clearing a
// [httpcache.Cache]'s contents.
//
// WARNING: This package is intended for debugging, development, or
// administrative use only. It is NOT recommended to expose these
// endpoints in production environments, as they allow direct access to
// cache contents and deletion.
//
// Endpoints:
//
//	GET    /debug/httpcache        -- list primary keys
//	GET    /debug/httpcache/{key}  -- dump one key's entries as JSON
//	DELETE /debug/httpcache        -- clear the entire cache
package expapi

import (
	"encoding/json"
	"net/http"

	"github.com/relayhouse/httpcache"
	"github.com/relayhouse/httpcache/internal"
)

type handler struct {
	cache *httpcache.Cache
}

// entryView is the JSON shape of one stored entry, deliberately
// omitting the body: this endpoint reports cache bookkeeping, not
// resource contents.
type entryView struct {
	Status          int      `json:"status"`
	Vary            []string `json:"vary,omitempty"`
	BodyState       string   `json:"bodyState"`
	BodyLen         int      `json:"bodyLen"`
	NeedsValidation bool     `json:"needsValidation"`
}

func bodyStateName(s internal.BodyState) string {
	switch s {
	case internal.BodyEmpty:
		return "empty"
	case internal.BodyReceiving:
		return "receiving"
	case internal.BodyDone:
		return "done"
	case internal.BodyCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

func (h *handler) list(w http.ResponseWriter, r *http.Request) {
	keys := h.cache.Keys()
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = string(k)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string][]string{"keys": out})
}

func (h *handler) retrieve(w http.ResponseWriter, r *http.Request) {
	key := internal.Key(r.PathValue("key"))
	entries := h.cache.Entries(key)
	if len(entries) == 0 {
		http.Error(w, "key not found", http.StatusNotFound)
		return
	}
	views := make([]entryView, len(entries))
	for i, e := range entries {
		state, bytes := e.Body.Snapshot()
		views[i] = entryView{
			Status:    e.Status,
			Vary:      internal.VaryFields(e.Metadata.Header),
			BodyState: bodyStateName(state),
			BodyLen:   len(bytes),

			NeedsValidation: internal.NeedsValidation(e.Status, e.Metadata.Header, http.Header{}, e.Age, internal.NewClock()),
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(views)
}

func (h *handler) clear(w http.ResponseWriter, r *http.Request) {
	h.cache.Clear()
	w.WriteHeader(http.StatusNoContent)
}

type handlerConfig struct {
	Mux *http.ServeMux
}

// HandlerOption configures where Register installs its routes.
type HandlerOption interface{ apply(*handlerConfig) }

type handlerOptionFunc func(*handlerConfig)

func (f handlerOptionFunc) apply(cfg *handlerConfig) { f(cfg) }

// WithServeMux allows specifying a custom http.ServeMux for the debug
// handlers; default: [http.DefaultServeMux].
func WithServeMux(mux *http.ServeMux) HandlerOption {
	return handlerOptionFunc(func(cfg *handlerConfig) { cfg.Mux = mux })
}

// Register installs the list/retrieve/clear handlers for cache.
func Register(cache *httpcache.Cache, opts ...HandlerOption) {
	cfg := &handlerConfig{Mux: http.DefaultServeMux}
	for _, opt := range opts {
		opt.apply(cfg)
	}
	h := &handler{cache: cache}
	cfg.Mux.HandleFunc("GET /debug/httpcache", h.list)
	cfg.Mux.HandleFunc("GET /debug/httpcache/{key}", h.retrieve)
	cfg.Mux.HandleFunc("DELETE /debug/httpcache", h.clear)
}
