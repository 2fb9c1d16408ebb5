package ops

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"restruct/internal/move"
)

// BuildMux wires the operation surface onto a mux: tool dispatch under
// /tools, the tool listing, and the report stream.
func BuildMux(reg *Registry, h Host) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/tools", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"tools": reg.Specs()})
	})
	mux.HandleFunc("/tools/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		name := strings.TrimPrefix(r.URL.Path, "/tools/")
		if name == "" {
			http.Error(w, "tool name is required", http.StatusBadRequest)
			return
		}
		var input json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		out, err := reg.Dispatch(r.Context(), name, input)
		if err != nil {
			writeToolError(w, name, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(out)
	})
	if h.Stream != nil {
		mux.HandleFunc("/ws/reports", h.Stream.HandleReportsWS)
	}
	return mux
}

// writeToolError maps classified engine failures onto HTTP statuses; the
// body carries the "<kind>: <message>" form either way.
func writeToolError(w http.ResponseWriter, name string, err error) {
	status := http.StatusInternalServerError
	var me *move.Error
	if errors.As(err, &me) {
		switch me.Kind {
		case move.NotFound:
			status = http.StatusNotFound
		case move.AlreadyExists, move.StillReferenced:
			status = http.StatusConflict
		case move.WrongKind, move.InvalidRange, move.Unsupported:
			status = http.StatusUnprocessableEntity
		}
	} else if strings.Contains(err.Error(), "unknown tool") {
		status = http.StatusNotFound
	} else if strings.Contains(err.Error(), "required") {
		status = http.StatusBadRequest
	}
	log.Printf("ops: %s failed: %v", name, err)
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
