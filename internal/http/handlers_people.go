package http

import (
	"net/http"
	"strings"
)

type personRequest struct {
	Name string `json:"name"`
}

func (s *Server) handlePeople(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.ledger.Snapshot().People)
	case http.MethodPost:
		var req personRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		p, err := s.ledger.AddPerson(r.Context(), req.Name)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "name must not be empty")
			return
		}
		writeJSON(w, http.StatusCreated, p)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handlePerson(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/people/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req personRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if !s.ledger.RenamePerson(r.Context(), id, req.Name) {
			writeError(w, http.StatusNotFound, "person not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": id, "name": strings.TrimSpace(req.Name)})
	case http.MethodDelete:
		// Removal cascades: every transaction of the person goes with them.
		// The confirmation dialog is the client's responsibility.
		if !s.ledger.RemovePerson(r.Context(), id) {
			writeError(w, http.StatusNotFound, "person not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, "PUT, DELETE")
	}
}
