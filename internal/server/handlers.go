package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/alexiusacademia/gohyst/internal/imk"
	"github.com/alexiusacademia/gohyst/internal/protocol"
	"github.com/alexiusacademia/gohyst/internal/store"
)

// maximum accepted request body
const maxBody = 1 << 20

type createRequest struct {
	Tag    int        `json:"tag"`
	Name   string     `json:"name"`
	Params imk.Params `json:"params"`
}

type trialRequest struct {
	Strain *float64 `json:"strain"`
}

type runRequest struct {
	Material   createRequest      `json:"material"`
	Protocol   *protocol.Protocol `json:"protocol"`
	Iterations int                `json:"iterations"`
}

// stateView is the public view of a material
type stateView struct {
	ID      string  `json:"id"`
	Name    string  `json:"name,omitempty"`
	Tag     int     `json:"tag"`
	Strain  float64 `json:"strain"`
	Stress  float64 `json:"stress"`
	Tangent float64 `json:"tangent"`
	Energy  float64 `json:"energy"`
	Branch  string  `json:"branch"`
	Failed  bool    `json:"failed"`
}

func view(id string, e *entry) stateView {
	m := e.m
	return stateView{
		ID:      id,
		Name:    e.name,
		Tag:     m.Tag,
		Strain:  m.Strain(),
		Stress:  m.Stress(),
		Tangent: m.Tangent(),
		Energy:  m.Energy(),
		Branch:  m.Branch().String(),
		Failed:  m.Failed(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("[SERVER] encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request payload")
		return false
	}
	return true
}

func (s *Server) createMaterial(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !decode(w, r, &req) {
		return
	}
	m, err := imk.New(req.Tag, req.Params)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id := s.reg.add(req.Name, m)
	slog.Info("[SERVER] material created", "id", id, "tag", req.Tag)
	e, _ := s.reg.get(id)
	writeJSON(w, http.StatusCreated, view(id, e))
}

// update runs fn on the material named in the route and replies with its view
func (s *Server) update(w http.ResponseWriter, r *http.Request, fn func(m *imk.Material) error) {
	id := mux.Vars(r)["id"]
	var out stateView
	found, err := s.reg.with(id, func(e *entry) error {
		if err := fn(e.m); err != nil {
			return err
		}
		out = view(id, e)
		return nil
	})
	switch {
	case !found:
		writeError(w, http.StatusNotFound, "material not found")
	case err != nil:
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeJSON(w, http.StatusOK, out)
	}
}

func (s *Server) getMaterial(w http.ResponseWriter, r *http.Request) {
	s.update(w, r, func(*imk.Material) error { return nil })
}

func (s *Server) setTrial(w http.ResponseWriter, r *http.Request) {
	var req trialRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Strain == nil {
		writeError(w, http.StatusBadRequest, "strain is required")
		return
	}
	s.update(w, r, func(m *imk.Material) error { return m.SetTrialStrain(*req.Strain) })
}

func (s *Server) commit(w http.ResponseWriter, r *http.Request) {
	s.update(w, r, func(m *imk.Material) error { m.CommitState(); return nil })
}

func (s *Server) revert(w http.ResponseWriter, r *http.Request) {
	s.update(w, r, func(m *imk.Material) error { m.RevertToLastCommit(); return nil })
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	s.update(w, r, func(m *imk.Material) error { m.RevertToStart(); return nil })
}

func (s *Server) deleteMaterial(w http.ResponseWriter, r *http.Request) {
	if !s.reg.remove(mux.Vars(r)["id"]) {
		writeError(w, http.StatusNotFound, "material not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) vector(w http.ResponseWriter, r *http.Request) {
	var v []float64
	found, _ := s.reg.with(mux.Vars(r)["id"], func(e *entry) error {
		v = e.m.SendSelf()
		return nil
	})
	if !found {
		writeError(w, http.StatusNotFound, "material not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]float64{"vector": v})
}

func (s *Server) checkpoint(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotImplemented, "checkpoint store is not configured")
		return
	}
	id := mux.Vars(r)["id"]
	var info store.RunInfo
	found, err := s.reg.with(id, func(e *entry) error {
		var err error
		info, err = s.store.SaveRun(store.RunInfo{Name: e.name})
		if err != nil {
			return err
		}
		return s.store.Save(info.ID, e.m.Snapshot())
	})
	switch {
	case !found:
		writeError(w, http.StatusNotFound, "material not found")
	case err != nil:
		slog.Error("[SERVER] checkpoint failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "checkpoint failed")
	default:
		writeJSON(w, http.StatusCreated, info)
	}
}

func (s *Server) run(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Protocol == nil {
		writeError(w, http.StatusBadRequest, "protocol is required")
		return
	}
	if req.Iterations < 0 || req.Iterations > protocol.MaxIterations {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("iterations must lie in [0, %d]", protocol.MaxIterations))
		return
	}
	if req.Protocol.StepSize == 0 {
		req.Protocol.StepSize = protocol.DefaultStepSize
	}
	if err := req.Protocol.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	m, err := imk.New(req.Material.Tag, req.Material.Params)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := protocol.Run(r.Context(), m, req.Protocol.History(), protocol.Options{Iterations: req.Iterations})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, r.Context().Err()) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, err.Error())
		return
	}
	res.Name = req.Material.Name
	writeJSON(w, http.StatusOK, res)
}
