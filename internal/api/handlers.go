package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Flyrell/shopweek/internal/board"
	"github.com/Flyrell/shopweek/internal/calendar"
	"github.com/Flyrell/shopweek/internal/capacity"
	"github.com/Flyrell/shopweek/internal/job"
	"github.com/Flyrell/shopweek/internal/notes"
	"github.com/Flyrell/shopweek/internal/store"
)

// jobRequest is the create/update payload.
type jobRequest struct {
	Title    string  `json:"title"`
	Ref      string  `json:"ref"`
	Category string  `json:"category"`
	Color    string  `json:"color"`
	Note     string  `json:"note"`
	FabHours float64 `json:"fab_hours"`
	FabExtra float64 `json:"fab_extra"`
	CutHours float64 `json:"cut_hours"`
	CutExtra float64 `json:"cut_extra"`
}

func (r jobRequest) job() job.Job {
	return job.Job{
		Title:    r.Title,
		Ref:      r.Ref,
		Category: job.Category(r.Category),
		Color:    r.Color,
		Note:     r.Note,
		Fab:      job.Track{Work: job.Work{Base: r.FabHours, Extra: r.FabExtra}},
		Cut:      job.Track{Work: job.Work{Base: r.CutHours, Extra: r.CutExtra}},
	}
}

type dropRequest struct {
	DayID string `json:"day_id"`
	Index int    `json:"index"`
	View  string `json:"view"`
	// Pointer position inside the day column; replaces Index when set.
	Position *struct {
		Y      float64 `json:"y"`
		Height float64 `json:"height"`
	} `json:"position,omitempty"`
}

// errBadRequest marks malformed input that is not a domain error.
var errBadRequest = errors.New("bad request")

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.svc.ListJobs(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if jobs == nil {
		jobs = []job.Job{}
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	j, err := s.svc.GetJob(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, j)
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req jobRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	j, err := s.svc.AddJob(r.Context(), req.job())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, j)
}

func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	var req jobRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	j, err := s.svc.UpdateJob(r.Context(), r.PathValue("id"), req.job())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, j)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.RemoveJob(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDrop(w http.ResponseWriter, r *http.Request) {
	var req dropRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	dim, err := parseView(req.View)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var j job.Job
	if req.Position != nil {
		j, err = s.svc.DropAtPosition(r.Context(), r.PathValue("id"), req.DayID, req.Position.Y, req.Position.Height, dim)
	} else {
		j, err = s.svc.DropOnDay(r.Context(), r.PathValue("id"), req.DayID, req.Index, dim)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, j)
}

func (s *Server) handleBacklogMove(w http.ResponseWriter, r *http.Request) {
	j, err := s.svc.MoveToBacklog(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, j)
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	view, err := s.snapshot(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleBacklog(w http.ResponseWriter, r *http.Request) {
	view, err := s.snapshot(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view.Backlog)
}

func (s *Server) handleNotes(w http.ResponseWriter, r *http.Request) {
	view, err := s.snapshot(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	rendered, err := notes.RenderAll(view.Notes)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rendered)
}

func (s *Server) snapshot(r *http.Request) (board.View, error) {
	q := r.URL.Query()
	dim, err := parseView(q.Get("view"))
	if err != nil {
		return board.View{}, err
	}
	anchor := s.svc.Now()
	if raw := q.Get("anchor"); raw != "" {
		anchor, err = calendar.ParseDate(raw, anchor)
		if err != nil {
			return board.View{}, fmt.Errorf("%w: %v", errBadRequest, err)
		}
	}
	return s.svc.Snapshot(r.Context(), anchor, dim)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.svc.Settings(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var settings capacity.Settings
	if err := decodeBody(w, r, &settings); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.svc.UpdateSettings(r.Context(), settings); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleListDaySettings(w http.ResponseWriter, r *http.Request) {
	days, err := s.svc.DaySettings(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if days == nil {
		days = []capacity.DaySettings{}
	}
	writeJSON(w, http.StatusOK, days)
}

func (s *Server) handlePutDaySettings(w http.ResponseWriter, r *http.Request) {
	var ds capacity.DaySettings
	if err := decodeBody(w, r, &ds); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.svc.SaveDaySettings(r.Context(), ds); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

func (s *Server) handleToggleLock(w http.ResponseWriter, r *http.Request) {
	day := r.PathValue("day")
	locked, err := s.svc.ToggleFridayLock(r.Context(), day)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"day_id": day, "locked": locked})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	state, err := s.svc.Export(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	format := store.FormatJSON
	contentType := "application/json"
	if r.URL.Query().Get("format") == store.FormatYAML {
		format = store.FormatYAML
		contentType = "application/yaml"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="shopweek-%s.%s"`,
		state.ExportedAt.Format("2006-01-02"), format))
	if err := store.EncodeState(w, state, format); err != nil {
		s.log.Errorf("writing export: %v", err)
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	format := store.FormatJSON
	if r.URL.Query().Get("format") == store.FormatYAML || r.Header.Get("Content-Type") == "application/yaml" {
		format = store.FormatYAML
	}
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer body.Close()
	state, err := store.DecodeState(body, format)
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	summary, err := s.svc.Import(r.Context(), state)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "imported": summary})
}

func parseView(raw string) (job.Dimension, error) {
	if raw == "" {
		return job.Fab, nil
	}
	dim, err := job.ParseDimension(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return dim, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errBadRequest)
		}
		return fmt.Errorf("%w: invalid JSON: %v", errBadRequest, err)
	}
	return nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, board.ErrJobNotFound), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, board.ErrNotFriday),
		errors.Is(err, board.ErrNoHours),
		errors.Is(err, board.ErrInvalidDay),
		errors.Is(err, job.ErrEmptyTitle),
		errors.Is(err, job.ErrInvalidHours),
		errors.Is(err, job.ErrUnknownCategory):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.log.Errorf("request failed: %v", err)
		msg = "internal error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
