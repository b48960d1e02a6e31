package web

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/s0up4200/streamify/browse"
	"github.com/s0up4200/streamify/library"
	"github.com/s0up4200/streamify/render"
	"github.com/s0up4200/streamify/tmdb"
)

const maxQueryBody = 4 << 10

// stateView is the JSON shape of a session state
type stateView struct {
	Query  browse.Query  `json:"query"`
	Status browse.Status `json:"status"`
	Error  string        `json:"error,omitempty"`
	Retry  bool          `json:"retry"`
	Empty  bool          `json:"empty"`
	Movies []render.Card `json:"movies"`
	Genres []tmdb.Genre  `json:"genres"`
}

type queryRequest struct {
	Text   string `json:"text" validate:"max=200"`
	Genre  int    `json:"genre" validate:"gte=0"`
	Rating int    `json:"rating" validate:"gte=0,lte=10"`
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// view converts a state into cards, annotating library badges when configured
func (s *Server) view(ctx context.Context, state browse.State) stateView {
	opts := render.Options{
		ShowDetails: s.cfg.ShowDetails,
		Images:      s.cfg.Images,
		Genres:      tmdb.GenreNames(state.Genres),
	}
	if s.cfg.Annotator != nil && s.cfg.Annotator.Enabled() && len(state.Movies) > 0 {
		opts.Badges = s.cfg.Annotator.Annotate(ctx, state.Movies)
	}

	return stateView{
		Query:  state.Query,
		Status: state.Status,
		Error:  state.Error,
		Retry:  state.Failed(),
		Empty:  state.Status == browse.StatusReady && len(state.Movies) == 0,
		Movies: render.NewCards(state.Movies, opts),
		Genres: state.Genres,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := struct {
		State  stateView
		Rating []int
	}{
		State:  s.view(r.Context(), s.session.Snapshot()),
		Rating: ratingChoices(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, data); err != nil {
		s.logger.Error().Err(err).Msg("Failed to render page")
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.view(r.Context(), s.session.Snapshot()))
}

func (s *Server) handleGenres(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.session.Snapshot().Genres)
}

// handleQuery replaces the query inputs; the fetch happens after the debounce window
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxQueryBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if err := s.validator.Validate(req); err != nil {
		resp := errorResponse{Error: err.Error()}
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			resp.Fields = vErr.Fields
		}
		s.writeJSON(w, http.StatusBadRequest, resp)
		return
	}

	q := browse.Query{Text: req.Text, GenreID: req.Genre, MinRating: req.Rating}
	s.session.SetQuery(q)

	s.logger.Debug().Stringer("query", q).Msg("Query updated")
	s.writeJSON(w, http.StatusAccepted, s.session.Snapshot().Query)
}

func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	// the reload is shared by all clients and outlives this request
	err := s.session.Retry(context.WithoutCancel(r.Context()))
	switch {
	case errors.Is(err, browse.ErrClosed):
		s.writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "session closed"})
		return
	case err != nil:
		view := s.view(r.Context(), s.session.Snapshot())
		s.writeJSON(w, http.StatusBadGateway, view)
		return
	}
	s.writeJSON(w, http.StatusOK, s.view(r.Context(), s.session.Snapshot()))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func ratingChoices() []int {
	choices := make([]int, 0, browse.MaxRating)
	for r := 1; r <= browse.MaxRating; r++ {
		choices = append(choices, r)
	}
	return choices
}

var templateFuncs = template.FuncMap{
	"selected": func(a, b int) bool { return a == b },
	"badges": func(b *library.Badge) string {
		return strings.Join(render.BadgeLabels(b), " · ")
	},
}
