package catalog

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"HeroCatalog/internal/busy"
	"HeroCatalog/internal/hero"
	"HeroCatalog/pkg/kit"
)

type Server struct {
	Store Store
	Busy  *busy.Tracker
	Log   *zap.Logger

	// WriteGuard wraps every mutating route, typically auth and rate
	// limiting. Nil leaves writes open.
	WriteGuard func(http.Handler) http.Handler

	// OriginPatterns are passed to the websocket handshake of /events.
	OriginPatterns []string
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()

		if err := s.Store.Ping(ctx); err != nil {
			s.log().Warn("readyz failed", zap.Error(err))
			kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Get("/busy", s.busyState)
	r.Get("/events", s.events)

	r.Group(func(api chi.Router) {
		api.Use(s.tracker().Middleware)

		api.Get("/heroes", s.list)
		api.Get("/heroes/{id}", s.get)
		api.Get("/selection", s.selection)

		api.Group(func(wr chi.Router) {
			if s.WriteGuard != nil {
				wr.Use(s.WriteGuard)
			}
			wr.Post("/heroes", s.create)
			wr.Patch("/heroes/{id}", s.update)
			wr.Delete("/heroes/{id}", s.delete)
			wr.Put("/selection", s.selectHero)
		})
	})

	return r
}

func (s *Server) log() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func (s *Server) tracker() *busy.Tracker {
	if s.Busy == nil {
		return busy.Global()
	}
	return s.Busy
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	var (
		heroes []hero.Hero
		err    error
	)
	if q := r.URL.Query().Get("q"); strings.TrimSpace(q) != "" {
		heroes, err = s.Store.Search(r.Context(), q)
	} else {
		heroes, err = s.Store.List(r.Context())
	}
	if err != nil {
		s.storeError(w, r, "list heroes", err)
		return
	}
	if heroes == nil {
		heroes = []hero.Hero{}
	}
	kit.WriteJSON(w, http.StatusOK, heroes)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	h, ok, err := s.Store.Get(r.Context(), id)
	if err != nil {
		s.storeError(w, r, "get hero", err, zap.String("id", id))
		return
	}
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}
	kit.WriteJSON(w, http.StatusOK, h)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var d hero.Draft
	if err := kit.DecodeJSON(w, r, &d); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}
	if err := d.Validate(); err != nil {
		kit.WriteError(w, r, http.StatusUnprocessableEntity, "invalid hero", map[string]any{"cause": err.Error()})
		return
	}

	h, err := s.Store.Create(r.Context(), d)
	if err != nil {
		s.storeError(w, r, "create hero", err)
		return
	}
	kit.WriteJSON(w, http.StatusCreated, h)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var p hero.Patch
	if err := kit.DecodeJSON(w, r, &p); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}
	if p.Powers != nil && len(p.Powers) == 0 {
		kit.WriteError(w, r, http.StatusUnprocessableEntity, "invalid hero", map[string]any{"cause": "powers must not be empty"})
		return
	}

	h, ok, err := s.Store.Update(r.Context(), id, p)
	if err != nil {
		s.storeError(w, r, "update hero", err, zap.String("id", id))
		return
	}
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}
	kit.WriteJSON(w, http.StatusOK, h)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ok, err := s.Store.Delete(r.Context(), id)
	if err != nil {
		s.storeError(w, r, "delete hero", err, zap.String("id", id))
		return
	}
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) selection(w http.ResponseWriter, r *http.Request) {
	h, ok, err := s.Store.Selection(r.Context())
	if err != nil {
		s.storeError(w, r, "get selection", err)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	kit.WriteJSON(w, http.StatusOK, h)
}

type selectReq struct {
	ID *string `json:"id"`
}

func (s *Server) selectHero(w http.ResponseWriter, r *http.Request) {
	var req selectReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	var target *hero.Hero
	if req.ID != nil {
		h, ok, err := s.Store.Get(r.Context(), *req.ID)
		if err != nil {
			s.storeError(w, r, "get hero", err, zap.String("id", *req.ID))
			return
		}
		if !ok {
			kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": *req.ID})
			return
		}
		target = &h
	}

	if err := s.Store.Select(r.Context(), target); err != nil {
		s.storeError(w, r, "select hero", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type busyResp struct {
	Busy     bool `json:"busy"`
	InFlight int  `json:"in_flight"`
}

func (s *Server) busyState(w http.ResponseWriter, _ *http.Request) {
	t := s.tracker()
	kit.WriteJSON(w, http.StatusOK, busyResp{Busy: t.Busy(), InFlight: t.InFlight()})
}

// storeError maps the only failures a store reports, cancelled or expired
// request contexts.
func (s *Server) storeError(w http.ResponseWriter, r *http.Request, op string, err error, fields ...zap.Field) {
	if errors.Is(err, context.Canceled) {
		s.log().Debug(op+" cancelled", fields...)
		return
	}
	if errors.Is(err, context.DeadlineExceeded) {
		kit.WriteError(w, r, http.StatusGatewayTimeout, "timeout", nil)
		return
	}
	s.log().Error(op+" failed", append(fields, zap.Error(err))...)
	kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
}
