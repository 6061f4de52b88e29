package web

import (
	"errors"
	"net/http"

	"github.com/JonMunkholm/trendboard/internal/format"
	"github.com/JonMunkholm/trendboard/internal/logging"
	"github.com/JonMunkholm/trendboard/internal/view"
	"github.com/JonMunkholm/trendboard/internal/web/templates"
	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
)

// render writes an HTML component with the given status.
func render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Warn("render failed", "path", r.URL.Path, "error", err)
	}
}

func handleStylesheet(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write([]byte(templates.Stylesheet))
}

// variantParam reads the table variant, defaulting to the repository table.
func variantParam(r *http.Request) string {
	if r.URL.Query().Get("variant") == templates.VariantRaw {
		return templates.VariantRaw
	}
	return templates.VariantRepo
}

func localeFor(r *http.Request) format.Locale {
	return format.FromAcceptLanguage(r.Header.Get("Accept-Language"))
}

// handlePage opens a view for this page activation. Normally the page comes
// back at once with a loading placeholder that pulls the table fragment.
// With ?wait=1 the server waits for the fetch and renders a finished static
// page, after which the view has nothing left to do and is closed.
func (s *Server) handlePage(variant string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := s.views.Open()
		if err != nil {
			w.Header().Set("Retry-After", "30")
			respondError(w, r, err, statusFor(err))
			return
		}

		logger := logging.WithFields(r.Context(), "view_id", v.ID, "variant", variant)
		logger.Debug("view opened", "live", s.views.Len())

		if r.URL.Query().Get("wait") != "1" {
			render(w, r, http.StatusOK, templates.ViewPage(v.ID, variant))
			return
		}

		defer s.views.Close(v.ID)
		st, err := v.Wait(r.Context())
		if err != nil {
			respondError(w, r, err, http.StatusServiceUnavailable)
			return
		}
		p := templates.TableParams{ViewID: v.ID, State: st, Locale: localeFor(r), Static: true}
		render(w, r, http.StatusOK, templates.Document(variant, p, templates.Stylesheet))
	}
}

// handleTable blocks until the view settles and returns the table fragment,
// or the error line if the fetch failed.
func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	v, err := s.views.Get(chi.URLParam(r, "viewID"))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	st, err := v.Wait(r.Context())
	if err != nil {
		status := statusFor(err)
		if !errors.Is(err, view.ErrUnmounted) {
			status = http.StatusServiceUnavailable
		}
		respondError(w, r, err, status)
		return
	}

	if st.Phase == view.PhaseError {
		render(w, r, http.StatusOK, templates.ErrorMessage(st.Err))
		return
	}

	p := templates.TableParams{ViewID: v.ID, State: st, Locale: localeFor(r)}
	render(w, r, http.StatusOK, templates.Table(variantParam(r), p))
}

// handleToggle flips one record's detail row and returns the record's tbody.
func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	v, err := s.views.Get(chi.URLParam(r, "viewID"))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	key := r.URL.Query().Get("key")
	if key == "" {
		key = r.FormValue("key")
	}

	expanded, err := v.Toggle(key)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	st := v.Snapshot()
	entry, _ := st.Entry(key)
	logging.FromContext(r.Context()).Debug("row toggled",
		"view_id", v.ID,
		"key", key,
		"expanded", expanded,
	)

	p := templates.TableParams{ViewID: v.ID, State: st, Locale: localeFor(r)}
	render(w, r, http.StatusOK, templates.RepoRecord(p, entry, expanded))
}

// handleUnmount forgets a view. Unknown IDs are not an error: the sweeper
// may already have evicted it, and beacons are fire and forget.
func (s *Server) handleUnmount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "viewID")
	if err := s.views.Close(id); err != nil && !errors.Is(err, view.ErrViewNotFound) {
		respondError(w, r, err, statusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ViewStateResponse is the JSON form of a view.
type ViewStateResponse struct {
	ID string `json:"id"`
	view.State
	Expanded []string `json:"expanded"`
}

// handleViewState returns a view's current state without waiting.
func (s *Server) handleViewState(w http.ResponseWriter, r *http.Request) {
	v, err := s.views.Get(chi.URLParam(r, "viewID"))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	st := v.Snapshot()
	expanded := st.ExpandedKeys()
	if expanded == nil {
		expanded = []string{}
	}
	writeJSON(w, http.StatusOK, ViewStateResponse{
		ID:       v.ID,
		State:    st,
		Expanded: expanded,
	})
}

// HealthResponse is the body of /healthz.
type HealthResponse struct {
	Status string `json:"status"`
	Views  int    `json:"views"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Views:  s.views.Len(),
	})
}
