package server

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/samber/oops"

	"github.com/g5becks/apidox/internal/manifest"
	"github.com/g5becks/apidox/internal/parser"
	"github.com/g5becks/apidox/internal/render"
	"github.com/g5becks/apidox/internal/search"
	"github.com/g5becks/apidox/internal/ui"
)

type groupSummary struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type pageResponse struct {
	Group string         `json:"group"`
	Path  string         `json:"path"`
	Meta  map[string]any `json:"meta,omitempty"`
	Page  parser.DocPage `json:"page"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	m, err := s.loadManifest()
	if err != nil {
		s.htmlError(w, err)
		return
	}

	view := indexView{DocCount: m.DocCount, Generated: m.Generated.Format("2006-01-02 15:04")}
	for _, g := range m.Groups {
		group := indexGroup{Name: g.Name}
		for _, doc := range g.Docs {
			group.Links = append(group.Links, indexLink{
				Href:        pageHref(g.Name, doc.Name),
				Name:        doc.Name,
				Kind:        doc.Kind,
				Description: doc.Description,
			})
		}
		view.Groups = append(view.Groups, group)
	}

	s.writeHTML(w, "index", view)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	group, name := chi.URLParam(r, "group"), chi.URLParam(r, "name")

	info, doc, err := s.lookup(group, name)
	if err != nil {
		s.htmlError(w, err)
		return
	}

	s.writeHTML(w, "page", pageView{
		Title: info.Title,
		Group: group,
		Body:  template.HTML(render.HTML(doc.Page)), //nolint:gosec // render.HTML escapes text and drops raw HTML
	})
}

func (s *Server) handleGroups(w http.ResponseWriter, _ *http.Request) {
	m, err := s.loadManifest()
	if err != nil {
		s.jsonError(w, err)
		return
	}

	groups := make([]groupSummary, 0, len(m.Groups))
	for _, g := range m.Groups {
		groups = append(groups, groupSummary{Name: g.Name, Count: len(g.Docs)})
	}
	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) handleGroup(w http.ResponseWriter, r *http.Request) {
	m, err := s.loadManifest()
	if err != nil {
		s.jsonError(w, err)
		return
	}

	g, err := m.Group(chi.URLParam(r, "group"))
	if err != nil {
		s.jsonError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handlePageJSON(w http.ResponseWriter, r *http.Request) {
	group, name := chi.URLParam(r, "group"), chi.URLParam(r, "name")

	info, doc, err := s.lookup(group, name)
	if err != nil {
		s.jsonError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pageResponse{
		Group: group,
		Path:  info.Path,
		Meta:  doc.Meta,
		Page:  doc.Page,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	kind, err := parser.ParseMemberKind(query.Get("kind"))
	if err != nil {
		s.jsonError(w, err)
		return
	}

	limit := 0
	if raw := query.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			s.jsonError(w, oops.
				Code("INVALID_ARGS").
				With("limit", raw).
				Errorf("limit must be a non-negative integer, got %q", raw))
			return
		}
	}

	m, err := s.loadManifest()
	if err != nil {
		s.jsonError(w, err)
		return
	}

	results, err := search.Members(m, search.Options{
		Query: query.Get("q"),
		Group: query.Get("group"),
		Kind:  kind,
		Limit: limit,
	})
	if err != nil {
		s.jsonError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) lookup(group, name string) (*manifest.DocInfo, *parser.Document, error) {
	m, err := s.loadManifest()
	if err != nil {
		return nil, nil, err
	}

	info, err := m.Find(group, name)
	if err != nil {
		return nil, nil, err
	}

	doc, err := m.ReadDoc(info)
	if err != nil {
		return nil, nil, err
	}
	return info, doc, nil
}

func (s *Server) writeHTML(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		s.logf("rendering %s: %v", name, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) htmlError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logf("%v", err)
	}

	var buf bytes.Buffer
	if execErr := pages.ExecuteTemplate(&buf, "error", errorView{Status: status, Message: err.Error()}); execErr != nil {
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) jsonError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logf("%v", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) logf(format string, args ...any) {
	if s.log != nil {
		s.log.Warn(format, args...)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = ui.WriteJSON(w, v)
}

// statusFor maps the error codes raised by manifest, parser and search to
// HTTP statuses.
func statusFor(err error) int {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return http.StatusInternalServerError
	}

	switch fmt.Sprint(oopsErr.Code()) {
	case "GROUP_NOT_FOUND", "DOC_NOT_FOUND":
		return http.StatusNotFound
	case "INVALID_ARGS":
		return http.StatusBadRequest
	case "MANIFEST_NOT_FOUND":
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func pageHref(group, name string) string {
	return "/pages/" + url.PathEscape(group) + "/" + url.PathEscape(name)
}
