package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/scopegraph/pkg/errors"
	"github.com/matzehuels/scopegraph/pkg/scope"
)

type healthResponse struct {
	Status string `json:"status"`
	Graph  string `json:"graph"`
	Scopes int    `json:"scopes"`
}

// ScopeInfo describes one scope.
type ScopeInfo struct {
	Name            string       `json:"name"`
	Parent          string       `json:"parent,omitempty"`
	Strategy        string       `json:"strategy"`
	Locations       []string     `json:"locations"`
	Children        []string     `json:"children,omitempty"`
	UnitImports     []ImportInfo `json:"unit_imports,omitempty"`
	ResourceImports []ImportInfo `json:"resource_imports,omitempty"`
	DefinedUnits    []string     `json:"defined_units,omitempty"`
}

// ImportInfo describes one import link.
type ImportInfo struct {
	From    string `json:"from"`
	Pattern string `json:"pattern"`
}

// UnitInfo describes a resolved unit.
type UnitInfo struct {
	Name     string `json:"name"`
	Scope    string `json:"scope"`
	Location string `json:"location"`
	Size     int    `json:"size"`
}

// ResourceInfo lists resolved resource locations.
type ResourceInfo struct {
	Name      string   `json:"name"`
	Locations []string `json:"locations"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Graph: s.graph.ID(), Scopes: s.graph.Len()})
}

func (s *Server) handleScopes(w http.ResponseWriter, _ *http.Request) {
	scopes := s.graph.Scopes()
	out := make([]ScopeInfo, len(scopes))
	for i, sc := range scopes {
		out[i] = describe(sc, false)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleScope(w http.ResponseWriter, r *http.Request) {
	sc, ok := s.scopeOf(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, describe(sc, true))
}

func (s *Server) handleUnit(w http.ResponseWriter, r *http.Request) {
	sc, ok := s.scopeOf(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "unit")
	u, found, err := sc.ResolveUnit(r.Context(), name)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, errors.ErrCodeNotFound, "unit "+name+" not found in scope "+sc.Name())
		return
	}
	info := UnitInfo{Name: u.Name, Scope: u.Scope, Size: len(u.Data)}
	if u.Location != nil {
		info.Location = u.Location.String()
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleResource(w http.ResponseWriter, r *http.Request) {
	sc, ok := s.scopeOf(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "*")
	if name == "" {
		writeError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "resource name required")
		return
	}
	info := ResourceInfo{Name: name, Locations: []string{}}

	if all := r.URL.Query().Get("all"); all == "1" || strings.EqualFold(all, "true") {
		for u, err := range sc.ResolveResources(r.Context(), name) {
			if err != nil {
				writeLookupError(w, err)
				return
			}
			info.Locations = append(info.Locations, u.String())
		}
		writeJSON(w, http.StatusOK, info)
		return
	}

	u, found, err := sc.ResolveResource(r.Context(), name)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, errors.ErrCodeNotFound, "resource "+name+" not found in scope "+sc.Name())
		return
	}
	info.Locations = append(info.Locations, u.String())
	writeJSON(w, http.StatusOK, info)
}

func describe(sc *scope.Scope, detailed bool) ScopeInfo {
	info := ScopeInfo{
		Name:      sc.Name(),
		Strategy:  sc.Strategy().Name(),
		Locations: []string{},
	}
	if p := sc.Parent(); p != nil {
		info.Parent = p.Name()
	}
	for _, loc := range sc.Locations() {
		info.Locations = append(info.Locations, loc.String())
	}
	for _, c := range sc.Children() {
		info.Children = append(info.Children, c.Name())
	}
	if !detailed {
		return info
	}
	info.UnitImports = importInfos(sc.UnitImports())
	info.ResourceImports = importInfos(sc.ResourceImports())
	info.DefinedUnits = sc.DefinedUnits()
	return info
}

func importInfos(links []*scope.Link) []ImportInfo {
	var out []ImportInfo
	for _, l := range links {
		info := ImportInfo{Pattern: l.Pattern()}
		if t := l.Target(); t != nil {
			info.From = t.Name()
		}
		out = append(out, info)
	}
	return out
}
