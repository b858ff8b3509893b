package server

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/pfrederiksen/big5-stats/internal/filter"
	"github.com/pfrederiksen/big5-stats/internal/logger"
	"github.com/pfrederiksen/big5-stats/internal/normalizer"
	"github.com/pfrederiksen/big5-stats/internal/pipeline"
	"github.com/pfrederiksen/big5-stats/internal/season"
	"github.com/pfrederiksen/big5-stats/internal/stats"
)

type seasonResponse struct {
	Label string     `json:"label"`
	Key   season.Key `json:"key"`
}

type tableResponse struct {
	Season  season.Key     `json:"season"`
	Count   int            `json:"count"`
	Columns []stats.Column `json:"columns"`
	Rows    []stats.Record `json:"rows"`
}

type columnsResponse struct {
	Season  season.Key     `json:"season"`
	Columns []stats.Column `json:"columns"`
}

type valuesResponse struct {
	Season season.Key    `json:"season"`
	Column string        `json:"column"`
	Values []stats.Value `json:"values"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"metrics": logger.GetMetricsSnapshot(),
	})
}

func (s *Server) handleSeasons(w http.ResponseWriter, r *http.Request) {
	catalog := season.Catalog()
	out := make([]seasonResponse, len(catalog))
	for i, opt := range catalog {
		out[i] = seasonResponse{Label: opt.Label, Key: opt.Key}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	key, table, ok := s.loadSeason(w, r)
	if !ok {
		return
	}

	query, err := queryFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := query.Apply(table)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, tableResponse{
		Season:  key,
		Count:   out.Len(),
		Columns: out.Columns(),
		Rows:    out.Records(),
	})
}

func (s *Server) handleColumns(w http.ResponseWriter, r *http.Request) {
	key, table, ok := s.loadSeason(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, columnsResponse{Season: key, Columns: table.Columns()})
}

func (s *Server) handleValues(w http.ResponseWriter, r *http.Request) {
	key, table, ok := s.loadSeason(w, r)
	if !ok {
		return
	}

	column := pathParam(r, "column")
	values, err := table.Unique(column)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, valuesResponse{Season: key, Column: column, Values: values})
}

// loadSeason resolves the {season} parameter and loads its table, writing the
// error response itself when either step fails.
func (s *Server) loadSeason(w http.ResponseWriter, r *http.Request) (season.Key, *stats.Table, bool) {
	key, err := season.Resolve(pathParam(r, "season"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", nil, false
	}

	ctx := r.Context()
	if s.loadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.loadTimeout)
		defer cancel()
	}

	table, err := s.loader.GetOrLoad(ctx, key)
	if err != nil {
		writeError(w, http.StatusBadGateway, pipeline.LoadErrorPrefix+err.Error())
		return "", nil, false
	}
	return key, table, true
}

// queryFromRequest builds a filter query from the country, team, where,
// columns and sort parameters.
func queryFromRequest(r *http.Request) (*filter.Query, error) {
	params := r.URL.Query()

	q := filter.NewQuery().
		Where(normalizer.CountryColumn, params.Get("country")).
		Where(normalizer.TeamColumn, params.Get("team"))

	for _, raw := range params["where"] {
		c, err := filter.ParseCriterion(raw)
		if err != nil {
			return nil, err
		}
		q.Criteria = append(q.Criteria, c)
	}

	col, desc, err := filter.ParseSort(params.Get("sort"))
	if err != nil {
		return nil, err
	}
	q.SortBy, q.Desc = col, desc

	if v := params.Get("columns"); v != "" {
		q.Columns = filter.ParseColumns(v)
	}

	return q, nil
}

// pathParam returns a decoded route parameter. chi matches on the raw path
// when the request carries one, leaving parameters escaped.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
