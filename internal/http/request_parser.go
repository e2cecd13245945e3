package http

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"aceiro/internal/charts"
)

const maxMunicipalityLen = 100

// ErrInvalidQuery marks a malformed query parameter.
var ErrInvalidQuery = errors.New("invalid query parameter")

// TableQuery holds the incident table paging and filter parameters.
type TableQuery struct {
	Page         int
	PerPage      int
	Municipality string
}

// ParseTableQuery reads page, per_page and municipio. Missing values take
// their defaults; page beyond the last page is clamped later by the table
// builder.
func ParseTableQuery(q url.Values) (TableQuery, error) {
	tq := TableQuery{Page: 1, PerPage: charts.DefaultPerPage}

	var err error
	if tq.Page, err = positiveInt(q, "page", 1); err != nil {
		return TableQuery{}, err
	}
	if tq.PerPage, err = positiveInt(q, "per_page", charts.DefaultPerPage); err != nil {
		return TableQuery{}, err
	}
	if tq.PerPage > charts.MaxPerPage {
		tq.PerPage = charts.MaxPerPage
	}

	m := sanitizeInput(q.Get("municipio"))
	if utf8.RuneCountInString(m) > maxMunicipalityLen {
		return TableQuery{}, fmt.Errorf("%w: municipio longer than %d characters", ErrInvalidQuery, maxMunicipalityLen)
	}
	tq.Municipality = m
	return tq, nil
}

// Values encodes the query back, omitting defaults.
func (q TableQuery) Values() url.Values {
	v := url.Values{}
	if q.Page > 1 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage != charts.DefaultPerPage {
		v.Set("per_page", strconv.Itoa(q.PerPage))
	}
	if q.Municipality != "" {
		v.Set("municipio", q.Municipality)
	}
	return v
}

func positiveInt(q url.Values, key string, def int) (int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", ErrInvalidQuery, key, raw)
	}
	return n, nil
}
