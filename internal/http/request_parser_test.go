package http

import (
	"errors"
	"net/url"
	"strings"
	"testing"

	"aceiro/internal/charts"
)

func TestParseTableQuery(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    TableQuery
		wantErr bool
	}{
		{"defaults", "", TableQuery{Page: 1, PerPage: charts.DefaultPerPage}, false},
		{"explicit", "page=3&per_page=10&municipio=Manaus", TableQuery{Page: 3, PerPage: 10, Municipality: "Manaus"}, false},
		{"per page capped", "per_page=5000", TableQuery{Page: 1, PerPage: charts.MaxPerPage}, false},
		{"trimmed municipality", "municipio=%20Tef%C3%A9%0A", TableQuery{Page: 1, PerPage: charts.DefaultPerPage, Municipality: "Tefé"}, false},
		{"zero page", "page=0", TableQuery{}, true},
		{"negative per page", "per_page=-1", TableQuery{}, true},
		{"non numeric", "page=two", TableQuery{}, true},
		{"long municipality", "municipio=" + strings.Repeat("a", maxMunicipalityLen+1), TableQuery{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("bad test query: %v", err)
			}
			got, err := ParseTableQuery(q)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidQuery) {
					t.Fatalf("expected ErrInvalidQuery, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestTableQueryValues(t *testing.T) {
	if got := (TableQuery{Page: 1, PerPage: charts.DefaultPerPage}).Values().Encode(); got != "" {
		t.Fatalf("defaults should encode empty, got %q", got)
	}
	got := TableQuery{Page: 2, PerPage: 10, Municipality: "Tefé"}.Values()
	if got.Get("page") != "2" || got.Get("per_page") != "10" || got.Get("municipio") != "Tefé" {
		t.Fatalf("unexpected values %v", got)
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  Man\x00aus\r\n "); got != "Manaus" {
		t.Fatalf("sanitizeInput = %q", got)
	}
}
