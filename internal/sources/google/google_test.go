package google

import (
	"context"
	"errors"
	"strings"
	"testing"

	"aceiro/internal/core"
)

type fakeValues struct {
	values map[string][][]interface{}
	err    error
	ranges []string
}

func (f *fakeValues) Get(_ context.Context, _ string, rng string) ([][]interface{}, error) {
	f.ranges = append(f.ranges, rng)
	if f.err != nil {
		return nil, f.err
	}
	return f.values[rng], nil
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{})
	if err == nil {
		t.Fatal("expected error for missing GOOGLE_SPREADSHEET_ID")
	}
	if err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew_InvalidCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err := New(context.Background(), Config{SpreadsheetID: "id", ServiceAccountFile: t.TempDir() + "/missing.json"})
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("expected read error, got %v", err)
	}
	_, err = New(context.Background(), Config{SpreadsheetID: "id"})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("expected missing credentials error, got %v", err)
	}
}

func TestReadTable(t *testing.T) {
	fake := &fakeValues{values: map[string][][]interface{}{
		"'viaturas'": {
			{"id", "nome"},
			{float64(1), "ABT-01"},
			{},
			{"2"},
		},
	}}
	c := &Client{values: fake, spreadsheetID: "sheet"}

	tbl, err := c.ReadTable(context.Background(), core.Vehicles)
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if len(tbl.Rows) != 2 || tbl.Rows[0][0] != "1" || tbl.Rows[0][1] != "ABT-01" {
		t.Fatalf("rows: %v", tbl.Rows)
	}
	if tbl.Line(1) != 4 {
		t.Fatalf("second row should come from sheet row 4, got %d", tbl.Line(1))
	}
	if tbl.Source != "sheet!'viaturas'" {
		t.Fatalf("source: %s", tbl.Source)
	}

	if _, err := c.ReadTable(context.Background(), core.Materials); !errors.Is(err, core.ErrUnreadableInput) {
		t.Fatalf("empty tab should be unreadable, got %v", err)
	}

	fake.err = errors.New("quota exceeded")
	if _, err := c.ReadTable(context.Background(), core.Vehicles); !errors.Is(err, core.ErrUnreadableInput) {
		t.Fatalf("api error should be unreadable, got %v", err)
	}
}

func TestToStrings(t *testing.T) {
	got := toStrings([]interface{}{nil, "a", true, 2.5, float64(10)})
	want := []string{"", "a", "true", "2.5", "10"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("cell %d: got %q want %q", i, got[i], want[i])
		}
	}
}
