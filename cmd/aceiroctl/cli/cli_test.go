package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"aceiro/internal/aggregate"
	"aceiro/internal/amqp"
	"aceiro/internal/backend"
	"aceiro/internal/charts"
	appcli "aceiro/internal/cli"
	"aceiro/internal/config"
	"aceiro/internal/core"
	applog "aceiro/internal/log"
)

var fixtures = map[core.Entity]string{
	core.Incidents:      "id,data,municipio,urbano_rural,descricao\n1,2024-01-05,Manaus,false,foco\n2,2024-01-20 10:00:00,Tefé,true,\n3,2024-02-01,Manaus,true,\n",
	core.Equipment:      "id,tipo_equipamento\n1,Bomba costal\n2,Abafador\n",
	core.EquipmentUsage: "id,equipamento_id\n1,1\n2,2\n3,2\n",
	core.Materials:      "id,tipo_material\n1,Mangueira\n",
	core.MaterialUsage:  "id,materiais_id\n1,1\n",
	core.Vehicles:       "id,nome\n1,ABT-01\n",
	core.VehicleUsage:   "id,viatura_id\n1,1\n2,9\n",
}

func writeFixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for e, content := range fixtures {
		if err := os.WriteFile(filepath.Join(dir, e.FileName()), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", e, err)
		}
	}
	return dir
}

func quietLogger() *applog.Logger {
	return applog.New(applog.Config{Output: io.Discard})
}

type recordingPublisher struct{ calls int }

func (p *recordingPublisher) PublishDatasetImported(context.Context, *amqp.DatasetImportedMessage) error {
	p.calls++
	return nil
}

func TestImportThenReportFromSnapshot(t *testing.T) {
	dir := writeFixtures(t)
	dbPath := filepath.Join(t.TempDir(), "snap", "aceiro.db")
	cfg := &config.Config{DataTimezone: "UTC", DataBackend: config.BackendSQLite, SQLiteDBPath: dbPath}
	pub := &recordingPublisher{}

	res, err := importDataset(context.Background(), cfg, dir, dbPath, pub, quietLogger())
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !res.Published || pub.calls != 1 {
		t.Fatalf("expected one notification, got %+v calls=%d", res, pub.calls)
	}
	if res.Rows[core.EquipmentUsage.String()] != 3 {
		t.Fatalf("rows = %v", res.Rows)
	}

	var out bytes.Buffer
	printImport(&out, res, dbPath)
	if !strings.Contains(out.String(), res.ImportID) {
		t.Fatalf("import summary: %s", out.String())
	}

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		t.Fatalf("backend config: %v", err)
	}
	ds, err := appcli.LoadDataset(context.Background(), cfg, bcfg, quietLogger())
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}

	tables, err := selectTables(ds, charts.DefaultStaffing(), []string{aggregate.NameByMonth, aggregate.NameEquipmentUsage})
	if err != nil {
		t.Fatalf("selectTables: %v", err)
	}
	if got := tables[0].Rows; len(got) != 2 || got[0] != (core.Bucket{Key: "January", Count: 2}) {
		t.Fatalf("month table from snapshot = %v", got)
	}
	if n, _ := tables[1].Count("Abafador"); n != 2 {
		t.Fatalf("equipment table from snapshot = %v", tables[1].Rows)
	}
}

func TestImportRejectsInvalidSource(t *testing.T) {
	dir := writeFixtures(t)
	if err := os.WriteFile(filepath.Join(dir, core.Incidents.FileName()),
		[]byte("id,data,municipio,urbano_rural\n1,ontem,Manaus,false\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	dbPath := filepath.Join(t.TempDir(), "aceiro.db")
	cfg := &config.Config{DataTimezone: "UTC"}

	_, err := importDataset(context.Background(), cfg, dir, dbPath, nil, quietLogger())
	if !errors.Is(err, core.ErrInvalidTimestamp) {
		t.Fatalf("expected invalid timestamp, got %v", err)
	}
}

func TestSelectTables(t *testing.T) {
	ds := &core.Dataset{}
	all, err := selectTables(ds, charts.DefaultStaffing(), nil)
	if err != nil {
		t.Fatalf("selectTables: %v", err)
	}
	if len(all) != len(aggregate.Names())+1 {
		t.Fatalf("got %d tables", len(all))
	}
	if all[len(all)-1].Name != aggregate.NameStaffing {
		t.Fatalf("staffing should come last, got %s", all[len(all)-1].Name)
	}

	if _, err := selectTables(ds, nil, []string{"nope"}); err == nil || !strings.Contains(err.Error(), "unknown table") {
		t.Fatalf("expected unknown table error, got %v", err)
	}
}

func TestWriteReport(t *testing.T) {
	ds := &core.Dataset{LoadID: "load-1", Source: "csv:./data"}
	tables := []core.AggregateTable{
		{Name: aggregate.NameByArea, KeyField: "area", ValueField: core.CountField, Rows: []core.Bucket{{Key: "Rural", Count: 2}, {Key: "Urbano", Count: 1}}},
		{Name: aggregate.NameVehicleUsage, KeyField: "nome", ValueField: core.CountField},
	}

	var out bytes.Buffer
	if err := writeReport(&out, ds, tables); err != nil {
		t.Fatalf("writeReport: %v", err)
	}
	got := out.String()
	for _, want := range []string{"Load load-1 from csv:./data", aggregate.NameByArea, "Rural", "total", "(empty)"} {
		if !strings.Contains(got, want) {
			t.Errorf("report missing %q:\n%s", want, got)
		}
	}
}
