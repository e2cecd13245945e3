package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"aceiro/internal/core"
	applog "aceiro/internal/log"
	"aceiro/internal/sources"
)

// DatasetLoader reads every input table and builds the immutable dataset.
type DatasetLoader struct {
	reader   sources.TableReader
	location *time.Location
	logger   *applog.Logger
	now      func() time.Time
}

// NewDatasetLoader reads naive timestamps in loc (UTC when nil). A nil logger
// logs through slog's default handler.
func NewDatasetLoader(reader sources.TableReader, loc *time.Location, logger *applog.Logger) *DatasetLoader {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = applog.New(applog.Config{Handler: slog.Default().Handler(), Component: applog.ComponentLoader})
	}
	return &DatasetLoader{reader: reader, location: loc, logger: logger, now: time.Now}
}

// ReadAll fetches the raw tables concurrently, in core.Entities order. The
// first failure cancels the remaining reads.
func (l *DatasetLoader) ReadAll(ctx context.Context) ([]core.RawTable, error) {
	entities := core.Entities()
	tables := make([]core.RawTable, len(entities))

	g, gctx := errgroup.WithContext(ctx)
	for i, entity := range entities {
		g.Go(func() error {
			t, err := l.reader.ReadTable(gctx, entity)
			if err != nil {
				return err
			}
			l.logger.DebugContext(gctx, "Table read",
				applog.NewFields().WithTable(entity.String(), t.Source, len(t.Rows)).ToSlice()...)
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}

// Load reads, validates and normalizes every table. Any schema or parse
// problem aborts the load.
func (l *DatasetLoader) Load(ctx context.Context) (*core.Dataset, error) {
	start := time.Now()
	tables, err := l.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	ds, err := Build(tables, l.location)
	if err != nil {
		return nil, err
	}
	ds.LoadID = uuid.NewString()
	ds.LoadedAt = l.now()
	ds.Source = sources.Describe(l.reader)

	counts := make(map[string]int, len(core.Entities()))
	for e, n := range ds.Counts() {
		counts[e.String()] = n
	}
	applog.NewStructuredLogger(l.logger).LogDatasetLoaded(ctx, ds.LoadID, ds.Source, counts, time.Since(start))
	return ds, nil
}

// Build normalizes raw tables into a dataset. Tables may come in any order;
// each entity must appear once.
func Build(tables []core.RawTable, loc *time.Location) (*core.Dataset, error) {
	byEntity := make(map[core.Entity]core.RawTable, len(tables))
	for _, t := range tables {
		byEntity[t.Entity] = t
	}
	for _, e := range core.Entities() {
		if _, ok := byEntity[e]; !ok {
			return nil, &core.LoadError{Entity: e, Source: "", Err: fmt.Errorf("table %s not provided", e)}
		}
	}

	ds := &core.Dataset{}
	var err error

	incidents := byEntity[core.Incidents]
	if ds.Incidents, err = core.ParseIncidents(incidents, loc); err != nil {
		return nil, err
	}
	ds.IncidentColumns = normalizedHeader(incidents.Header)

	if ds.Equipment, err = core.ParseCatalog(byEntity[core.Equipment], core.ColEquipmentType); err != nil {
		return nil, err
	}
	if ds.EquipmentUsage, err = core.ParseUsage(byEntity[core.EquipmentUsage], core.ColEquipmentID); err != nil {
		return nil, err
	}
	if ds.Materials, err = core.ParseCatalog(byEntity[core.Materials], core.ColMaterialType); err != nil {
		return nil, err
	}
	if ds.MaterialUsage, err = core.ParseUsage(byEntity[core.MaterialUsage], core.ColMaterialID); err != nil {
		return nil, err
	}
	if ds.Vehicles, err = core.ParseCatalog(byEntity[core.Vehicles], core.ColVehicleName); err != nil {
		return nil, err
	}
	if ds.VehicleUsage, err = core.ParseUsage(byEntity[core.VehicleUsage], core.ColVehicleID); err != nil {
		return nil, err
	}
	return ds, nil
}

func normalizedHeader(h []string) []string {
	out := make([]string, len(h))
	for i, v := range h {
		out[i] = core.NormalizeHeader(v)
	}
	return out
}
