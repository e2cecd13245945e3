// Package aggregate turns a loaded dataset into the fixed set of group-by
// count tables shown on the dashboard. Every function is pure and safe to call
// concurrently on a shared dataset.
package aggregate

import (
	"slices"
	"time"

	"github.com/samber/lo"

	"aceiro/internal/core"
)

// Table names.
const (
	NameByMonth        = "incidents_by_month"
	NameByDay          = "incidents_by_day"
	NameByMunicipality = "incidents_by_municipality"
	NameByArea         = "incidents_by_area"
	NameEquipmentUsage = "equipment_usage"
	NameMaterialUsage  = "material_usage"
	NameVehicleUsage   = "vehicle_usage"
	NameStaffing       = "staffing"
)

// Aggregates holds the seven dataset tables.
type Aggregates struct {
	ByMonth        core.AggregateTable
	ByDay          core.AggregateTable
	ByMunicipality core.AggregateTable
	ByArea         core.AggregateTable
	EquipmentUsage core.AggregateTable
	MaterialUsage  core.AggregateTable
	VehicleUsage   core.AggregateTable
}

// Names lists the dataset tables in display order.
func Names() []string {
	return []string{
		NameByMonth, NameByDay, NameByMunicipality, NameByArea,
		NameEquipmentUsage, NameMaterialUsage, NameVehicleUsage,
	}
}

// Compute recomputes every table from the full dataset. A nil dataset yields
// empty tables.
func Compute(ds *core.Dataset) Aggregates {
	return Aggregates{
		ByMonth:        ByMonth(ds),
		ByDay:          ByDay(ds),
		ByMunicipality: ByMunicipality(ds),
		ByArea:         ByArea(ds),
		EquipmentUsage: EquipmentUsage(ds),
		MaterialUsage:  MaterialUsage(ds),
		VehicleUsage:   VehicleUsage(ds),
	}
}

// Tables returns the tables in the order of Names.
func (a Aggregates) Tables() []core.AggregateTable {
	return []core.AggregateTable{
		a.ByMonth, a.ByDay, a.ByMunicipality, a.ByArea,
		a.EquipmentUsage, a.MaterialUsage, a.VehicleUsage,
	}
}

// Lookup finds a table by name.
func (a Aggregates) Lookup(name string) (core.AggregateTable, bool) {
	return lo.Find(a.Tables(), func(t core.AggregateTable) bool { return t.Name == name })
}

// Lookup computes only the named table.
func Lookup(ds *core.Dataset, name string) (core.AggregateTable, bool) {
	switch name {
	case NameByMonth:
		return ByMonth(ds), true
	case NameByDay:
		return ByDay(ds), true
	case NameByMunicipality:
		return ByMunicipality(ds), true
	case NameByArea:
		return ByArea(ds), true
	case NameEquipmentUsage:
		return EquipmentUsage(ds), true
	case NameMaterialUsage:
		return MaterialUsage(ds), true
	case NameVehicleUsage:
		return VehicleUsage(ds), true
	}
	return core.AggregateTable{}, false
}

// ByMonth counts incidents per calendar month, January to December. Months
// from different years share a bucket.
func ByMonth(ds *core.Dataset) core.AggregateTable {
	counts := lo.CountValuesBy(incidents(ds), core.Incident.MonthName)
	keys := make([]string, 0, len(counts))
	for m := time.January; m <= time.December; m++ {
		if _, ok := counts[m.String()]; ok {
			keys = append(keys, m.String())
		}
	}
	return table(NameByMonth, core.ColMonth, keys, counts)
}

// ByDay counts incidents per calendar date in chronological order.
func ByDay(ds *core.Dataset) core.AggregateTable {
	counts := lo.CountValuesBy(incidents(ds), core.Incident.Day)
	keys := lo.Keys(counts)
	// YYYY-MM-DD sorts chronologically.
	slices.Sort(keys)
	return table(NameByDay, core.ColDate, keys, counts)
}

// ByMunicipality counts incidents per municipality.
func ByMunicipality(ds *core.Dataset) core.AggregateTable {
	counts := lo.CountValuesBy(incidents(ds), func(i core.Incident) string { return i.Municipality })
	return table(NameByMunicipality, core.ColMunicipality, categoricalKeys(counts), counts)
}

// ByArea counts incidents per Rural/Urbano label.
func ByArea(ds *core.Dataset) core.AggregateTable {
	counts := lo.CountValuesBy(incidents(ds), core.Incident.AreaLabel)
	return table(NameByArea, core.ColAreaName, categoricalKeys(counts), counts)
}

// EquipmentUsage joins equipment usage rows to the equipment catalog and
// counts them per equipment type.
func EquipmentUsage(ds *core.Dataset) core.AggregateTable {
	if ds == nil {
		return join(NameEquipmentUsage, core.ColEquipmentType, nil, nil)
	}
	return join(NameEquipmentUsage, core.ColEquipmentType, ds.EquipmentUsage, ds.Equipment)
}

// MaterialUsage joins material usage rows to the material catalog and counts
// them per material type.
func MaterialUsage(ds *core.Dataset) core.AggregateTable {
	if ds == nil {
		return join(NameMaterialUsage, core.ColMaterialType, nil, nil)
	}
	return join(NameMaterialUsage, core.ColMaterialType, ds.MaterialUsage, ds.Materials)
}

// VehicleUsage joins incident/vehicle links to the vehicle catalog and counts
// them per vehicle name.
func VehicleUsage(ds *core.Dataset) core.AggregateTable {
	if ds == nil {
		return join(NameVehicleUsage, core.ColVehicleName, nil, nil)
	}
	return join(NameVehicleUsage, core.ColVehicleName, ds.VehicleUsage, ds.Vehicles)
}

// Staffing builds the fixed personnel table. Entries keep their given order.
func Staffing(entries []core.Bucket) core.AggregateTable {
	rows := make([]core.Bucket, 0, len(entries))
	rows = append(rows, entries...)
	return core.AggregateTable{
		Name:       NameStaffing,
		KeyField:   "Categoria",
		ValueField: "Quantidade",
		Rows:       rows,
	}
}

// join is a left join followed by a count. Unresolved keys are counted under
// core.UnknownLabel, so the total always equals len(links).
func join(name, keyField string, links []core.UsageLink, catalog core.Catalog) core.AggregateTable {
	counts := lo.CountValuesBy(links, func(l core.UsageLink) string { return catalog.Name(l.ForeignKey) })
	return table(name, keyField, categoricalKeys(counts), counts)
}

func incidents(ds *core.Dataset) []core.Incident {
	if ds == nil {
		return nil
	}
	return ds.Incidents
}

// categoricalKeys sorts keys ascending and moves the unknown bucket last.
func categoricalKeys(counts map[string]int) []string {
	keys := lo.Keys(counts)
	slices.SortFunc(keys, func(a, b string) int {
		switch {
		case a == b:
			return 0
		case a == core.UnknownLabel:
			return 1
		case b == core.UnknownLabel:
			return -1
		case a < b:
			return -1
		default:
			return 1
		}
	})
	return keys
}

func table(name, keyField string, keys []string, counts map[string]int) core.AggregateTable {
	rows := make([]core.Bucket, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, core.Bucket{Key: k, Count: counts[k]})
	}
	return core.AggregateTable{
		Name:       name,
		KeyField:   keyField,
		ValueField: core.CountField,
		Rows:       rows,
	}
}
