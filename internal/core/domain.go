package core

import (
	"strings"
	"time"
)

// Entity names one of the seven input tables. The value doubles as the table
// name in SQLite and the tab name in Google Sheets.
type Entity string

const (
	Incidents      Entity = "ocorrencias"
	Equipment      Entity = "equipamentos"
	EquipmentUsage Entity = "recursos_equipamentos"
	Materials      Entity = "materiais"
	MaterialUsage  Entity = "recursos_materiais"
	Vehicles       Entity = "viaturas"
	VehicleUsage   Entity = "ocorrencia_viatura"
)

// Column names as exported by the incident management database.
const (
	ColID            = "id"
	ColDate          = "data"
	ColMunicipality  = "municipio"
	ColArea          = "urbano_rural"
	ColEquipmentType = "tipo_equipamento"
	ColEquipmentID   = "equipamento_id"
	ColMaterialType  = "tipo_material"
	ColMaterialID    = "materiais_id"
	ColVehicleName   = "nome"
	ColVehicleID     = "viatura_id"

	// Derived columns appended to the incident table widget.
	ColMonth    = "mes"
	ColAreaName = "area"
)

// Area labels for the urbano_rural flag.
const (
	AreaRural = "Rural"
	AreaUrban = "Urbano"
)

type (
	// Column is a required input column. Aliases are accepted in headers
	// in place of Name.
	Column struct {
		Name    string
		Aliases []string
	}

	// RawTable is a header plus string rows, as returned by every source.
	RawTable struct {
		Entity Entity
		Source string // file path, table or sheet reference
		Header []string
		Rows   [][]string
		// Lines holds the source line of each row when the reader skipped
		// records. Nil means rows follow the header without gaps.
		Lines []int
	}

	Incident struct {
		ID           string
		Timestamp    time.Time
		Municipality string
		IsRural      bool
		Row          []string // original cells, aligned with Dataset.IncidentColumns
	}

	// UsageLink is one resource usage row pointing at a catalog entry.
	UsageLink struct {
		ForeignKey string
	}

	// Catalog maps a catalog entry id to its human readable name.
	Catalog map[string]string
)

// Entities returns every input table in load order.
func Entities() []Entity {
	return []Entity{Incidents, Equipment, EquipmentUsage, Materials, MaterialUsage, Vehicles, VehicleUsage}
}

// FileName is the CSV export name for the entity.
func (e Entity) FileName() string {
	return string(e) + "_rows.csv"
}

func (e Entity) String() string {
	return string(e)
}

// IsValid reports whether e is one of the known input tables.
func (e Entity) IsValid() bool {
	for _, known := range Entities() {
		if e == known {
			return true
		}
	}
	return false
}

// Columns returns the columns that must be present in the entity's header.
func (e Entity) Columns() []Column {
	switch e {
	case Incidents:
		return []Column{
			{Name: ColID},
			{Name: ColDate, Aliases: []string{"timestamp"}},
			{Name: ColMunicipality, Aliases: []string{"municipality"}},
			{Name: ColArea, Aliases: []string{"is_rural"}},
		}
	case Equipment:
		return []Column{{Name: ColID}, {Name: ColEquipmentType}}
	case EquipmentUsage:
		return []Column{{Name: ColEquipmentID}}
	case Materials:
		return []Column{{Name: ColID}, {Name: ColMaterialType}}
	case MaterialUsage:
		return []Column{{Name: ColMaterialID}}
	case Vehicles:
		return []Column{{Name: ColID}, {Name: ColVehicleName}}
	case VehicleUsage:
		return []Column{{Name: ColVehicleID}}
	}
	return nil
}

// Resolve finds the header index of every column in cols. Header names are
// compared trimmed and case-insensitively; a UTF-8 BOM on the first header is
// ignored.
func (t RawTable) Resolve(cols []Column) ([]int, error) {
	index := make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		key := NormalizeHeader(h)
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}

	out := make([]int, len(cols))
	var missing []string
	for i, c := range cols {
		pos, ok := index[NormalizeHeader(c.Name)]
		for _, alias := range c.Aliases {
			if ok {
				break
			}
			pos, ok = index[NormalizeHeader(alias)]
		}
		if !ok {
			missing = append(missing, c.Name)
			continue
		}
		out[i] = pos
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Entity: t.Entity, Source: t.Source, Missing: missing, Header: t.Header}
	}
	return out, nil
}

// Line returns the 1-based source line of row i. The header is line 1.
func (t RawTable) Line(i int) int {
	if i >= 0 && i < len(t.Lines) {
		return t.Lines[i]
	}
	return i + 2
}

// NormalizeHeader trims a header name, drops a UTF-8 BOM and lowercases it.
func NormalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ToLower(strings.TrimSpace(h))
}

// cell returns row[i] trimmed, or "" when the row is short.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// MonthName is the English calendar month name of the incident date.
func (i Incident) MonthName() string {
	return i.Timestamp.Month().String()
}

// Day is the calendar date of the incident as YYYY-MM-DD.
func (i Incident) Day() string {
	return i.Timestamp.Format(time.DateOnly)
}

// AreaLabel maps the rural flag to its display label.
func (i Incident) AreaLabel() string {
	if i.IsRural {
		return AreaRural
	}
	return AreaUrban
}

// Name returns the catalog name for id. Blank ids, unknown ids and entries
// with a blank name all resolve to UnknownLabel.
func (c Catalog) Name(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return UnknownLabel
	}
	name, ok := c[id]
	if !ok || strings.TrimSpace(name) == "" {
		return UnknownLabel
	}
	return name
}

// Dataset is the immutable result of the loading step. It is shared by every
// request handler and must not be modified after Load returns.
type Dataset struct {
	LoadID   string
	LoadedAt time.Time
	Source   string

	IncidentColumns []string
	Incidents       []Incident

	Equipment      Catalog
	EquipmentUsage []UsageLink
	Materials      Catalog
	MaterialUsage  []UsageLink
	Vehicles       Catalog
	VehicleUsage   []UsageLink
}

// Counts returns the number of rows loaded per entity.
func (d *Dataset) Counts() map[Entity]int {
	return map[Entity]int{
		Incidents:      len(d.Incidents),
		Equipment:      len(d.Equipment),
		EquipmentUsage: len(d.EquipmentUsage),
		Materials:      len(d.Materials),
		MaterialUsage:  len(d.MaterialUsage),
		Vehicles:       len(d.Vehicles),
		VehicleUsage:   len(d.VehicleUsage),
	}
}
