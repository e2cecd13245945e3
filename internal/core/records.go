package core

import (
	"time"
)

// ParseIncidents converts the incident table. The first malformed date or
// area flag aborts with a *ParseError.
func ParseIncidents(t RawTable, loc *time.Location) ([]Incident, error) {
	idx, err := t.Resolve(Incidents.Columns())
	if err != nil {
		return nil, err
	}
	colID, colDate, colMun, colArea := idx[0], idx[1], idx[2], idx[3]

	out := make([]Incident, 0, len(t.Rows))
	for i, row := range t.Rows {
		ts, err := ParseTimestamp(cell(row, colDate), loc)
		if err != nil {
			return nil, t.parseError(i, colDate, row, err)
		}
		rural, err := ParseAreaFlag(cell(row, colArea))
		if err != nil {
			return nil, t.parseError(i, colArea, row, err)
		}
		out = append(out, Incident{
			ID:           cell(row, colID),
			Timestamp:    ts,
			Municipality: cell(row, colMun),
			IsRural:      rural,
			Row:          row,
		})
	}
	return out, nil
}

// ParseCatalog converts a catalog table keyed by id. Duplicate ids are an
// error because they would multiply joined usage rows.
func ParseCatalog(t RawTable, nameColumn string) (Catalog, error) {
	idx, err := t.Resolve([]Column{{Name: ColID}, {Name: nameColumn}})
	if err != nil {
		return nil, err
	}
	colID, colName := idx[0], idx[1]

	out := make(Catalog, len(t.Rows))
	for i, row := range t.Rows {
		id := cell(row, colID)
		if id == "" {
			continue
		}
		if _, dup := out[id]; dup {
			return nil, t.parseError(i, colID, row, ErrDuplicateID)
		}
		out[id] = cell(row, colName)
	}
	return out, nil
}

// ParseUsage converts a usage link table. Blank foreign keys are kept; they
// resolve to UnknownLabel when joined.
func ParseUsage(t RawTable, keyColumn string) ([]UsageLink, error) {
	idx, err := t.Resolve([]Column{{Name: keyColumn}})
	if err != nil {
		return nil, err
	}
	out := make([]UsageLink, 0, len(t.Rows))
	for _, row := range t.Rows {
		out = append(out, UsageLink{ForeignKey: cell(row, idx[0])})
	}
	return out, nil
}

func (t RawTable) parseError(rowIndex, col int, row []string, err error) *ParseError {
	name := ""
	if col >= 0 && col < len(t.Header) {
		name = NormalizeHeader(t.Header[col])
	}
	return &ParseError{
		Entity: t.Entity,
		Source: t.Source,
		Line:   t.Line(rowIndex),
		Column: name,
		Value:  cell(row, col),
		Err:    err,
	}
}
