package core

// UnknownLabel is the bucket for usage rows whose catalog entry cannot be
// resolved.
const UnknownLabel = "Desconhecido"

// CountField is the value column of every aggregate table.
const CountField = "quantidade"

// Bucket is one group of an aggregate table.
type Bucket struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// AggregateTable is a named group-by count. Rows are in display order.
type AggregateTable struct {
	Name       string   `json:"name"`
	KeyField   string   `json:"key_field"`
	ValueField string   `json:"value_field"`
	Rows       []Bucket `json:"rows"`
}

// Total sums the counts of every bucket.
func (t AggregateTable) Total() int {
	total := 0
	for _, b := range t.Rows {
		total += b.Count
	}
	return total
}

// Count returns the count for key and whether the bucket exists.
func (t AggregateTable) Count(key string) (int, bool) {
	for _, b := range t.Rows {
		if b.Key == key {
			return b.Count, true
		}
	}
	return 0, false
}

// IsEmpty reports whether the table has no buckets.
func (t AggregateTable) IsEmpty() bool {
	return len(t.Rows) == 0
}
