package amqp

import (
	"encoding/json"
	"time"
)

// DatasetImportedMessage announces a new SQLite snapshot. Consumers reload
// the dataset from the snapshot; the message carries no rows.
type DatasetImportedMessage struct {
	ImportID string         `json:"import_id"`
	Source   string         `json:"source"`
	Rows     map[string]int `json:"rows"`
	At       time.Time      `json:"at"`
}

// NewDatasetImportedMessage creates a message stamped with the current time
func NewDatasetImportedMessage(importID, source string, rows map[string]int) *DatasetImportedMessage {
	return &DatasetImportedMessage{
		ImportID: importID,
		Source:   source,
		Rows:     rows,
		At:       time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *DatasetImportedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// DatasetImportedMessageFromJSON creates a message from JSON bytes
func DatasetImportedMessageFromJSON(data []byte) (*DatasetImportedMessage, error) {
	var msg DatasetImportedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
