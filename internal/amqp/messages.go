package amqp

import (
	"encoding/json"
	"time"
)

// TableSavedMessage announces that a user's session persisted the full
// table. The worker uses it to trigger a mirror sync; the row count gives a
// cheap sanity signal without shipping the table itself.
type TableSavedMessage struct {
	User    string    `json:"user"`
	Rows    int       `json:"rows"`
	SavedAt time.Time `json:"saved_at"`
}

func NewTableSavedMessage(user string, rows int) *TableSavedMessage {
	return &TableSavedMessage{
		User:    user,
		Rows:    rows,
		SavedAt: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *TableSavedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TableSavedMessageFromJSON creates a message from JSON bytes.
func TableSavedMessageFromJSON(data []byte) (*TableSavedMessage, error) {
	var msg TableSavedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
