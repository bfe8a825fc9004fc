package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// ID is a legacy document id. json-server generates both numeric and string
// ids, so either form decodes.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	*id = ID(flexible(b))
	return nil
}

// Amount is a legacy amount, stored by the old forms as a string and by some
// tools as a number.
type Amount string

func (a *Amount) UnmarshalJSON(b []byte) error {
	*a = Amount(flexible(b))
	return nil
}

func flexible(b []byte) string {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err == nil {
			return s
		}
	}
	if string(b) == "null" {
		return ""
	}
	return string(b)
}

// User is a legacy user document.
type User struct {
	ID       ID     `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
	Status   string `json:"status,omitempty"`
	ShopID   ID     `json:"shopId,omitempty"`
}

// Shop is a legacy shop document.
type Shop struct {
	ID     ID     `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status,omitempty"`
}

// Revenue is a legacy revenue document.
type Revenue struct {
	ID          ID     `json:"id"`
	Activity    string `json:"activity"`
	Amount      Amount `json:"amount"`
	Date        string `json:"date"`
	Shop        string `json:"shop"`
	Username    string `json:"username"`
	Description string `json:"description,omitempty"`
	Timestamp   string `json:"timestamp,omitempty"`
}

// Expense is a legacy expense document.
type Expense struct {
	ID          ID     `json:"id"`
	Category    string `json:"category"`
	Amount      Amount `json:"amount"`
	Date        string `json:"date"`
	Shop        string `json:"shop"`
	Username    string `json:"username"`
	Description string `json:"description,omitempty"`
	Timestamp   string `json:"timestamp,omitempty"`
}

// Snapshot is the full content of a backend, laid out like json-server's db.json.
type Snapshot struct {
	Users    []User    `json:"users"`
	Shops    []Shop    `json:"shops"`
	Revenues []Revenue `json:"revenues"`
	Expenses []Expense `json:"expenses"`
}

// LoadSnapshot reads a db.json export.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	return &snap, nil
}
