package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Brand is a named marketing identity owned by the account.
type Brand struct {
	ID   string `json:"brand_id"`
	Name string `json:"name"`
}

// UnmarshalJSON accepts the id under "brand_id" or "id", as a string or a
// number, since the backend is not consistent between endpoints.
func (b *Brand) UnmarshalJSON(data []byte) error {
	var raw struct {
		BrandID json.RawMessage `json:"brand_id"`
		ID      json.RawMessage `json:"id"`
		Name    string          `json:"name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	idField := raw.BrandID
	if len(idField) == 0 || bytes.Equal(idField, []byte("null")) {
		idField = raw.ID
	}
	id, err := parseID(idField)
	if err != nil {
		return fmt.Errorf("brand id: %w", err)
	}

	b.ID = id
	b.Name = raw.Name
	return nil
}

// String renders the brand for listings; unnamed brands show their id only.
func (b Brand) String() string {
	if b.Name == "" {
		return fmt.Sprintf("[%s] (unnamed)", b.ID)
	}
	return fmt.Sprintf("[%s] %s", b.ID, b.Name)
}

// BrandList is the body of the list endpoint.
type BrandList struct {
	Brands []Brand `json:"brands"`
}

// CreatedBrand is the body of the create endpoint.
type CreatedBrand struct {
	BrandID string
}

func (c *CreatedBrand) UnmarshalJSON(data []byte) error {
	var raw struct {
		BrandID json.RawMessage `json:"brand_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	id, err := parseID(raw.BrandID)
	if err != nil {
		return fmt.Errorf("brand id: %w", err)
	}
	c.BrandID = id
	return nil
}

func parseID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return "", fmt.Errorf("non-integer id %s", n)
	}
	return n.String(), nil
}
