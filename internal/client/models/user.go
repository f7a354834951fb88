package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strconv"
)

// User is the session identity returned by the login endpoint and mirrored
// into local storage.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	BusinessName string `json:"business_name,omitempty"`
	BusinessType string `json:"business_type,omitempty"`
}

// LoginResult is the body of a successful login.
type LoginResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Profile holds the extended business details fetched after login.
//
// Raw is the payload as received and is authoritative. The display fields are
// read from it leniently: numbers and booleans are rendered as text, and null
// or nested values leave the field empty.
type Profile struct {
	BusinessName    string
	BusinessType    string
	BusinessAddress string
	PhoneNumber     string
	FirstName       string
	LastName        string

	Raw json.RawMessage
}

// ParseProfile decodes a profile body. Any valid JSON is accepted; only an
// unparseable body is an error.
func ParseProfile(body []byte) (*Profile, error) {
	var v any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("profile: trailing data after JSON value")
	}

	p := &Profile{Raw: append(json.RawMessage(nil), body...)}
	fields, ok := v.(map[string]any)
	if !ok {
		return p, nil
	}
	p.BusinessName = text(fields["business_name"])
	p.BusinessType = text(fields["business_type"])
	p.BusinessAddress = text(fields["business_address"])
	p.PhoneNumber = text(fields["phone_number"])
	p.FirstName = text(fields["first_name"])
	p.LastName = text(fields["last_name"])
	return p, nil
}

func text(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
