package config

import (
	"bytes"
	"encoding/json"
	"io"
	"reflect"

	"github.com/aleph-committee/aleph-poset/pkg/gomel"
)

// LoadParams parses a Params value from JSON read from r, rejecting unknown or missing fields
// so that stale config files are caught instead of silently falling back to zero values.
func LoadParams(r io.Reader) (Params, error) {
	var p Params

	var buffer bytes.Buffer
	decoder := json.NewDecoder(io.TeeReader(r, &buffer))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&p); err != nil {
		return Params{}, err
	}

	var parsedJSON map[string]interface{}
	if err := json.NewDecoder(&buffer).Decode(&parsedJSON); err != nil {
		return Params{}, err
	}
	if reflect.Indirect(reflect.ValueOf(&p)).NumField() != len(parsedJSON) {
		return Params{}, gomel.NewConfigError("provided params file has incorrect number of fields")
	}
	return p, nil
}

// StoreParams writes p to w as JSON.
func StoreParams(w io.Writer, p Params) error {
	return json.NewEncoder(w).Encode(p)
}
