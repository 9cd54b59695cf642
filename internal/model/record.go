package model

import (
	"fmt"
	"strings"
)

// Record is a user/partner entry in the remote collection.
type Record struct {
	ID        string   `json:"id"`
	UserName  string   `json:"userName"`
	UserCode  string   `json:"userCode"`
	Countries []string `json:"countries"`
}

// Draft holds the editable fields of a Record. It never carries an id: the store
// assigns one on create, and updates address the record by id separately.
type Draft struct {
	UserName  string   `json:"userName"`
	UserCode  string   `json:"userCode"`
	Countries []string `json:"countries"`
}

// Draft returns the editable fields of r.
func (r Record) Draft() Draft {
	return Draft{
		UserName:  r.UserName,
		UserCode:  r.UserCode,
		Countries: CloneCountries(r.Countries),
	}
}

// WithID returns the record the store would hold for d under id.
func (d Draft) WithID(id string) Record {
	return Record{
		ID:        id,
		UserName:  d.UserName,
		UserCode:  d.UserCode,
		Countries: CloneCountries(d.Countries),
	}
}

// Normalized trims name and code. Countries keep their order.
func (d Draft) Normalized() Draft {
	return Draft{
		UserName:  strings.TrimSpace(d.UserName),
		UserCode:  strings.TrimSpace(d.UserCode),
		Countries: CloneCountries(d.Countries),
	}
}

// Field names used as keys in FieldErrors. They match the wire names.
const (
	FieldUserName  = "userName"
	FieldCountries = "countries"
)

const (
	MsgUserNameRequired  = "User Name is required"
	MsgCountriesRequired = "Please select at least one country"
)

// FieldErrors maps a field name to its validation message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	if len(fe) == 0 {
		return ""
	}
	parts := make([]string, 0, len(fe))
	for _, k := range []string{FieldUserName, FieldCountries} {
		if msg, ok := fe[k]; ok {
			parts = append(parts, fmt.Sprintf("%s: %s", k, msg))
		}
	}
	return "invalid record: " + strings.Join(parts, "; ")
}

// Validate checks the fields every persisted record must have. The code is optional
// and never produces an error.
func (d Draft) Validate() FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(d.UserName) == "" {
		errs[FieldUserName] = MsgUserNameRequired
	}
	if len(d.Countries) == 0 {
		errs[FieldCountries] = MsgCountriesRequired
	}
	return errs
}

// CountryOptions is the fixed list offered by the country picker.
var CountryOptions = []string{
	"Argentina", "Belgium", "Denmark", "Egypt", "Finland", "Germany",
	"Iceland", "Italy", "Japan", "Norway", "Spain", "Sweden", "India",
}

// ToggleCountry removes country when present, otherwise appends it.
// The input slice is not modified.
func ToggleCountry(countries []string, country string) []string {
	for i, c := range countries {
		if c == country {
			out := make([]string, 0, len(countries)-1)
			out = append(out, countries[:i]...)
			return append(out, countries[i+1:]...)
		}
	}
	out := make([]string, 0, len(countries)+1)
	out = append(out, countries...)
	return append(out, country)
}

// HasCountry reports whether country is in countries.
func HasCountry(countries []string, country string) bool {
	for _, c := range countries {
		if c == country {
			return true
		}
	}
	return false
}

// CloneCountries copies xs; the result is never nil so it encodes as [].
func CloneCountries(xs []string) []string {
	out := make([]string, len(xs))
	copy(out, xs)
	return out
}

// PickerOptions returns CountryOptions followed by any selected country that is
// not part of the fixed list, so records from the store can still be deselected.
func PickerOptions(selected []string) []string {
	out := make([]string, 0, len(CountryOptions)+len(selected))
	out = append(out, CountryOptions...)
	for _, c := range selected {
		if !HasCountry(out, c) {
			out = append(out, c)
		}
	}
	return out
}
