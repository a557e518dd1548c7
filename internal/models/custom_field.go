package models

import (
	"encoding/json"
	"fmt"
	"time"
)

type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeNumber   FieldType = "number"
	FieldTypeDate     FieldType = "date"
	FieldTypeSelect   FieldType = "select"
	FieldTypeTextarea FieldType = "textarea"
)

func (t FieldType) Valid() bool {
	switch t {
	case FieldTypeText, FieldTypeNumber, FieldTypeDate, FieldTypeSelect, FieldTypeTextarea:
		return true
	}
	return false
}

// CustomFieldDefinition describes one tenant-defined task attribute.
type CustomFieldDefinition struct {
	Name        string    `json:"name" validate:"required"`
	Label       string    `json:"label" validate:"required"`
	FieldType   FieldType `json:"field_type" validate:"required"`
	Required    bool      `json:"required"`
	Options     []string  `json:"options,omitempty"`
	Placeholder *string   `json:"placeholder,omitempty"`
	HelpText    *string   `json:"help_text,omitempty"`
}

// CustomFieldList is a tenant's ordered schema.
type CustomFieldList []CustomFieldDefinition

func (l CustomFieldList) Lookup(name string) (CustomFieldDefinition, bool) {
	for _, def := range l {
		if def.Name == name {
			return def, true
		}
	}
	return CustomFieldDefinition{}, false
}

// DateLayout is the calendar-date wire format for date values.
const DateLayout = "2006-01-02"

type FieldKind string

const (
	KindText   FieldKind = "text"
	KindNumber FieldKind = "number"
	KindDate   FieldKind = "date"
	KindSelect FieldKind = "select"
)

// FieldValue holds one validated custom field value. Exactly one variant is set.
type FieldValue struct {
	kind   FieldKind
	text   string
	number float64
	date   time.Time
}

func TextValue(s string) FieldValue {
	return FieldValue{kind: KindText, text: s}
}

func NumberValue(n float64) FieldValue {
	return FieldValue{kind: KindNumber, number: n}
}

func DateValue(t time.Time) FieldValue {
	y, m, d := t.Date()
	return FieldValue{kind: KindDate, date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func SelectValue(s string) FieldValue {
	return FieldValue{kind: KindSelect, text: s}
}

func (v FieldValue) Kind() FieldKind { return v.kind }

func (v FieldValue) Text() (string, bool) {
	return v.text, v.kind == KindText
}

func (v FieldValue) Number() (float64, bool) {
	return v.number, v.kind == KindNumber
}

func (v FieldValue) Date() (time.Time, bool) {
	return v.date, v.kind == KindDate
}

func (v FieldValue) Option() (string, bool) {
	return v.text, v.kind == KindSelect
}

// Interface returns the plain value used on the API surface.
func (v FieldValue) Interface() interface{} {
	switch v.kind {
	case KindNumber:
		return v.number
	case KindDate:
		return v.date.Format(DateLayout)
	case KindText, KindSelect:
		return v.text
	}
	return nil
}

func (v FieldValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// CustomFieldValues maps a field name to its value.
type CustomFieldValues map[string]FieldValue

type storedFieldValue struct {
	Type  FieldKind       `json:"type"`
	Value json.RawMessage `json:"value"`
}

// MarshalStorage encodes the values with their variant tags for the JSONB column.
func (m CustomFieldValues) MarshalStorage() ([]byte, error) {
	stored := make(map[string]storedFieldValue, len(m))
	for name, v := range m {
		raw, err := json.Marshal(v.Interface())
		if err != nil {
			return nil, fmt.Errorf("encode custom field %q: %w", name, err)
		}
		stored[name] = storedFieldValue{Type: v.kind, Value: raw}
	}
	return json.Marshal(stored)
}

// UnmarshalStorage decodes the JSONB column written by MarshalStorage.
func UnmarshalStorage(data []byte) (CustomFieldValues, error) {
	values := CustomFieldValues{}
	if len(data) == 0 || string(data) == "null" {
		return values, nil
	}
	var stored map[string]storedFieldValue
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("decode custom fields: %w", err)
	}
	for name, s := range stored {
		switch s.Type {
		case KindText, KindSelect:
			var str string
			if err := json.Unmarshal(s.Value, &str); err != nil {
				return nil, fmt.Errorf("decode custom field %q: %w", name, err)
			}
			if s.Type == KindText {
				values[name] = TextValue(str)
			} else {
				values[name] = SelectValue(str)
			}
		case KindNumber:
			var n float64
			if err := json.Unmarshal(s.Value, &n); err != nil {
				return nil, fmt.Errorf("decode custom field %q: %w", name, err)
			}
			values[name] = NumberValue(n)
		case KindDate:
			var str string
			if err := json.Unmarshal(s.Value, &str); err != nil {
				return nil, fmt.Errorf("decode custom field %q: %w", name, err)
			}
			d, err := time.Parse(DateLayout, str)
			if err != nil {
				return nil, fmt.Errorf("decode custom field %q: %w", name, err)
			}
			values[name] = DateValue(d)
		default:
			return nil, fmt.Errorf("decode custom field %q: unknown type %q", name, s.Type)
		}
	}
	return values, nil
}
