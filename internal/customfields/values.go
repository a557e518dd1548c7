package customfields

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"taskhub/internal/models"
)

// ValidateValues checks raw API values against a tenant schema and converts them
// to typed values. Nil and blank values count as absent. With requireAll set,
// every required field must be present.
func ValidateValues(schema models.CustomFieldList, raw map[string]interface{}, requireAll bool) (models.CustomFieldValues, error) {
	names := make(map[string]struct{}, len(raw)+len(schema))
	for name := range raw {
		names[name] = struct{}{}
	}
	for _, def := range schema {
		names[def.Name] = struct{}{}
	}
	ordered := make([]string, 0, len(names))
	for name := range names {
		ordered = append(ordered, name)
	}
	sort.Strings(ordered)

	verr := &ValidationError{}
	values := make(models.CustomFieldValues, len(raw))

	for _, name := range ordered {
		def, known := schema.Lookup(name)
		value, present := raw[name]
		if !known {
			verr.add(name, ErrUnknownField)
			continue
		}
		if !present || isBlank(value) {
			if requireAll && def.Required {
				verr.add(name, ErrMissingRequiredField)
			}
			continue
		}
		fv, err := coerce(def, value)
		if err != nil {
			verr.add(name, err)
			continue
		}
		values[name] = fv
	}

	if err := verr.orNil(); err != nil {
		return nil, err
	}
	return values, nil
}

func isBlank(value interface{}) bool {
	if value == nil {
		return true
	}
	s, ok := value.(string)
	return ok && strings.TrimSpace(s) == ""
}

func coerce(def models.CustomFieldDefinition, value interface{}) (models.FieldValue, error) {
	switch def.FieldType {
	case models.FieldTypeText, models.FieldTypeTextarea:
		s, ok := value.(string)
		if !ok {
			return models.FieldValue{}, ErrInvalidValue
		}
		return models.TextValue(s), nil

	case models.FieldTypeNumber:
		n, ok := toNumber(value)
		if !ok {
			return models.FieldValue{}, ErrInvalidValue
		}
		return models.NumberValue(n), nil

	case models.FieldTypeDate:
		d, ok := toDate(value)
		if !ok {
			return models.FieldValue{}, ErrInvalidValue
		}
		return models.DateValue(d), nil

	case models.FieldTypeSelect:
		s, ok := value.(string)
		if !ok {
			return models.FieldValue{}, ErrInvalidValue
		}
		for _, opt := range def.Options {
			if opt == s {
				return models.SelectValue(s), nil
			}
		}
		return models.FieldValue{}, ErrInvalidOption
	}
	return models.FieldValue{}, ErrInvalidFieldType
}

func toNumber(value interface{}) (float64, bool) {
	var n float64
	switch v := value.(type) {
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int32:
		n = float64(v)
	case int64:
		n = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		n = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func toDate(value interface{}) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v.UTC(), true
	case string:
		s := strings.TrimSpace(v)
		if d, err := time.Parse(models.DateLayout, s); err == nil {
			return d, true
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
