// Package customfields validates tenant-defined task attributes: the schema
// an administrator publishes and the values a task carries against it.
package customfields

import (
	"fmt"
	"regexp"
	"strings"

	"taskhub/internal/models"
)

var namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateSchema checks a complete replacement schema and returns its normalized form.
// All problems are reported together; nothing is returned unless the whole list is valid.
func ValidateSchema(defs []models.CustomFieldDefinition) (models.CustomFieldList, error) {
	verr := &ValidationError{}
	seen := make(map[string]bool, len(defs))
	out := make(models.CustomFieldList, 0, len(defs))

	for i, def := range defs {
		def.Name = strings.TrimSpace(def.Name)
		def.Label = strings.TrimSpace(def.Label)
		field := fmt.Sprintf("custom_fields_config[%d]", i)
		if def.Name != "" {
			field = fmt.Sprintf("custom_fields_config[%d].%s", i, def.Name)
		}

		if !namePattern.MatchString(def.Name) {
			verr.add(field, ErrInvalidName)
		} else if seen[def.Name] {
			verr.add(field, ErrDuplicateName)
		}
		seen[def.Name] = true

		if def.Label == "" {
			verr.add(field, ErrMissingLabel)
		}

		switch {
		case !def.FieldType.Valid():
			verr.add(field, ErrInvalidFieldType)
		case def.FieldType == models.FieldTypeSelect:
			if len(def.Options) == 0 {
				verr.add(field, ErrMissingOptions)
				break
			}
			opts := make(map[string]bool, len(def.Options))
			blank, dup := false, false
			for _, opt := range def.Options {
				switch {
				case strings.TrimSpace(opt) == "":
					blank = true
				case opts[opt]:
					dup = true
				}
				opts[opt] = true
			}
			if blank {
				verr.add(field, ErrBlankOption)
			}
			if dup {
				verr.add(field, ErrDuplicateOption)
			}
			def.Options = append([]string(nil), def.Options...)
		default:
			def.Options = nil
		}

		out = append(out, def)
	}

	if err := verr.orNil(); err != nil {
		return nil, err
	}
	return out, nil
}
