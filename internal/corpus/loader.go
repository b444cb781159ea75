// Package corpus loads the drug-information records the retrieval engine is
// built from.
package corpus

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/drugfacts/internal/domain"
	"github.com/kailas-cloud/drugfacts/internal/domain/drug"
)

// Format is the encoding of a corpus file.
type Format string

const (
	// JSON is a top-level JSON array of records.
	JSON Format = "json"
	// YAML is a top-level YAML sequence of records.
	YAML Format = "yaml"
	// TOML is an array of [[drugs]] tables.
	TOML Format = "toml"
)

// tomlTable is the array-of-tables key holding TOML records.
const tomlTable = "drugs"

// Record field names as they appear in the source file.
const (
	fieldGenericName = "generic_name"
	fieldBrandNames  = "brand_names"
	fieldUses        = "uses"
	fieldDosage      = "dosage"
	fieldWarnings    = "warnings"
	fieldSideEffects = "side_effects"
	fieldSources     = "sources"
	fieldLastUpdated = "last_updated"
)

var requiredFields = []string{
	fieldGenericName, fieldBrandNames, fieldUses, fieldDosage,
	fieldWarnings, fieldSideEffects, fieldSources, fieldLastUpdated,
}

var (
	errMissingField = errors.New("missing required field")
	errUnknownField = errors.New("unknown field")
	errWrongType    = errors.New("wrong type")
	errEmptyName    = errors.New("generic_name must not be empty")
	errNotList      = errors.New("top-level value must be a list of records")
	errNotRecord    = errors.New("record must be an object")
)

// FormatFromPath picks the corpus format by file extension; anything other
// than .yaml/.yml/.toml is treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	case ".toml":
		return TOML
	default:
		return JSON
	}
}

// Load reads the corpus at path. Records keep their source order.
// Every failure is a *domain.DataSourceError.
func Load(path string) ([]drug.Record, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, domain.NewDataSourceError(path, err)
	}
	defer f.Close()

	return decode(f, FormatFromPath(path), path)
}

// Decode parses a corpus from r. It validates exactly like Load.
func Decode(r io.Reader, format Format) ([]drug.Record, error) {
	return decode(r, format, "<reader>")
}

func decode(r io.Reader, format Format, path string) ([]drug.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, domain.NewDataSourceError(path, err)
	}

	var items []any
	switch format {
	case YAML:
		err = yaml.Unmarshal(data, &items)
	case TOML:
		items, err = decodeTOML(data)
	case JSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err = dec.Decode(&items); err == nil && dec.More() {
			err = errors.New("unexpected data after top-level list")
		}
	default:
		err = fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, domain.NewDataSourceError(path, fmt.Errorf("parse %s: %w", format, err))
	}
	if items == nil {
		return nil, domain.NewDataSourceError(path, errNotList)
	}

	records := make([]drug.Record, 0, len(items))
	for i, item := range items {
		raw, ok := item.(map[string]any)
		if !ok {
			return nil, domain.NewRecordError(path, i, "", errNotRecord)
		}
		rec, field, err := recordFromRaw(raw)
		if err != nil {
			return nil, domain.NewRecordError(path, i, field, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func decodeTOML(data []byte) ([]any, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	v, ok := doc[tomlTable]
	if !ok {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%s must be an array of tables", tomlTable)
	}
	return list, nil
}

// recordFromRaw validates one decoded record. On failure it also returns the
// offending field name.
func recordFromRaw(raw map[string]any) (drug.Record, string, error) {
	for _, name := range requiredFields {
		if _, ok := raw[name]; !ok {
			return drug.Record{}, name, errMissingField
		}
	}
	if len(raw) != len(requiredFields) {
		for name := range raw {
			if !isKnownField(name) {
				return drug.Record{}, name, errUnknownField
			}
		}
	}

	var f drug.Fields
	var err error
	strs := []struct {
		name string
		dst  *string
	}{
		{fieldGenericName, &f.GenericName},
		{fieldUses, &f.Uses},
		{fieldDosage, &f.Dosage},
		{fieldWarnings, &f.Warnings},
		{fieldSideEffects, &f.SideEffects},
		{fieldLastUpdated, &f.LastUpdated},
	}
	for _, s := range strs {
		if *s.dst, err = asString(raw[s.name]); err != nil {
			return drug.Record{}, s.name, err
		}
	}
	if strings.TrimSpace(f.GenericName) == "" {
		return drug.Record{}, fieldGenericName, errEmptyName
	}

	if f.BrandNames, err = asStrings(raw[fieldBrandNames]); err != nil {
		return drug.Record{}, fieldBrandNames, err
	}
	if f.Sources, err = asStrings(raw[fieldSources]); err != nil {
		return drug.Record{}, fieldSources, err
	}

	return drug.New(f), "", nil
}

func isKnownField(name string) bool {
	for _, f := range requiredFields {
		if f == name {
			return true
		}
	}
	return false
}

func asString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: expected string, got %T", errWrongType, v)
	}
	return s, nil
}

// asStrings accepts a list of strings. A null list is treated as empty.
func asStrings(v any) ([]string, error) {
	if v == nil {
		return []string{}, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected list of strings, got %T", errWrongType, v)
	}
	out := make([]string, len(list))
	for i, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%w: item %d: expected string, got %T", errWrongType, i, item)
		}
		out[i] = s
	}
	return out, nil
}
