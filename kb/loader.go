package kb

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/signalsfoundry/globe-quiz/model"
)

// Format selects the encoding of a catalog file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// LoadSummary reports what LoadCatalog added.
type LoadSummary struct {
	CountryIDs []string
}

// catalog file shapes – unexported so the on-disk format can evolve.
type catalogFile struct {
	Countries []countryEntry `json:"countries"`
}

type countryEntry struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	NameJa     string  `json:"name_ja"`
	Region     string  `json:"region"`
	Subregion  string  `json:"subregion"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	AreaKm2    float64 `json:"area_km2"`
	Difficulty string  `json:"difficulty"`
}

const catalogSchemaURL = "globe-quiz/catalog.schema.json"

const catalogSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["countries"],
  "properties": {
    "countries": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "lat", "lng"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "name": {"type": "string"},
          "name_ja": {"type": "string"},
          "region": {"type": "string"},
          "subregion": {"type": "string"},
          "lat": {"type": "number", "minimum": -90, "maximum": 90},
          "lng": {"type": "number", "minimum": -180, "maximum": 180},
          "area_km2": {"type": "number", "minimum": 0},
          "difficulty": {"enum": ["easy", "medium", "hard"]}
        }
      }
    }
  }
}`

var compiledCatalogSchema = jsonschema.MustCompileString(catalogSchemaURL, catalogSchema)

// LoadCatalog decodes a catalog document from r, validates it against the
// catalog schema and appends every entry to kb in file order. The load is
// all or nothing: a schema failure or a duplicate ID, within the file or
// against kb, leaves kb unchanged.
func LoadCatalog(kb *Catalog, r io.Reader, format Format) (*LoadSummary, error) {
	if kb == nil {
		return nil, fmt.Errorf("LoadCatalog: catalog is nil")
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("LoadCatalog: read failed: %w", err)
	}

	jsonDoc, err := toJSON(raw, format)
	if err != nil {
		return nil, fmt.Errorf("LoadCatalog: decode failed: %w", err)
	}

	var doc any
	if err := json.Unmarshal(jsonDoc, &doc); err != nil {
		return nil, fmt.Errorf("LoadCatalog: decode failed: %w", err)
	}
	if err := compiledCatalogSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCountry, err)
	}

	var payload catalogFile
	if err := json.Unmarshal(jsonDoc, &payload); err != nil {
		return nil, fmt.Errorf("LoadCatalog: decode failed: %w", err)
	}

	countries := make([]model.Country, 0, len(payload.Countries))
	summary := &LoadSummary{CountryIDs: make([]string, 0, len(payload.Countries))}
	for _, e := range payload.Countries {
		countries = append(countries, model.Country{
			ID:         e.ID,
			Name:       e.Name,
			NameJa:     e.NameJa,
			Region:     e.Region,
			Subregion:  e.Subregion,
			Coordinate: model.GeoCoordinate{Latitude: e.Lat, Longitude: e.Lng},
			AreaKm2:    e.AreaKm2,
			Difficulty: model.Difficulty(e.Difficulty),
		})
		summary.CountryIDs = append(summary.CountryIDs, e.ID)
	}
	if err := kb.AddCountries(countries); err != nil {
		return nil, fmt.Errorf("LoadCatalog: %w", err)
	}
	return summary, nil
}

// OpenCatalogFile loads a catalog from path into kb. The format follows the
// extension (.json, .yaml, .yml); a trailing .zst means the file is zstd
// compressed.
func OpenCatalogFile(kb *Catalog, path string) (*LoadSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %q: %w", path, err)
	}
	defer f.Close()

	name := strings.ToLower(path)
	var r io.Reader = f
	if strings.HasSuffix(name, ".zst") {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open catalog %q: %w", path, err)
		}
		defer dec.Close()
		r = dec
		name = strings.TrimSuffix(name, ".zst")
	}

	format, err := FormatFromPath(name)
	if err != nil {
		return nil, err
	}
	return LoadCatalog(kb, r, format)
}

// FormatFromPath infers the catalog format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported catalog extension %q", filepath.Ext(path))
	}
}

func toJSON(raw []byte, format Format) ([]byte, error) {
	switch format {
	case FormatJSON, "":
		return raw, nil
	case FormatYAML:
		var doc any
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		return json.Marshal(doc)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", format)
	}
}
