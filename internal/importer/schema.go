package importer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexanderramin/dayplan/internal/domain"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a request file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from the file extension. Anything that is
// not .yaml or .yml is read as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// LoadRequest reads and parses a request file. The result is not validated;
// see ValidateRequest.
func LoadRequest(path string) (*domain.ArrangementRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	req, err := ParseRequest(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return req, nil
}

// ParseRequest decodes a request. Unknown fields are rejected so that typos
// in optional fields do not pass silently.
func ParseRequest(data []byte, format Format) (*domain.ArrangementRequest, error) {
	var req domain.ArrangementRequest
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, errors.New("empty request")
			}
			return nil, err
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, errors.New("empty request")
			}
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	return &req, nil
}

// WriteRequest encodes req in the given format.
func WriteRequest(w io.Writer, req *domain.ArrangementRequest, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(req); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(req)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}
