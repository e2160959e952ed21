package script

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// File is the on-disk form of a script.
type File struct {
	Title string `json:"title,omitempty" yaml:"title,omitempty" jsonschema:"title=Title,description=Name of the page the script belongs to"`
	Steps []Step `json:"steps" yaml:"steps" jsonschema:"title=Steps,description=Narrated steps in playback order,minItems=1"`
	// Elements declares the page elements a terminal host should simulate.
	Elements []Element `json:"elements,omitempty" yaml:"elements,omitempty" jsonschema:"title=Elements,description=Elements simulated when no browser is attached"`
}

type ElementKind string

const (
	ElementControl ElementKind = "control"
	ElementField   ElementKind = "field"
	ElementBlock   ElementKind = "block"
)

type Element struct {
	ID    string      `json:"id" yaml:"id" jsonschema:"title=Id"`
	Kind  ElementKind `json:"kind" yaml:"kind" jsonschema:"title=Kind,enum=control,enum=field,enum=block"`
	Label string      `json:"label,omitempty" yaml:"label,omitempty" jsonschema:"title=Label"`
	Value string      `json:"value,omitempty" yaml:"value,omitempty" jsonschema:"title=Initial value"`
}

// ReadFile reads a script file, picking the format from the extension.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script file: %w", err)
	}

	format := FormatYAML
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = FormatJSON
	}

	file, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return file, nil
}

// Decode parses a script and returns it with loaded, numbered steps.
func Decode(r io.Reader, format Format) (*File, error) {
	var file File
	switch format {
	case FormatJSON:
		decoder := json.NewDecoder(r)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&file); err != nil {
			return nil, fmt.Errorf("failed to unmarshal json script: %w", err)
		}
	case FormatYAML:
		decoder := yaml.NewDecoder(r)
		decoder.KnownFields(true)
		if err := decoder.Decode(&file); err != nil {
			return nil, fmt.Errorf("failed to unmarshal yaml script: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported script format %q", format)
	}

	steps, err := Load(file.Steps)
	if err != nil {
		return nil, err
	}
	file.Steps = steps

	return &file, nil
}

// Schema describes the script file format.
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.Reflect(&File{})
	schema.Title = "Walkthrough script"
	return schema
}
