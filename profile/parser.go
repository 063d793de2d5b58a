package profile

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parser decodes a parameter file into a flat parameter map.
type Parser interface {
	Parse(data []byte) (map[string]any, error)
}

// YAMLParser implements Parser for YAML documents.
type YAMLParser struct{}

// Parse unmarshals a YAML mapping.
func (YAMLParser) Parse(data []byte) (map[string]any, error) {
	params := make(map[string]any)
	if err := yaml.Unmarshal(data, &params); err != nil {
		return nil, err
	}
	return params, nil
}

// JSONParser implements Parser for JSON objects.
type JSONParser struct{}

// Parse unmarshals a JSON object.
func (JSONParser) Parse(data []byte) (map[string]any, error) {
	params := make(map[string]any)
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&params); err != nil {
		return nil, err
	}
	return params, nil
}

// KVParser implements Parser for "key = value" test configuration dumps.
// Blank lines and lines starting with # are ignored.
type KVParser struct{}

// Parse reads one assignment per line.
func (KVParser) Parse(data []byte) (map[string]any, error) {
	params := make(map[string]any)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("line %d: expected key = value", lineNo)
		}
		params[key] = strings.Trim(strings.TrimSpace(value), `"'`)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return params, nil
}

// ParserFor picks a parser by file extension.
func ParserFor(path string) (Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAMLParser{}, nil
	case ".json":
		return JSONParser{}, nil
	case ".cfg", ".conf", ".env", ".params":
		return KVParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}
