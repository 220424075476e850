// Copyright © 2024 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package record

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a document format a match record can be stored in.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// FormatFromPath picks a Format from a file's extension, defaulting to
// JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	default:
		return JSON
	}
}

// Encode writes the exported match to w in the given format.
func Encode(w io.Writer, format Format, match *MatchRecord) error {
	doc := match.Export()

	switch format {
	case JSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(doc)

	case YAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(doc); err != nil {
			return err
		}

		return encoder.Close()

	default:
		return fmt.Errorf("record: unknown format %q", format)
	}
}

// Decode reads a match in the given format from r.
func Decode(r io.Reader, format Format) (*MatchRecord, error) {
	var doc map[string]any

	switch format {
	case JSON:
		decoder := json.NewDecoder(r)
		decoder.UseNumber()
		if err := decoder.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}

	case YAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}

	default:
		return nil, fmt.Errorf("record: unknown format %q", format)
	}

	return ImportMatch(doc)
}

// WriteFile encodes the match into the named file, in the format implied
// by its extension.
func WriteFile(path string, match *MatchRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := Encode(file, FormatFromPath(path), match); err != nil {
		_ = file.Close()
		return err
	}

	return file.Close()
}

// ReadFile decodes the match stored in the named file.
func ReadFile(path string) (*MatchRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	defer file.Close()
	return Decode(file, FormatFromPath(path))
}
