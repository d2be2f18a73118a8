package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/ziptree/pkg/snarl"
)

// Format is a workload file format.
type Format string

// Supported workload formats.
const (
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatOf returns the format implied by the extension of path.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
}

// ReadTOML decodes a workload from r and checks that it compiles.
//
// Keys the model does not know are rejected, so a misspelled field fails
// loudly instead of silently defaulting:
//
//	[[chain]]
//	name = "chr1"
//	root = true
//	childern = ["n1"]   # error: unknown key chain.childern
//
// ReadTOML does not close r.
func ReadTOML(r io.Reader) (snarl.Model, error) {
	var m snarl.Model
	md, err := toml.NewDecoder(r).Decode(&m)
	if err != nil {
		return snarl.Model{}, fmt.Errorf("decode: %w", err)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return snarl.Model{}, fmt.Errorf("decode: %w: %s", ErrUnknownKey, keys[0])
	}
	return m, check(m)
}

// ReadJSON decodes a workload from r and checks that it compiles. Unknown
// fields are rejected. ReadJSON does not close r.
func ReadJSON(r io.Reader) (snarl.Model, error) {
	var m snarl.Model
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return snarl.Model{}, fmt.Errorf("decode: %w", err)
	}
	return m, check(m)
}

// Read decodes a workload in the given format.
func Read(r io.Reader, f Format) (snarl.Model, error) {
	switch f {
	case FormatTOML:
		return ReadTOML(r)
	case FormatJSON:
		return ReadJSON(r)
	}
	return snarl.Model{}, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// ImportFile reads the workload at path, choosing the format from the file
// extension. Errors carry the path for context.
func ImportFile(path string) (snarl.Model, error) {
	f, err := FormatOf(path)
	if err != nil {
		return snarl.Model{}, err
	}
	file, err := os.Open(path)
	if err != nil {
		return snarl.Model{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	m, err := Read(file, f)
	if err != nil {
		return snarl.Model{}, fmt.Errorf("%s: %w", path, err)
	}
	if m.Name == "" {
		m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return m, nil
}

// check compiles m and resolves its seeds so structural errors surface at
// read time.
func check(m snarl.Model) error {
	if len(m.Chains) == 0 && len(m.Nodes) == 0 {
		return ErrEmpty
	}
	if _, _, err := snarl.Load(m); err != nil {
		return fmt.Errorf("invalid workload: %w", err)
	}
	return nil
}
