package io

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/ziptree/pkg/snarl"
)

// Sentinel errors for workload files.
var (
	// ErrUnknownFormat is returned for file extensions or format names
	// other than toml and json.
	ErrUnknownFormat = errors.New("unknown workload format")

	// ErrUnknownKey is returned when a TOML workload has keys the model
	// does not define.
	ErrUnknownKey = errors.New("unknown key")

	// ErrEmpty is returned for a workload without nodes or chains.
	ErrEmpty = errors.New("workload defines no nodes")
)

// WriteTOML encodes m as TOML and writes it to w. The output can be read
// back with [ReadTOML].
func WriteTOML(m snarl.Model, w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(m); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteJSON encodes m as indented JSON and writes it to w.
func WriteJSON(m snarl.Model, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Write encodes m in the given format.
func Write(m snarl.Model, w io.Writer, f Format) error {
	switch f {
	case FormatTOML:
		return WriteTOML(m, w)
	case FormatJSON:
		return WriteJSON(m, w)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// ExportFile writes m to path in the format implied by its extension.
func ExportFile(path string, m snarl.Model) error {
	f, err := FormatOf(path)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(m, file, f); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
