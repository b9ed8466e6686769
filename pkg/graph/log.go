package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Log Serialization API
// =============================================================================

// MarshalLog converts a Log to indented JSON bytes.
func MarshalLog(l Log) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteLog(l, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalLog decodes and validates JSON bytes.
func UnmarshalLog(data []byte) (Log, error) {
	return ReadLog(bytes.NewReader(data))
}

// WriteLogFile writes a Log to a JSON file.
// The file is created with 0644 permissions.
func WriteLogFile(l Log, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteLog(l, f)
}

// WriteLog writes a Log as JSON to an io.Writer.
func WriteLog(l Log, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadLogFile reads and validates a JSON log file.
func ReadLogFile(path string) (Log, error) {
	f, err := os.Open(path)
	if err != nil {
		return Log{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadLog(f)
}

// ReadLog decodes and validates a JSON log from an io.Reader.
func ReadLog(r io.Reader) (Log, error) {
	var l Log
	if err := json.NewDecoder(r).Decode(&l); err != nil {
		return Log{}, fmt.Errorf("decode: %w", err)
	}
	if err := l.Validate(); err != nil {
		return Log{}, err
	}
	return l, nil
}
