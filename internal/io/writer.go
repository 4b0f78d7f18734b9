package io

import (
	"encoding/json"
	"os"
)

// WriteJSON writes v to filename as indented JSON. An empty filename writes
// to stdout instead.
func WriteJSON(filename string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if filename == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(filename, data, 0644)
}
