// Package persist provides helpers for loading and saving JSON-encoded
// state to disk with a header/version check, so callers can detect and
// reject files written by an incompatible version of the program.
package persist

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Metadata identifies the contents and version of a persisted file.
type Metadata struct {
	Header  string
	Version string
}

// ErrBadHeader is returned when a persisted file's header does not match
// the expected value.
var ErrBadHeader = errors.New("persist: unexpected file header")

// ErrBadVersion is returned when a persisted file's version does not match
// the expected value.
var ErrBadVersion = errors.New("persist: unexpected file version")

type jsonFile struct {
	Metadata
	Data json.RawMessage
}

// SaveJSON writes object to filename as JSON, tagged with meta, using a
// temp-file-then-rename so a crash mid-write never leaves a corrupt file in
// place.
func SaveJSON(meta Metadata, object interface{}, filename string) error {
	data, err := json.MarshalIndent(object, "", "\t")
	if err != nil {
		return err
	}
	wrapped, err := json.MarshalIndent(jsonFile{meta, data}, "", "\t")
	if err != nil {
		return err
	}

	dir := filepath.Dir(filename)
	tmp, err := os.CreateTemp(dir, filepath.Base(filename)+".tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(wrapped); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), filename)
}

// LoadJSON reads filename, verifies it was tagged with meta, and decodes its
// contents into object.
func LoadJSON(meta Metadata, object interface{}, filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	var wrapped jsonFile
	if err := json.NewDecoder(f).Decode(&wrapped); err != nil {
		return err
	}
	if wrapped.Header != meta.Header {
		return ErrBadHeader
	}
	if wrapped.Version != meta.Version {
		return ErrBadVersion
	}
	return json.Unmarshal(wrapped.Data, object)
}
