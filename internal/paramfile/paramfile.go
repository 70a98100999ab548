// Package paramfile builds parameter trees from TOML files and
// "key=value" command line fields. String values starting with '@' name
// files whose content is uploaded as a file part.
package paramfile

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/tomasbasham/mpform"
)

// Set is a parameter tree together with the files opened to populate it.
// Close must be called once the tree has been encoded.
type Set struct {
	Tree  mpform.Tree
	files []*os.File
}

// New returns an empty Set.
func New() *Set {
	return &Set{}
}

// Load parses the TOML file at path into a new Set. Tables become nested
// trees and arrays become trees keyed by index. Keys are emitted in sorted
// order at every level.
func Load(path string) (*Set, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc map[string]interface{}
	if err := toml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	s := New()
	v, err := s.resolve(doc)
	if err != nil {
		s.Close()
		return nil, err
	}
	tree, err := mpform.Marshal(v)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Tree = tree
	return s, nil
}

// AddField parses spec as "key=value" or "key=@path" and appends it to the
// tree. The key is used verbatim, so "user[name]=bob" is accepted.
func (s *Set) AddField(spec string) error {
	key, value, ok := strings.Cut(spec, "=")
	if !ok || key == "" {
		return fmt.Errorf("invalid field %q: want key=value or key=@path", spec)
	}

	v, err := s.resolve(value)
	if err != nil {
		return err
	}
	switch v := v.(type) {
	case *os.File:
		s.Tree.AddFile(key, v)
	default:
		s.Tree.AddString(key, value)
	}
	return nil
}

// Close closes every file opened by the Set.
func (s *Set) Close() error {
	var errs []error
	for _, f := range s.files {
		if err := f.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.files = nil
	return errors.Join(errs...)
}

// resolve walks a decoded TOML value, opening '@' file references and
// converting date and time values to their textual form.
func (s *Set) resolve(v interface{}) (interface{}, error) {
	switch v := v.(type) {
	case map[string]interface{}:
		for k, child := range v {
			r, err := s.resolve(child)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			v[k] = r
		}
		return v, nil
	case []interface{}:
		for i, child := range v {
			r, err := s.resolve(child)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			v[i] = r
		}
		return v, nil
	case string:
		path, ok := strings.CutPrefix(v, "@")
		if !ok {
			return v, nil
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		s.files = append(s.files, f)
		return f, nil
	case time.Time:
		return v.Format(time.RFC3339Nano), nil
	case fmt.Stringer:
		// toml.LocalDate, LocalTime and LocalDateTime.
		return v.String(), nil
	default:
		return v, nil
	}
}
