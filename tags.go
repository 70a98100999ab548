package mpform

import (
	"reflect"
	"strings"
	"sync"
)

// fieldTagCache maps a struct [reflect.Type] to its parsed []fieldTag, one
// entry per struct field. It is safe for concurrent use.
var fieldTagCache sync.Map

type fieldTag struct {
	Name      string
	OmitEmpty bool
	Skip      bool
}

func tags(v reflect.Value) []fieldTag {
	t := reflect.Indirect(v).Type()
	if t.Kind() != reflect.Struct {
		return nil
	}

	if cached, ok := fieldTagCache.Load(t); ok {
		return cached.([]fieldTag)
	}

	out := make([]fieldTag, t.NumField())
	for i := range out {
		f := t.Field(i)

		// Unexported fields cannot be read through reflection.
		if !f.IsExported() {
			out[i] = fieldTag{Skip: true}
			continue
		}

		tag := parseTag(f.Tag.Get("form"))
		if !tag.Skip && tag.Name == "" {
			tag.Name = f.Name
		}
		out[i] = tag
	}

	fieldTagCache.Store(t, out)
	return out
}

// parseTag parses a "form" struct tag of the form "name,opt1,opt2". A name of
// "-" skips the field; recognised options are "omitempty" and "ignore".
func parseTag(str string) fieldTag {
	name, opts, _ := strings.Cut(strings.TrimSpace(str), ",")

	var tag fieldTag
	if name = strings.TrimSpace(name); name == "-" {
		tag.Skip = true
		return tag
	}
	tag.Name = name

	for opts != "" {
		var opt string
		opt, opts, _ = strings.Cut(opts, ",")
		switch strings.TrimSpace(opt) {
		case "omitempty":
			tag.OmitEmpty = true
		case "ignore":
			tag.Skip = true
		}
	}
	return tag
}
