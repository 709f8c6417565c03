// Package field resolves document field references from raw names or typed
// struct accessors.
package field

import (
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"
)

var (
	// ErrNilAccessor is returned when a typed accessor is nil.
	ErrNilAccessor = errors.New("field: accessor cannot be nil")
	// ErrNotStruct is returned when a typed accessor is declared on a non-struct type.
	ErrNotStruct = errors.New("field: document type must be a struct")
	// ErrUnknownField is returned when an accessor does not address a field of its document.
	ErrUnknownField = errors.New("field: accessor does not address a document field")
	// ErrEmptyName is returned for blank raw field names.
	ErrEmptyName = errors.New("field: name cannot be empty")
)

// KeywordSuffix is the conventional exact-match sub-field of analyzed text fields.
const KeywordSuffix = "keyword"

// Ref is an immutable canonical field identifier.
type Ref struct {
	name   string
	suffix string
}

// Name builds a reference from a raw, possibly dotted, field name.
func Name(name string) Ref {
	return Ref{name: strings.TrimSpace(name)}
}

// Parse is like Name but rejects blank names.
func Parse(name string) (Ref, error) {
	ref := Name(name)
	if ref.name == "" {
		return Ref{}, ErrEmptyName
	}
	return ref, nil
}

// Names converts raw names into references, skipping blanks.
func Names(names ...string) []Ref {
	refs := make([]Ref, 0, len(names))
	for _, n := range names {
		if ref := Name(n); !ref.IsZero() {
			refs = append(refs, ref)
		}
	}
	return refs
}

// Path returns the field path without any suffix.
func (r Ref) Path() string { return r.name }

// Suffix returns a copy of r that targets the given sub-field.
func (r Ref) Suffix(suffix string) Ref {
	r.suffix = strings.Trim(suffix, ". ")
	return r
}

// Keyword returns a copy of r targeting the exact-match keyword sub-field.
func (r Ref) Keyword() Ref { return r.Suffix(KeywordSuffix) }

// Dot appends child to the path of r. The suffix of child is kept.
func (r Ref) Dot(child Ref) Ref {
	switch {
	case r.name == "":
		return child
	case child.name == "":
		return r
	}
	return Ref{name: r.name + "." + child.name, suffix: child.suffix}
}

// IsZero reports whether r has no name.
func (r Ref) IsZero() bool { return r.name == "" }

// String renders the canonical identifier sent to the backend.
func (r Ref) String() string {
	if r.suffix == "" || r.name == "" {
		return r.name
	}
	return r.name + "." + r.suffix
}

// Strings renders each reference.
func Strings(refs []Ref) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		if !r.IsZero() {
			out = append(out, r.String())
		}
	}
	return out
}

// Of resolves a typed accessor such as func(u *User) any { return &u.Name }.
// The accessor must return the address of a field of T, possibly nested.
func Of[T any](accessor func(*T) any) (Ref, error) {
	if accessor == nil {
		return Ref{}, ErrNilAccessor
	}
	doc := new(T)
	root := reflect.ValueOf(doc).Elem()
	if root.Kind() != reflect.Struct {
		return Ref{}, errors.Wrapf(ErrNotStruct, "got %s", root.Type())
	}

	allocate(root, map[reflect.Type]bool{root.Type(): true})

	out, err := call(accessor, doc)
	if err != nil {
		return Ref{}, errors.Wrapf(err, "%s", root.Type())
	}
	target := reflect.ValueOf(out)
	if target.Kind() != reflect.Pointer || target.IsNil() {
		return Ref{}, errors.Wrapf(ErrUnknownField, "%s accessor must return a field pointer", root.Type())
	}

	path, ok := locate(root, target.Pointer(), target.Type().Elem())
	if !ok {
		return Ref{}, errors.Wrapf(ErrUnknownField, "%s", root.Type())
	}
	return Ref{name: strings.Join(path, ".")}, nil
}

// MustOf is like Of but panics on error. Intended for package-level field tables.
func MustOf[T any](accessor func(*T) any) Ref {
	ref, err := Of(accessor)
	if err != nil {
		panic(err)
	}
	return ref
}

func call[T any](accessor func(*T) any, doc *T) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(ErrUnknownField, "accessor panicked: %v", r)
		}
	}()
	return accessor(doc), nil
}

// allocate fills nil pointer-to-struct fields so accessors can reach nested
// fields. Types already on the current path are left nil to stop recursion.
func allocate(v reflect.Value, path map[reflect.Type]bool) {
	for i := 0; i < v.NumField(); i++ {
		fv := v.Field(i)
		switch {
		case fv.Kind() == reflect.Struct:
			allocate(fv, path)
		case fv.CanSet() && fv.Kind() == reflect.Pointer && fv.IsNil() && fv.Type().Elem().Kind() == reflect.Struct:
			elem := fv.Type().Elem()
			if path[elem] {
				continue
			}
			fv.Set(reflect.New(elem))
			path[elem] = true
			allocate(fv.Elem(), path)
			delete(path, elem)
		}
	}
}

func locate(v reflect.Value, addr uintptr, typ reflect.Type) ([]string, bool) {
	st := v.Type()
	for i := 0; i < st.NumField(); i++ {
		sf := st.Field(i)
		if !sf.IsExported() && !sf.Anonymous {
			continue
		}
		name, skip := jsonName(sf)
		if skip {
			continue
		}
		fv := v.Field(i)
		start := fv.UnsafeAddr()
		if addr == start && sf.Type == typ {
			return []string{name}, true
		}
		inner := fv
		if fv.Kind() == reflect.Pointer && !fv.IsNil() && fv.Type().Elem().Kind() == reflect.Struct {
			inner = fv.Elem()
			start = inner.UnsafeAddr()
		}
		if inner.Kind() != reflect.Struct || addr < start || addr >= start+inner.Type().Size() {
			continue
		}
		sub, ok := locate(inner, addr, typ)
		if !ok {
			continue
		}
		if sf.Anonymous && !hasTagName(sf) {
			return sub, true
		}
		return append([]string{name}, sub...), true
	}
	return nil, false
}

func jsonName(sf reflect.StructField) (string, bool) {
	tag := sf.Tag.Get("json")
	if tag == "-" {
		return "", true
	}
	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name, false
	}
	return lowerCamel(sf.Name), false
}

func hasTagName(sf reflect.StructField) bool {
	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	return name != "" && name != "-"
}

func lowerCamel(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	// Leading acronyms such as "ID" or "URLPath" lower as a block.
	upper := 0
	for _, c := range s {
		if !unicode.IsUpper(c) {
			break
		}
		upper++
	}
	switch {
	case upper <= 1:
		return string(unicode.ToLower(r)) + s[size:]
	case upper == utf8.RuneCountInString(s):
		return strings.ToLower(s)
	default:
		runes := []rune(s)
		for i := 0; i < upper-1; i++ {
			runes[i] = unicode.ToLower(runes[i])
		}
		return string(runes)
	}
}
