package builder

import (
	"reflect"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// ErrIndexRequired is returned when no index name can be resolved.
	ErrIndexRequired = errors.New("builder: index name is required")
	// ErrInvalidIndexName is returned when a resolved name breaks index naming rules.
	ErrInvalidIndexName = errors.New("builder: invalid index name")
)

const maxIndexNameBytes = 255

// IndexResolver canonicalizes raw index names. Implementations must be
// deterministic and free of side effects.
type IndexResolver interface {
	Resolve(raw string) (string, error)
}

// IndexResolverFunc adapts a function to the IndexResolver interface.
type IndexResolverFunc func(raw string) (string, error)

// Resolve implements IndexResolver.
func (f IndexResolverFunc) Resolve(raw string) (string, error) {
	return f(raw)
}

// Casers are stateful and not safe for concurrent use.
func lower() cases.Caser { return cases.Lower(language.Und) }

// Convention derives an index name from a document type: the type name in
// lower snake case, so OrderLine becomes order_line. Pointer, slice and
// generic decorations are stripped.
func Convention(t reflect.Type) string {
	for t != nil && (t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice) {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	name, _, _ := strings.Cut(t.Name(), "[")
	return lower().String(snake(name))
}

// ConventionOf is Convention for a type parameter.
func ConventionOf[T any]() string {
	return Convention(reflect.TypeOf((*T)(nil)).Elem())
}

func snake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prevLower := !unicode.IsUpper(runes[i-1]) && runes[i-1] != '_'
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || (nextLower && unicode.IsUpper(runes[i-1])) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}

// PrefixResolver lower-cases names, prepends prefix and validates the result.
// A prefix without a trailing separator is joined with "-".
func PrefixResolver(prefix string) IndexResolver {
	prefix = lower().String(strings.TrimSpace(prefix))
	if prefix != "" && !strings.ContainsAny(prefix[len(prefix)-1:], "-_.") {
		prefix += "-"
	}
	return IndexResolverFunc(func(raw string) (string, error) {
		name := lower().String(strings.TrimSpace(raw))
		if name == "" {
			return "", ErrIndexRequired
		}
		if !strings.HasPrefix(name, prefix) {
			name = prefix + name
		}
		if err := ValidateIndexName(name); err != nil {
			return "", err
		}
		return name, nil
	})
}

// ValidateSearchTarget checks a search target: one or more comma separated
// index names, each of which may contain "*" wildcards.
func ValidateSearchTarget(target string) error {
	for _, part := range strings.Split(target, ",") {
		if part == "" {
			return errors.Wrapf(ErrInvalidIndexName, "%q has an empty index", target)
		}
		if part == "*" {
			continue
		}
		if err := ValidateIndexName(strings.ReplaceAll(part, "*", "x")); err != nil {
			return errors.Wrapf(ErrInvalidIndexName, "%q", part)
		}
	}
	return nil
}

// ValidateIndexName checks Elasticsearch index naming rules.
func ValidateIndexName(name string) error {
	switch {
	case name == "":
		return ErrIndexRequired
	case name == "." || name == "..":
		return errors.Wrapf(ErrInvalidIndexName, "%q", name)
	case len(name) > maxIndexNameBytes:
		return errors.Wrapf(ErrInvalidIndexName, "%q is longer than %d bytes", name, maxIndexNameBytes)
	case strings.ContainsAny(name[:1], "-_+"):
		return errors.Wrapf(ErrInvalidIndexName, "%q starts with %q", name, name[:1])
	case strings.ContainsAny(name, `\/*?"<>| ,#:`):
		return errors.Wrapf(ErrInvalidIndexName, "%q contains a reserved character", name)
	case lower().String(name) != name:
		return errors.Wrapf(ErrInvalidIndexName, "%q must be lowercase", name)
	}
	return nil
}
