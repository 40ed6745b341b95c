package option

import (
	"fmt"
	"strings"
)

// Kind tags the value domain of an option.
type Kind string

const (
	KindText    Kind = "text"
	KindInteger Kind = "integer"
	KindBoolean Kind = "boolean"
	KindChoice  Kind = "choice"
)

// kindAliases maps the field-type names used by CMS admin forms onto kinds.
var kindAliases = map[string]Kind{
	"radios":   KindChoice,
	"select":   KindChoice,
	"string":   KindText,
	"int":      KindInteger,
	"bool":     KindBoolean,
	"checkbox": KindBoolean,
}

// ParseKind resolves a kind name or one of its aliases, case-insensitively.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if k := Kind(name); k.Valid() {
		return k, nil
	}
	if k, ok := kindAliases[name]; ok {
		return k, nil
	}
	return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidDefinition, s)
}

// Valid reports whether k is one of the four canonical kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindText, KindInteger, KindBoolean, KindChoice:
		return true
	}
	return false
}

func (k Kind) String() string { return string(k) }
