package component

import (
	"fmt"
	"strings"

	"github.com/c360/pipekit/errors"
)

// FactoryKey is a parsed factory identifier: a scheme, an optional
// namespace, and a name. The textual form is "scheme:namespace#name"
// (for example "egg:pipekit#recon") or "scheme:name" when the namespace
// is omitted. Two keys are equal iff all three fields match, which makes
// FactoryKey usable directly as a registry map key.
type FactoryKey struct {
	Scheme    string
	Namespace string
	Name      string
}

// ParseFactoryKey parses the textual form of a factory identifier.
// Malformed input (no colon, empty scheme or name, embedded whitespace)
// fails with ErrUnresolvedUse.
func ParseFactoryKey(s string) (FactoryKey, error) {
	if strings.ContainsAny(s, " \t\n") {
		return FactoryKey{}, fmt.Errorf("%w: %q contains whitespace", errors.ErrUnresolvedUse, s)
	}

	scheme, rest, ok := strings.Cut(s, ":")
	if !ok || scheme == "" || rest == "" {
		return FactoryKey{}, fmt.Errorf("%w: %q is not scheme:namespace#name", errors.ErrUnresolvedUse, s)
	}

	namespace, name, ok := strings.Cut(rest, "#")
	if !ok {
		// Namespace is optional: "scheme:name".
		return FactoryKey{Scheme: scheme, Name: rest}, nil
	}
	if namespace == "" || name == "" {
		return FactoryKey{}, fmt.Errorf("%w: %q has an empty namespace or name", errors.ErrUnresolvedUse, s)
	}
	return FactoryKey{Scheme: scheme, Namespace: namespace, Name: name}, nil
}

// MustFactoryKey is ParseFactoryKey for registration call sites with
// literal identifiers; it panics on malformed input.
func MustFactoryKey(s string) FactoryKey {
	key, err := ParseFactoryKey(s)
	if err != nil {
		panic(err)
	}
	return key
}

// String returns the canonical textual form.
func (k FactoryKey) String() string {
	if k.Namespace == "" {
		return k.Scheme + ":" + k.Name
	}
	return k.Scheme + ":" + k.Namespace + "#" + k.Name
}

// IsZero reports whether the key is empty.
func (k FactoryKey) IsZero() bool {
	return k == FactoryKey{}
}
