package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/c360/pipekit/errors"
)

// DefaultSection is the distinguished section whose entries are inherited
// by every other section unless overridden.
const DefaultSection = "DEFAULT"

// Section is a named block of key/value configuration. Key order is
// preserved from the source text. Sections are immutable after parse.
type Section struct {
	// Name is the qualified section name as written, e.g. "filter:recon",
	// "app:container-server", or "container-replicator".
	Name string

	keys   []string
	values map[string]string
}

// Kind returns the part of the section name before the first colon.
// For bare names like "container-replicator" the whole name is the kind.
func (s *Section) Kind() string {
	kind, _, _ := strings.Cut(s.Name, ":")
	return kind
}

// Instance returns the part of the section name after the first colon,
// or the empty string for bare section names.
func (s *Section) Instance() string {
	_, instance, _ := strings.Cut(s.Name, ":")
	return instance
}

// Keys returns the section's keys in source order.
func (s *Section) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Get returns the raw value for key and whether it is present.
// Lookups are exact-match and case-sensitive.
func (s *Section) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Settings returns a copy of the section's own entries with no DEFAULT
// overlay applied.
func (s *Section) Settings() Settings {
	out := make(Settings, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

func (s *Section) set(key, value string) {
	if _, exists := s.values[key]; !exists {
		s.keys = append(s.keys, key)
	}
	// Last occurrence wins, matching the loader the conf format comes from.
	s.values[key] = value
}

func (s *Section) appendContinuation(key, fragment string) {
	s.values[key] = s.values[key] + "\n" + fragment
}

// Document is an ordered collection of named configuration sections parsed
// from a single text input. It is immutable after Parse; reconfiguration
// requires a fresh Parse.
type Document struct {
	sections map[string]*Section
	order    []string
	defaults *Section
}

// Parse splits text into sections delimited by [kind:instance] or [kind]
// headers. Blank lines and lines whose first non-blank character is '#' or
// ';' are ignored. A key/value line uses '=' or ':' as separator; an
// indented line continues the previous value. Parse fails with a ParseError
// on a malformed header, a key/value line outside any section, a separator-
// less line, or a duplicate section name.
func Parse(text string) (*Document, error) {
	return ParseReader(strings.NewReader(text))
}

// ParseReader is Parse over an io.Reader.
func ParseReader(r io.Reader) (*Document, error) {
	doc := &Document{
		sections: make(map[string]*Section),
	}

	var (
		current *Section
		lastKey string
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		line := strings.TrimRight(raw, " \t\r")

		if strings.TrimSpace(line) == "" {
			lastKey = ""
			continue
		}

		trimmed := strings.TrimLeft(line, " \t")
		if trimmed[0] == '#' || trimmed[0] == ';' {
			continue
		}

		// Indented lines continue the previous value.
		if line[0] == ' ' || line[0] == '\t' {
			if current == nil || lastKey == "" {
				return nil, errors.NewParseError(lineNo, "continuation line without a preceding key: %q", trimmed)
			}
			current.appendContinuation(lastKey, trimmed)
			continue
		}

		if line[0] == '[' {
			name, err := parseHeader(line, lineNo)
			if err != nil {
				return nil, err
			}
			if _, exists := doc.sections[name]; exists {
				return nil, errors.NewParseError(lineNo, "duplicate section %q", name)
			}
			current = &Section{Name: name, values: make(map[string]string)}
			doc.sections[name] = current
			if name == DefaultSection {
				doc.defaults = current
			} else {
				doc.order = append(doc.order, name)
			}
			lastKey = ""
			continue
		}

		key, value, err := parseEntry(line, lineNo)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, errors.NewParseError(lineNo, "entry %q outside any section", key)
		}
		current.set(key, value)
		lastKey = key
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.NewParseError(lineNo, "read input: %v", err)
	}

	return doc, nil
}

// ParseFile reads and parses the configuration file at path.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "Document", "ParseFile", "open configuration file")
	}
	defer f.Close()

	doc, err := ParseReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func parseHeader(line string, lineNo int) (string, error) {
	if !strings.HasSuffix(line, "]") {
		return "", errors.NewParseError(lineNo, "unterminated section header %q", line)
	}
	name := strings.TrimSpace(line[1 : len(line)-1])
	if name == "" {
		return "", errors.NewParseError(lineNo, "empty section header")
	}
	if strings.ContainsAny(name, "[]") {
		return "", errors.NewParseError(lineNo, "invalid section header %q", line)
	}
	return name, nil
}

func parseEntry(line string, lineNo int) (key, value string, err error) {
	// The separator is whichever of '=' or ':' appears first.
	eq := strings.IndexByte(line, '=')
	colon := strings.IndexByte(line, ':')
	sep := eq
	if sep < 0 || (colon >= 0 && colon < sep) {
		sep = colon
	}
	if sep < 0 {
		return "", "", errors.NewParseError(lineNo, "entry without '=' or ':' separator: %q", line)
	}

	key = strings.TrimSpace(line[:sep])
	if key == "" {
		return "", "", errors.NewParseError(lineNo, "entry with empty key: %q", line)
	}
	return key, strings.TrimSpace(line[sep+1:]), nil
}

// HasSection reports whether the named section exists. DEFAULT counts.
func (d *Document) HasSection(name string) bool {
	_, ok := d.sections[name]
	return ok
}

// Section returns the named section, or ErrSectionNotFound.
func (d *Document) Section(name string) (*Section, error) {
	s, ok := d.sections[name]
	if !ok {
		return nil, fmt.Errorf("section %q: %w", name, errors.ErrSectionNotFound)
	}
	return s, nil
}

// SectionNames returns all non-DEFAULT section names in source order.
func (d *Document) SectionNames() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Defaults returns the DEFAULT section's entries, or an empty Settings if
// the document has no DEFAULT section.
func (d *Document) Defaults() Settings {
	if d.defaults == nil {
		return Settings{}
	}
	return d.defaults.Settings()
}

// Effective returns the DEFAULT section's entries overlaid by the named
// section's own entries. The section's values strictly win on key
// collision. The overlay is computed fresh on every call; the document
// itself never changes after parse.
func (d *Document) Effective(name string) (Settings, error) {
	s, err := d.Section(name)
	if err != nil {
		return nil, err
	}

	merged := d.Defaults()
	for k, v := range s.values {
		merged[k] = v
	}
	return merged, nil
}
