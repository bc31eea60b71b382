// Package datum provides the fixed table of geodetic datum names a project
// file's DATUM directive may reference.
package datum

import (
	_ "embed"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed datum.yaml
var rawTable []byte

// Entry is a single recognised datum name.
type Entry struct {
	Name string `yaml:"name"`
}

type table struct {
	Datums []Entry `yaml:"datums"`
}

var (
	byNormalizedName map[string]string
	byExactName      map[string]bool
	orderedNames     []string
)

func init() {
	var t table
	if err := yaml.Unmarshal(rawTable, &t); err != nil {
		panic("internal/datum: malformed embedded table: " + err.Error())
	}
	byNormalizedName = make(map[string]string, len(t.Datums))
	byExactName = make(map[string]bool, len(t.Datums))
	orderedNames = make([]string, 0, len(t.Datums))
	for _, e := range t.Datums {
		byNormalizedName[normalize(e.Name)] = e.Name
		byExactName[e.Name] = true
		orderedNames = append(orderedNames, e.Name)
	}
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Default is the datum Compass assumes when a project omits DATUM.
const Default = "WGS 1984"

// IsRecognized reports whether value matches one of the recognised datum
// names exactly, byte for byte. This is the comparison the project parser
// uses for its DATUM directive, which is defined case-sensitively.
func IsRecognized(value string) bool {
	return byExactName[value]
}

// Lookup normalizes value (case and whitespace insensitive) and returns the
// canonical datum name plus whether it was recognised under that looser
// match. Callers that must honor the project file's case-sensitive DATUM
// rule should use IsRecognized instead; Lookup exists for callers (such as
// a future CLI's --datum flag) that want forgiving matching.
func Lookup(value string) (string, bool) {
	name, ok := byNormalizedName[normalize(value)]
	return name, ok
}

// Known reports whether value names a recognised datum under the loose,
// case-insensitive match. See IsRecognized for the project file's strict
// rule.
func Known(value string) bool {
	_, ok := Lookup(value)
	return ok
}

// All returns every recognised datum name, in table order.
func All() []string {
	return append([]string(nil), orderedNames...)
}
