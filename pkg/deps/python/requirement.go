// Package python parses Python dependency declarations.
//
// A declaration is one entry of a package's Requires-Dist metadata, for
// example:
//
//	requests>=2.0
//	certifi>=2020.1; python_version<"3.8"
//	urllib3[socks] (>=1.21.1,<3)
//	pip @ https://example.com/pip.whl
//
// [ParseRequirement] accepts the PEP 508 shapes PyPI actually serves and
// returns a [Requirement]. Anything else is an UNPARSEABLE_DECLARATION error;
// the parser never guesses.
package python

import (
	"regexp"
	"strings"

	"github.com/matzehuels/pydepgraph/pkg/errors"
)

// Comparators recognised in version specifiers, longest first so that
// "===" is not read as "==" followed by "=".
var Comparators = []string{"===", "==", ">=", "<=", "~=", "!=", "<", ">"}

var (
	nameRE   = regexp.MustCompile(`^([A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?)`)
	extraRE  = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?$`)
	clauseRE = regexp.MustCompile(`^(===|==|>=|<=|~=|!=|<|>)([A-Za-z0-9.*+!_-]+)$`)
)

// Requirement is one normalized dependency declaration.
//
// Constraint is the version text after the leading comparator, which is what
// graph nodes show as "version": "requests>=2.0" has Comparator ">=" and
// Constraint "2.0"; "numpy>=1.22,<2" has Constraint "1.22,<2". Bare names
// and URL references have an empty Constraint.
type Requirement struct {
	Raw        string   // Declaration as given
	Name       string   // Distribution name as declared (not normalized)
	Extras     []string // Requested extras, in order (nil if none)
	Comparator string   // Leading comparator, "" if unconstrained
	Constraint string   // Version text after Comparator
	Specifier  string   // Full specifier without spaces, e.g. ">=1.22,<2"
	URL        string   // Direct reference for "name @ url" declarations
	Marker     string   // Environment marker after ';' (trimmed, may be empty)
}

// ParseRequirement parses a single dependency declaration.
//
// The environment marker (everything after the first ';') is split off and
// kept in Marker; it never affects Name or Constraint. The remainder must be
// a name, optional extras and either nothing, a specifier (optionally in
// parentheses) or an "@ url" reference.
func ParseRequirement(raw string) (Requirement, error) {
	req := Requirement{Raw: raw}

	body, marker, _ := strings.Cut(raw, ";")
	req.Marker = strings.TrimSpace(marker)
	body = strings.TrimSpace(body)
	if body == "" {
		return Requirement{}, unparseable(raw, "empty declaration")
	}

	m := nameRE.FindStringSubmatch(body)
	if m == nil {
		return Requirement{}, unparseable(raw, "no package name")
	}
	req.Name = m[1]
	rest := strings.TrimSpace(body[len(m[0]):])

	if strings.HasPrefix(rest, "[") {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return Requirement{}, unparseable(raw, "unterminated extras")
		}
		extras, err := parseExtras(rest[1:end])
		if err != nil {
			return Requirement{}, unparseable(raw, err.Error())
		}
		req.Extras = extras
		rest = strings.TrimSpace(rest[end+1:])
	}

	switch {
	case rest == "":
		return req, nil
	case strings.HasPrefix(rest, "@"):
		url := strings.TrimSpace(rest[1:])
		if url == "" || strings.ContainsAny(url, " \t") {
			return Requirement{}, unparseable(raw, "invalid direct reference")
		}
		req.URL = url
		return req, nil
	case strings.HasPrefix(rest, "("):
		if !strings.HasSuffix(rest, ")") {
			return Requirement{}, unparseable(raw, "unterminated version specifier")
		}
		rest = rest[1 : len(rest)-1]
	}

	spec, err := parseSpecifier(rest)
	if err != nil {
		return Requirement{}, unparseable(raw, err.Error())
	}
	req.Specifier = spec
	for _, op := range Comparators {
		if strings.HasPrefix(spec, op) {
			req.Comparator = op
			req.Constraint = spec[len(op):]
			break
		}
	}
	return req, nil
}

// parseSpecifier validates a comma-separated list of clauses and returns it
// with all whitespace removed.
func parseSpecifier(s string) (string, error) {
	spec := strings.Join(strings.Fields(s), "")
	if spec == "" {
		return "", errors.New(errors.ErrCodeUnparseableDeclaration, "empty version specifier")
	}
	for _, clause := range strings.Split(spec, ",") {
		if !clauseRE.MatchString(clause) {
			return "", errors.New(errors.ErrCodeUnparseableDeclaration, "invalid version clause %q", clause)
		}
	}
	return spec, nil
}

func parseExtras(s string) ([]string, error) {
	var extras []string
	for _, e := range strings.Split(s, ",") {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if !extraRE.MatchString(e) {
			return nil, errors.New(errors.ErrCodeUnparseableDeclaration, "invalid extra %q", e)
		}
		extras = append(extras, e)
	}
	return extras, nil
}

func unparseable(raw, reason string) error {
	return errors.New(errors.ErrCodeUnparseableDeclaration, "cannot parse dependency declaration %q: %s", raw, reason)
}

// String reassembles the declaration without its marker.
func (r Requirement) String() string {
	var b strings.Builder
	b.WriteString(r.Name)
	if len(r.Extras) > 0 {
		b.WriteString("[" + strings.Join(r.Extras, ",") + "]")
	}
	switch {
	case r.URL != "":
		b.WriteString(" @ " + r.URL)
	case r.Specifier != "":
		b.WriteString(r.Specifier)
	}
	return b.String()
}
