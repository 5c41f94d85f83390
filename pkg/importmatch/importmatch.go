// Package importmatch compiles wildcard import patterns into name predicates.
//
// A pattern is a literal prefix followed by zero, one or two trailing '*'
// characters:
//
//	pkg.One     exact match only
//	pkg.*       any name in the same segment as the prefix ("pkg.One", not "pkg.sub.Two")
//	pkg*        the same, the delimiter may directly follow the prefix ("pkg.One", "pkgX")
//	pkg.**      any name starting with the prefix, at any depth
//
// The segment delimiter depends on the naming scheme: '.' for unit names
// ([CompileUnit]) and '/' for resource paths ([CompileResource]). A '*'
// anywhere else in the pattern, or a trailing run of three or more, is
// rejected with an [errors.InvalidPatternError].
package importmatch

import (
	"regexp"
	"strings"

	"github.com/matzehuels/scopegraph/pkg/errors"
)

// Segment delimiters for the two naming schemes.
const (
	UnitDelimiter     = '.'
	ResourceDelimiter = '/'
)

const (
	wildcard       = "*"
	doubleWildcard = "**"
)

var validPattern = regexp.MustCompile(`^[^*]*[*]{0,2}$`)

// Matcher decides whether a candidate name is covered by an import pattern.
type Matcher interface {
	Accepts(name string) bool
	// Pattern returns the source pattern the matcher was compiled from.
	Pattern() string
}

// CompileUnit compiles a pattern over '.'-delimited unit names.
func CompileUnit(pattern string) (Matcher, error) {
	return Compile(pattern, UnitDelimiter)
}

// CompileResource compiles a pattern over '/'-delimited resource paths.
func CompileResource(pattern string) (Matcher, error) {
	return Compile(pattern, ResourceDelimiter)
}

// Compile compiles pattern using delim as the segment delimiter for
// single-wildcard matches.
func Compile(pattern string, delim byte) (Matcher, error) {
	if !validPattern.MatchString(pattern) {
		return nil, &errors.InvalidPatternError{
			Pattern: pattern,
			Reason:  "wildcards are only allowed as a trailing '*' or '**'",
		}
	}
	switch {
	case strings.HasSuffix(pattern, doubleWildcard):
		return deep{pattern: pattern, prefix: strings.TrimSuffix(pattern, doubleWildcard)}, nil
	case strings.HasSuffix(pattern, wildcard):
		return segment{pattern: pattern, prefix: strings.TrimSuffix(pattern, wildcard), delim: delim}, nil
	default:
		return exact{pattern: pattern}, nil
	}
}

// MustCompile is like [Compile] but panics on an invalid pattern.
func MustCompile(pattern string, delim byte) Matcher {
	m, err := Compile(pattern, delim)
	if err != nil {
		panic(err)
	}
	return m
}

type exact struct {
	pattern string
}

func (m exact) Accepts(name string) bool { return name == m.pattern }
func (m exact) Pattern() string          { return m.pattern }

// segment matches names that share the prefix and have no delimiter past
// the prefix's end. A delimiter directly at the end of the prefix is allowed,
// so "pkg*" covers "pkg.One".
type segment struct {
	pattern string
	prefix  string
	delim   byte
}

func (m segment) Accepts(name string) bool {
	if !strings.HasPrefix(name, m.prefix) {
		return false
	}
	return strings.LastIndexByte(name, m.delim) <= len(m.prefix)
}

func (m segment) Pattern() string { return m.pattern }

type deep struct {
	pattern string
	prefix  string
}

func (m deep) Accepts(name string) bool { return strings.HasPrefix(name, m.prefix) }
func (m deep) Pattern() string          { return m.pattern }
