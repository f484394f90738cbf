/*
Copyright 2026 The Flux authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package attribute

import "fmt"

// CompatibilityRule reports whether a candidate value is acceptable
// for a requested value of the same attribute.
type CompatibilityRule func(requested, candidate string) bool

// MatchOutcome is the result of selecting a candidate.
type MatchOutcome int

const (
	// NoMatch means none of the candidates is compatible.
	NoMatch MatchOutcome = iota
	// Matched means exactly one best candidate was found.
	Matched
	// Ambiguous means several candidates are equally good.
	Ambiguous
)

func (o MatchOutcome) String() string {
	switch o {
	case Matched:
		return "matched"
	case Ambiguous:
		return "ambiguous"
	default:
		return "no match"
	}
}

// Matcher selects the best candidate attribute set for a request.
type Matcher struct {
	rules map[Attribute]CompatibilityRule
}

// DefaultMatcher knows the compatibility rules of the Java ecosystem:
// a consumer asking for the api of a library accepts its runtime.
var DefaultMatcher = NewMatcher(map[Attribute]CompatibilityRule{
	Usage: func(requested, candidate string) bool {
		return requested == candidate ||
			(requested == UsageJavaAPI && candidate == UsageJavaRuntime)
	},
})

// NewMatcher returns a Matcher with the given per attribute rules.
// Attributes without a rule are compared for equality.
func NewMatcher(rules map[Attribute]CompatibilityRule) *Matcher {
	m := &Matcher{rules: make(map[Attribute]CompatibilityRule, len(rules))}
	for k, r := range rules {
		m.rules[k] = r
	}
	return m
}

// Compatible reports whether the candidate can satisfy the request.
// Attributes the candidate does not declare never disqualify it.
func (m *Matcher) Compatible(requested, candidate Container) bool {
	for k, want := range requested.values {
		got, ok := candidate.values[k]
		if !ok {
			continue
		}
		if !m.compatibleValue(k, want, got) {
			return false
		}
	}
	return true
}

func (m *Matcher) compatibleValue(key Attribute, requested, candidate string) bool {
	if rule, ok := m.rules[key]; ok {
		return rule(requested, candidate)
	}
	return requested == candidate
}

type score struct {
	exact   int
	missing int
	extra   int
}

func (s score) better(o score) bool {
	if s.exact != o.exact {
		return s.exact > o.exact
	}
	if s.missing != o.missing {
		return s.missing < o.missing
	}
	return s.extra < o.extra
}

func (m *Matcher) score(requested, candidate Container) score {
	var s score
	for k, want := range requested.values {
		got, ok := candidate.values[k]
		switch {
		case !ok:
			s.missing++
		case got == want:
			s.exact++
		}
	}
	for k := range candidate.values {
		if !requested.Has(k) {
			s.extra++
		}
	}
	return s
}

// Select returns the index of the best compatible candidate.
// Among compatible candidates it prefers exact value matches, then the
// fewest requested attributes missing, then the fewest extra attributes.
// The index is -1 unless the outcome is Matched.
func (m *Matcher) Select(requested Container, candidates []Container) (int, MatchOutcome) {
	best := -1
	var bestScore score
	tie := false
	for i, c := range candidates {
		if !m.Compatible(requested, c) {
			continue
		}
		s := m.score(requested, c)
		switch {
		case best == -1 || s.better(bestScore):
			best, bestScore, tie = i, s, false
		case !bestScore.better(s):
			tie = true
		}
	}
	switch {
	case best == -1:
		return -1, NoMatch
	case tie:
		return -1, Ambiguous
	default:
		return best, Matched
	}
}

// MatchError describes why no single candidate could be selected.
type MatchError struct {
	Requested  Container
	Outcome    MatchOutcome
	Candidates []string
}

func (e *MatchError) Error() string {
	return fmt.Sprintf("%s for attributes %s among variants %q", e.Outcome, e.Requested, e.Candidates)
}
