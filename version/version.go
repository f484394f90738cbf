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

package version

import (
	"sort"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ParseVersion parses a module version into a semver.Version. The
// validation is looser than the official semver spec, allowing for a 'v'
// prefix, missing minor and patch segments and 0-prefixed numbers
// (e.g. 1.0, 2025.02.03-rc.1 and 33.0.0-jre are valid).
func ParseVersion(v string) (*semver.Version, error) {
	if strings.TrimSpace(v) != v || v == "" {
		return nil, semver.ErrInvalidSemVer
	}
	return semver.NewVersion(v)
}

// Compare returns -1, 0 or 1 when a is lower than, equal to or greater
// than b. Versions semver cannot parse, such as 1.0.Final or 4.1.2.3, are
// compared segment by segment, numerically when both segments are numbers.
func Compare(a, b string) int {
	if a == b {
		return 0
	}
	va, errA := ParseVersion(a)
	vb, errB := ParseVersion(b)
	if errA == nil && errB == nil {
		return va.Compare(vb)
	}
	return compareSegments(a, b)
}

// Highest returns the greatest of the given versions, or an empty string.
func Highest(vs ...string) string {
	var highest string
	for _, v := range vs {
		if v == "" {
			continue
		}
		if highest == "" || Compare(v, highest) > 0 {
			highest = v
		}
	}
	return highest
}

// Sort sorts the given versions in descending order, dropping the ones
// outside of the provided semver range. A nil range keeps every version,
// including the ones semver cannot parse.
func Sort(c *semver.Constraints, vs []string) []string {
	sorted := make([]string, 0, len(vs))
	for _, v := range vs {
		if c != nil {
			pv, err := ParseVersion(v)
			if err != nil || !c.Check(pv) {
				continue
			}
		}
		sorted = append(sorted, v)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return Compare(sorted[i], sorted[j]) > 0
	})
	return sorted
}

func compareSegments(a, b string) int {
	split := func(s string) []string {
		return strings.FieldsFunc(strings.TrimPrefix(s, "v"), func(r rune) bool {
			return r == '.' || r == '-' || r == '_' || r == '+'
		})
	}
	sa, sb := split(a), split(b)
	for i := 0; i < len(sa) || i < len(sb); i++ {
		switch {
		case i >= len(sa):
			return trailing(sb[i:], -1)
		case i >= len(sb):
			return trailing(sa[i:], 1)
		}
		na, errA := strconv.Atoi(sa[i])
		nb, errB := strconv.Atoi(sb[i])
		switch {
		case errA == nil && errB == nil:
			if na != nb {
				return sign(na - nb)
			}
		case errA == nil:
			return 1
		case errB == nil:
			return -1
		default:
			if c := strings.Compare(strings.ToLower(sa[i]), strings.ToLower(sb[i])); c != 0 {
				return c
			}
		}
	}
	return 0
}

// trailing decides the order when one version has extra segments: extra
// zeros are ignored, extra numbers make it greater and extra qualifiers
// make it lower.
func trailing(extra []string, longer int) int {
	for _, s := range extra {
		n, err := strconv.Atoi(s)
		if err != nil {
			return -longer
		}
		if n != 0 {
			return longer
		}
	}
	return 0
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}
