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

package masktoken

import (
	"net/url"
	"regexp"
	"strings"
)

// Mask is the replacement of every redacted secret.
const Mask = "*****"

// MaskSecrets redacts all occurrences of the given secrets from the provided
// string, in plain and URL escaped form, replacing them with "*****".
// Empty secrets are ignored.
func MaskSecrets(s string, secrets ...string) string {
	var alternatives []string
	seen := make(map[string]struct{})
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		for _, form := range []string{secret, url.QueryEscape(secret), url.PathEscape(secret)} {
			if _, ok := seen[form]; ok {
				continue
			}
			seen[form] = struct{}{}
			alternatives = append(alternatives, regexp.QuoteMeta(form))
		}
	}
	if len(alternatives) == 0 {
		return s
	}
	re := regexp.MustCompile(strings.Join(alternatives, "|"))
	return re.ReplaceAllString(s, Mask)
}

// MaskError returns an error whose message has the given secrets redacted.
// The returned error unwraps to err.
func MaskError(err error, secrets ...string) error {
	if err == nil {
		return nil
	}
	msg := MaskSecrets(err.Error(), secrets...)
	if msg == err.Error() {
		return err
	}
	return &maskedError{msg: msg, err: err}
}

type maskedError struct {
	msg string
	err error
}

func (e *maskedError) Error() string {
	return e.msg
}

func (e *maskedError) Unwrap() error {
	return e.err
}
