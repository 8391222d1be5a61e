// SPDX-License-Identifier: Apache-2.0
package provision

import (
	"fmt"
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`(?s)^[^@]+@.+$`)

// ValidName reports whether s contains anything besides whitespace.
func ValidName(s string) bool {
	return strings.TrimSpace(s) != ""
}

// ValidEmail accepts local@domain with a non-empty local part free of '@'
// and a non-empty domain. Any other character is allowed in either part.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidComment accepts everything, including the empty string.
func ValidComment(string) bool {
	return true
}

// Validate checks all fields and names the first invalid one.
func (f IdentityFields) Validate() error {
	if !ValidName(f.Name) {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidInput)
	}
	if !ValidEmail(f.Email) {
		return fmt.Errorf("%w: %q is not an email address", ErrInvalidInput, f.Email)
	}
	if !ValidComment(f.Comment) {
		return fmt.Errorf("%w: comment", ErrInvalidInput)
	}
	return nil
}
