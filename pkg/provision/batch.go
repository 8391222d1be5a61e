// SPDX-License-Identifier: Apache-2.0
package provision

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// batchTemplate is the unattended key generation description read by
// gpg --batch --gen-key.
const batchTemplate = `{{if eq .Algorithm "modern" -}}
Key-Type: EDDSA
Key-Curve: ed25519
Key-Usage: sign
Subkey-Type: ECDH
Subkey-Curve: cv25519
Subkey-Usage: encrypt
{{- else -}}
Key-Type: DSA
Key-Length: 2048
Key-Usage: sign
Subkey-Type: ELG-E
Subkey-Length: 2048
Subkey-Usage: encrypt
{{- end}}
Name-Real: {{.Name}}
Name-Email: {{.Email}}
{{- if .Comment}}
Name-Comment: {{.Comment}}
{{- end}}
Expire-Date: 0
{{- if .Protection.Ask}}
{{- else if .Protection.Passphrase}}
Passphrase: {{.Protection.Passphrase}}
{{- else}}
%no-protection
{{- end}}
%commit
`

// KeyProtection is how the new secret key is protected.
type KeyProtection struct {
	// Passphrase is written to the batch file. Empty means no protection
	// unless Ask is set.
	Passphrase string
	// Ask leaves passphrase entry to gpg's pinentry.
	Ask bool
}

var batchTmpl = template.Must(template.New("batch").Parse(batchTemplate))

// RenderBatch renders the gpg batch description for fields. Values that
// contain line breaks are rejected since they would add directives.
func RenderBatch(fields IdentityFields, algo Algorithm, prot KeyProtection) (string, error) {
	if err := fields.Validate(); err != nil {
		return "", err
	}
	for _, v := range []string{fields.Name, fields.Email, fields.Comment} {
		if strings.ContainsAny(v, "\r\n") {
			return "", fmt.Errorf("%w: line breaks are not allowed", ErrInvalidInput)
		}
	}
	if !prot.Ask {
		if strings.ContainsAny(prot.Passphrase, "\r\n") {
			return "", fmt.Errorf("%w: line breaks are not allowed in the passphrase", ErrInvalidInput)
		}
		// gpg trims parameter values
		if strings.TrimSpace(prot.Passphrase) != prot.Passphrase {
			return "", fmt.Errorf("%w: the passphrase must not start or end with spaces", ErrInvalidInput)
		}
	}
	if algo == "" {
		algo = AlgorithmLegacy
	}

	data := struct {
		IdentityFields
		Algorithm  Algorithm
		Protection KeyProtection
	}{
		IdentityFields: IdentityFields{
			Name:    strings.TrimSpace(fields.Name),
			Email:   strings.TrimSpace(fields.Email),
			Comment: strings.TrimSpace(fields.Comment),
		},
		Algorithm:  algo,
		Protection: prot,
	}

	var buf bytes.Buffer
	if err := batchTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render batch description: %w", err)
	}
	return buf.String(), nil
}
