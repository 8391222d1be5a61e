// SPDX-License-Identifier: Apache-2.0
package ui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Work-Fort/crypto-install/pkg/provision"
)

func TestPreset_Collect(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]string
		fields  []provision.Field
		want    []string
		wantErr error
	}{
		{
			name:   "flags override defaults",
			values: map[string]string{"name": "Grace", "email": "grace@example.org", "comment": "Navy"},
			fields: provision.GnuPGFields("Ada", "ada@example.org"),
			want:   []string{"Grace", "grace@example.org", "Navy"},
		},
		{
			name:   "defaults fill gaps",
			values: map[string]string{"name": ""},
			fields: provision.GnuPGFields("Ada", "ada@example.org"),
			want:   []string{"Ada", "ada@example.org", ""},
		},
		{
			name:    "missing name fails validation",
			fields:  provision.GnuPGFields("", "ada@example.org"),
			wantErr: provision.ErrInvalidInput,
		},
		{
			name:   "ssh comment",
			values: map[string]string{"ssh-comment": "ci@runner"},
			fields: []provision.Field{provision.SSHCommentField("ada@host")},
			want:   []string{"ci@runner"},
		},
		{
			name:   "empty preset secret is kept",
			values: map[string]string{"passphrase": ""},
			fields: []provision.Field{{Key: "passphrase", Secret: true}},
			want:   []string{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Preset{Values: tt.values}
			got, err := p.Collect(context.Background(), tt.fields)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Collect() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Collect() error = %v", err)
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("Collect() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPreset_SecretWithoutValue(t *testing.T) {
	p := &Preset{}
	_, err := p.Collect(context.Background(), []provision.Field{{Key: "passphrase", Secret: true}})
	if err == nil || !strings.Contains(err.Error(), "without a terminal") {
		t.Errorf("Collect() error = %v, want terminal error", err)
	}
}

func TestPreset_Output(t *testing.T) {
	var out bytes.Buffer
	p := &Preset{Out: &out}

	p.Notice("OpenSSH key already exists: /h/.ssh/id_rsa")
	p.Progress("gpg: key generated")
	p.StageFinished(provision.Result{Kind: provision.OpenSSHKeyPair, Outcome: provision.OutcomeAlreadyExists, Path: "/h/.ssh/id_rsa"})

	s := out.String()
	if !strings.Contains(s, "OpenSSH key already exists: /h/.ssh/id_rsa") {
		t.Errorf("notice missing: %q", s)
	}
	if strings.Contains(s, "gpg: key generated") {
		t.Errorf("progress should not reach output: %q", s)
	}
	if !strings.Contains(s, "OpenSSH key pair already exists") {
		t.Errorf("outcome missing: %q", s)
	}
}
