// SPDX-License-Identifier: Apache-2.0
package install

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Work-Fort/crypto-install/pkg/provision"
)

func TestCredentialTab_OutputIsCapped(t *testing.T) {
	tab := NewCredentialTab(provision.GnuPGIdentity)
	for i := 0; i < maxOutputLines+5; i++ {
		tab.AddOutput(fmt.Sprintf("line %d", i))
	}
	if len(tab.output) != maxOutputLines {
		t.Fatalf("kept %d lines, want %d", len(tab.output), maxOutputLines)
	}
	if tab.output[len(tab.output)-1] != fmt.Sprintf("line %d", maxOutputLines+4) {
		t.Errorf("last line = %q", tab.output[len(tab.output)-1])
	}
}

func TestCredentialTab_NewRequestCancelsPrevious(t *testing.T) {
	tab := NewCredentialTab(provision.OpenSSHKeyPair)

	first := make(chan CollectReply, 1)
	tab.StartCollect(CollectRequestMsg{Fields: []provision.Field{provision.SSHCommentField("john@box")}, Reply: first})
	second := make(chan CollectReply, 1)
	tab.StartCollect(CollectRequestMsg{Fields: []provision.Field{provision.SSHCommentField("john@box")}, Reply: second})

	r := <-first
	if !errors.Is(r.Err, context.Canceled) {
		t.Errorf("first request answered with %v, want context.Canceled", r.Err)
	}
	if !tab.Collecting() {
		t.Error("second request should be collecting")
	}
}

func TestCredentialTab_FinishReleasesRequest(t *testing.T) {
	tab := NewCredentialTab(provision.GnuPGIdentity)
	reply := make(chan CollectReply, 1)
	tab.StartCollect(CollectRequestMsg{Fields: provision.GnuPGFields("", ""), Reply: reply})

	tab.Finish(provision.Result{Kind: provision.GnuPGIdentity, Outcome: provision.OutcomeCreated, Path: "/g/secring.gpg"})

	if tab.Collecting() {
		t.Error("tab still collecting after Finish")
	}
	if r := <-reply; r.Err == nil {
		t.Error("pending request not released")
	}
	if view := tab.View(); !strings.Contains(view, "GnuPG identity created: /g/secring.gpg") {
		t.Errorf("View() = %q, missing outcome", view)
	}
}

func TestCredentialTab_ViewShowsForm(t *testing.T) {
	tab := NewCredentialTab(provision.GnuPGIdentity)
	tab.AddNotice("No default GnuPG key available.")
	tab.StartCollect(CollectRequestMsg{Fields: provision.GnuPGFields("", ""), Reply: make(chan CollectReply, 1)})

	view := tab.View()
	for _, want := range []string{"GnuPG identity", "No default GnuPG key available.", "What is your name?"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}
