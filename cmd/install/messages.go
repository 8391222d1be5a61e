// SPDX-License-Identifier: Apache-2.0
package install

import (
	"github.com/Work-Fort/crypto-install/pkg/provision"
)

// CollectRequestMsg asks the active tab for field values. The answer goes
// to Reply exactly once.
type CollectRequestMsg struct {
	Fields []provision.Field
	Reply  chan<- CollectReply
}

// CollectReply carries the collected values back to the provisioner
type CollectReply struct {
	Values []string
	Err    error
}

// NoticeMsg carries an informational message from the provisioner
type NoticeMsg struct {
	Text string
}

// ProgressMsg carries one line of generator output
type ProgressMsg struct {
	Line string
}

// StageStartedMsg signals a credential is being provisioned
type StageStartedMsg struct {
	Spec provision.Spec
}

// StageFinishedMsg carries the outcome of a credential
type StageFinishedMsg struct {
	Result provision.Result
}

// RunDoneMsg signals the provisioner returned
type RunDoneMsg struct {
	Results []provision.Result
	Details map[provision.Kind]string
	Err     error
}
