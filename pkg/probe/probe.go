// SPDX-License-Identifier: Apache-2.0

// Package probe discovers default identity values from the local environment.
package probe

import (
	"os"
	"os/exec"
	"os/user"
	"strings"

	"github.com/charmbracelet/log"
)

// Identity holds best-effort defaults. Any field may be empty.
type Identity struct {
	FullName string
	Email    string
	Username string
	Hostname string
}

// SSHComment returns the conventional username@hostname key comment.
func (id Identity) SSHComment() string {
	switch {
	case id.Username != "" && id.Hostname != "":
		return id.Username + "@" + id.Hostname
	case id.Username != "":
		return id.Username
	default:
		return id.Hostname
	}
}

// Prober gathers an Identity. Each source is a function so tests can fake it.
type Prober struct {
	Getenv      func(string) string
	GitConfig   func(key string) (string, error)
	CurrentUser func() (*user.User, error)
	Hostname    func() (string, error)
}

// Default returns a Prober backed by the real system.
func Default() Prober {
	return Prober{
		Getenv:      os.Getenv,
		GitConfig:   gitConfig,
		CurrentUser: user.Current,
		Hostname:    os.Hostname,
	}
}

// Detect probes the real system.
func Detect() Identity {
	return Default().Identity()
}

// Identity never fails; unavailable values are left empty.
func (p Prober) Identity() Identity {
	var id Identity

	var u *user.User
	if p.CurrentUser != nil {
		if cu, err := p.CurrentUser(); err == nil {
			u = cu
		} else {
			log.Debugf("probe: current user unavailable: %v", err)
		}
	}

	id.FullName = firstNonEmpty(
		p.git("user.name"),
		gecosName(u),
		p.env("DEBFULLNAME"),
	)
	id.Email = firstNonEmpty(
		p.git("user.email"),
		p.env("EMAIL"),
		p.env("DEBEMAIL"),
	)

	if u != nil {
		id.Username = u.Username
	}
	if id.Username == "" {
		id.Username = firstNonEmpty(p.env("USER"), p.env("LOGNAME"))
	}

	if p.Hostname != nil {
		if h, err := p.Hostname(); err == nil {
			id.Hostname = strings.TrimSpace(h)
		}
	}
	if id.Hostname == "" {
		id.Hostname = p.env("HOSTNAME")
	}

	log.Debugf("probe: name=%q email=%q user=%q host=%q", id.FullName, id.Email, id.Username, id.Hostname)
	return id
}

func (p Prober) env(key string) string {
	if p.Getenv == nil {
		return ""
	}
	return strings.TrimSpace(p.Getenv(key))
}

func (p Prober) git(key string) string {
	if p.GitConfig == nil {
		return ""
	}
	v, err := p.GitConfig(key)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(v)
}

// gecosName returns the first comma-separated GECOS field, which holds the
// user's real name.
func gecosName(u *user.User) string {
	if u == nil {
		return ""
	}
	name, _, _ := strings.Cut(u.Name, ",")
	return strings.TrimSpace(name)
}

func gitConfig(key string) (string, error) {
	cmd := exec.Command("git", "config", "--get", key)
	output, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
