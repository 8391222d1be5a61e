// SPDX-License-Identifier: Apache-2.0
package provision

import "strings"

// displayVars make generators reach for graphical prompts.
var displayVars = []string{"DISPLAY", "WAYLAND_DISPLAY"}

// childEnv builds a fresh environment map from base (KEY=VALUE pairs). The
// display variables and any extra names in strip are removed unless gui is
// set; set is applied last.
func childEnv(base []string, gui bool, strip []string, set map[string]string) map[string]string {
	env := make(map[string]string, len(base)+len(set))
	for _, kv := range base {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		env[k] = v
	}

	if !gui {
		for _, k := range displayVars {
			delete(env, k)
		}
		for _, k := range strip {
			delete(env, k)
		}
	}

	for k, v := range set {
		env[k] = v
	}
	return env
}
