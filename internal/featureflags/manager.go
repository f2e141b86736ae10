// Package featureflags evaluates rollout flags defined in configuration.
// Flags come in as a comma-separated list, e.g.
// "live_count=on,new_explore=25%,beta_upload=off".
package featureflags

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

type mode int

const (
	modeOff mode = iota
	modeOn
	modePercent
)

// rule is one parsed flag value. Percent rollouts bucket users
// deterministically so a user keeps the same answer across requests.
type rule struct {
	mode    mode
	percent int
}

// Manager answers flag queries. The zero value and nil both report every
// flag as disabled.
type Manager struct {
	rules map[string]rule
}

// NewManager parses a comma-separated flag list. Malformed pairs are
// silently skipped; an unknown value means off.
func NewManager(raw string) *Manager {
	rules := make(map[string]rule)

	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		name := normalize(parts[0])
		if name == "" {
			continue
		}
		rules[name] = parseRule(normalize(parts[1]))
	}

	return &Manager{rules: rules}
}

func parseRule(value string) rule {
	switch value {
	case "on", "true", "1":
		return rule{mode: modeOn}
	case "off", "false", "0":
		return rule{mode: modeOff}
	}

	if pct, ok := strings.CutSuffix(value, "%"); ok {
		n, err := strconv.Atoi(pct)
		if err != nil || n <= 0 {
			return rule{mode: modeOff}
		}
		if n >= 100 {
			return rule{mode: modeOn}
		}
		return rule{mode: modePercent, percent: n}
	}

	return rule{mode: modeOff}
}

// Enabled reports whether name is enabled for userID. Unknown flags are
// disabled. Percent rollouts never include anonymous callers (userID 0).
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}
	r, ok := m.rules[normalize(name)]
	if !ok {
		return false
	}

	switch r.mode {
	case modeOn:
		return true
	case modePercent:
		if userID == 0 {
			return false
		}
		return rolloutBucket(name, userID) < r.percent
	default:
		return false
	}
}

// Snapshot returns every configured flag evaluated for one user.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	if m == nil {
		return nil
	}
	out := make(map[string]bool, len(m.rules))
	for name := range m.rules {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(fmt.Sprintf("%s:%d", normalize(name), userID)))
	return int(h.Sum32() % 100)
}
