package webmap

import (
	"context"
	"strings"
)

// RobotsPolicy is the set of disallowed path prefixes that applies to
// one crawl. It is fetched once per crawl and immutable thereafter.
type RobotsPolicy struct {
	// Disallow holds path prefixes. A path matching any prefix is off
	// limits. Matching is simple prefix matching, not the full
	// robots.txt wildcard/$ semantics.
	Disallow []string
}

// Allowed reports whether path is permitted by the policy.
// A nil or empty policy permits everything.
func (p *RobotsPolicy) Allowed(path string) bool {
	if p == nil {
		return true
	}
	for _, prefix := range p.Disallow {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return true
}

// RobotsService fetches and parses a site's robots.txt.
type RobotsService interface {
	// Fetch retrieves robots.txt for the host of seedURL and parses it
	// into a policy for the crawler's agent. An error means the policy
	// could not be obtained; callers are expected to fail open and
	// crawl as if no robots.txt existed.
	Fetch(ctx context.Context, seedURL string) (*RobotsPolicy, error)
}

// ParseRobots parses robots.txt content into the policy that applies
// to agent. Rules under the wildcard agent ("*") and rules under the
// named agent are merged; a named agent does not replace the wildcard
// rules. Disallow lines that appear before any User-agent line apply
// to the wildcard agent. Agent and directive names are matched
// case-insensitively.
func ParseRobots(content, agent string) *RobotsPolicy {
	agent = strings.ToLower(agent)

	rules := make(map[string][]string)
	current := []string{"*"}
	inAgentBlock := false

	for _, line := range strings.Split(content, "\n") {
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		value = strings.TrimSpace(value)

		switch name {
		case "user-agent":
			// Consecutive User-agent lines form one group; a line
			// after a Disallow starts a fresh group.
			if !inAgentBlock {
				current = nil
			}
			current = append(current, strings.ToLower(value))
			inAgentBlock = true
		case "disallow":
			inAgentBlock = false
			// An empty Disallow allows everything for the group.
			if value == "" {
				continue
			}
			for _, a := range current {
				rules[a] = append(rules[a], value)
			}
		default:
			inAgentBlock = false
		}
	}

	policy := &RobotsPolicy{}
	policy.Disallow = append(policy.Disallow, rules["*"]...)
	if agent != "" && agent != "*" {
		policy.Disallow = append(policy.Disallow, rules[agent]...)
	}
	return policy
}
