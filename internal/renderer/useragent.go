package renderer

import "math/rand/v2"

// defaultUserAgents is the built-in rotation pool. A mix of Chrome and
// Firefox on the major desktop platforms keeps the traffic shape from being
// trivially fingerprintable as a single automated client.
var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:89.0) Gecko/20100101 Firefox/89.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/92.0.4515.107 Safari/537.36",
	"Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:89.0) Gecko/20100101 Firefox/89.0",
}

// agentPool hands out a user agent per fetch, chosen at random from its
// pool. The pool is immutable after construction, so it is safe for
// concurrent use.
type agentPool struct {
	agents []string
}

// newAgentPool creates a pool from the given agents, falling back to the
// built-in list when none are provided.
func newAgentPool(agents []string) *agentPool {
	if len(agents) == 0 {
		agents = defaultUserAgents
	}
	return &agentPool{agents: agents}
}

// pick returns one user agent from the pool.
func (p *agentPool) pick() string {
	return p.agents[rand.IntN(len(p.agents))]
}
