package chat

import (
	_ "embed"
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed responses.yaml
var responsesYAML []byte

type replyRule struct {
	Keyword string `yaml:"keyword"`
	Reply   string `yaml:"reply"`
}

type replyTable struct {
	Welcome  string      `yaml:"welcome"`
	Rules    []replyRule `yaml:"rules"`
	Defaults []string    `yaml:"defaults"`
}

// Responder produces canned assistant replies by keyword matching against
// an ordered rule table. The first matching rule wins; unmatched messages
// get a pseudo-random default. Safe for concurrent use: reply goroutines
// share one Responder, and rand.Rand needs the mutex.
type Responder struct {
	table replyTable
	mu    sync.Mutex
	rng   *rand.Rand
}

// NewResponder loads the embedded reply table. The randomness source is
// injected so tests can pin the default-reply choice.
func NewResponder(rng *rand.Rand) (*Responder, error) {
	var table replyTable
	if err := yaml.Unmarshal(responsesYAML, &table); err != nil {
		return nil, fmt.Errorf("parsing reply table: %w", err)
	}
	if len(table.Defaults) == 0 {
		return nil, fmt.Errorf("reply table has no default replies")
	}
	return &Responder{table: table, rng: rng}, nil
}

// Welcome returns the transcript's seed message content.
func (r *Responder) Welcome() string {
	return r.table.Welcome
}

// Reply returns the canned response for a user message.
func (r *Responder) Reply(content string) string {
	lowered := strings.ToLower(content)
	for _, rule := range r.table.Rules {
		if strings.Contains(lowered, rule.Keyword) {
			return rule.Reply
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.table.Defaults[r.rng.Intn(len(r.table.Defaults))]
}
