package project

import (
	"math/rand"
	"sync"
	"time"
)

// Candidate pools for generated analysis content. Selection is without
// replacement, so the pools must stay larger than the draw counts
// (5 keywords, 4 recommendations).
var (
	keywordPool = []string{
		"scalability", "automation", "user-experience", "performance",
		"integration", "security", "accessibility", "real-time",
		"data-driven", "cloud-native", "modularity", "observability",
	}

	recommendationPool = []string{
		"Break the scope into smaller milestones with clear acceptance criteria",
		"Add automated regression coverage before expanding the feature set",
		"Validate the riskiest assumption with a throwaway prototype first",
		"Schedule a design review before committing to the data model",
		"Instrument the critical path early to catch regressions",
		"Document the public interfaces while they are still small",
		"Budget explicit time for dependency upgrades and hardening",
		"Collect user feedback on the first vertical slice before scaling out",
	}

	summaryPool = []string{
		"The project shows a solid foundation with room to tighten its scope.",
		"Requirements are broadly understood; the main risk is schedule pressure.",
		"A promising direction that would benefit from earlier validation.",
		"Technically feasible with the current team and a conservative timeline.",
		"Strong concept; execution risk concentrates in the integration work.",
	}

	sentiments   = []Sentiment{SentimentPositive, SentimentNeutral, SentimentNegative}
	complexities = []ComplexityLevel{ComplexityLow, ComplexityMedium, ComplexityHigh}
)

const (
	keywordDraw        = 5
	recommendationDraw = 4

	confidenceMin = 75
	confidenceMax = 95
	techScoreMin  = 70
	techScoreMax  = 95
)

// newDefaultRand seeds a private randomness source for production use.
func newDefaultRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Latency produces the simulated delay for one mock operation. Tests
// inject a zero-latency strategy to stay fast.
type Latency func() time.Duration

// FixedLatency returns a Latency that always yields d.
func FixedLatency(d time.Duration) Latency {
	return func() time.Duration { return d }
}

// JitterLatency returns a Latency drawing uniformly from [min, max].
// The returned func is safe for concurrent use; rand.Rand itself is not,
// and every analyze goroutine draws a delay.
func JitterLatency(rng *rand.Rand, min, max time.Duration) Latency {
	if max < min {
		max = min
	}
	var mu sync.Mutex
	return func() time.Duration {
		if max == min {
			return min
		}
		mu.Lock()
		defer mu.Unlock()
		return min + time.Duration(rng.Int63n(int64(max-min)+1))
	}
}

// Analyzer generates mock analysis results. Randomness and the clock are
// injected so tests can pin both.
type Analyzer struct {
	rng *rand.Rand
	now func() int64
}

// NewAnalyzer creates an analyzer backed by the given randomness source.
// A nil now func defaults to wall-clock Unix milliseconds.
func NewAnalyzer(rng *rand.Rand, now func() int64) *Analyzer {
	if now == nil {
		now = func() int64 { return time.Now().UnixMilli() }
	}
	return &Analyzer{rng: rng, now: now}
}

// Generate produces a fresh Analysis of the requested depth. Confidence
// lands in [75,95] and the technical score in [70,95].
func (a *Analyzer) Generate(depth AnalysisType) *Analysis {
	return &Analysis{
		Type:            depth,
		Keywords:        a.draw(keywordPool, keywordDraw),
		Summary:         summaryPool[a.rng.Intn(len(summaryPool))],
		Sentiment:       sentiments[a.rng.Intn(len(sentiments))],
		Recommendations: a.draw(recommendationPool, recommendationDraw),
		Confidence:      a.between(confidenceMin, confidenceMax),
		TechnicalScore:  a.between(techScoreMin, techScoreMax),
		ComplexityLevel: complexities[a.rng.Intn(len(complexities))],
		CompletedAt:     a.now(),
	}
}

// between returns a uniform int in [lo, hi].
func (a *Analyzer) between(lo, hi int) int {
	return lo + a.rng.Intn(hi-lo+1)
}

// draw picks n distinct items from pool, preserving none of the pool order.
func (a *Analyzer) draw(pool []string, n int) []string {
	idx := a.rng.Perm(len(pool))
	if n > len(pool) {
		n = len(pool)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = pool[idx[i]]
	}
	return out
}
