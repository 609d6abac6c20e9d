// Package popularity holds the popularity classification rules and the
// outcome types returned when a repository's metrics are looked up.
package popularity

// Result is the classification of a repository
type Result string

const (
	Popular    Result = "popular"
	NotPopular Result = "not popular"
)

// Threshold is the minimum score a popular repository reaches
const Threshold = 500

// ForkWeight is how much a single fork counts towards the score
const ForkWeight = 2

// Metrics is a snapshot of remote counters, valid for a single classification
type Metrics struct {
	Stars int
	Forks int
}

// Score returns stars + 2*forks
func (m Metrics) Score() int {
	return m.Stars + ForkWeight*m.Forks
}

// Classify returns the classification for the snapshot
func (m Metrics) Classify() Result {
	return Classify(m.Stars, m.Forks)
}

// Classify reports Popular iff stars + 2*forks >= 500. The boundary is inclusive.
func Classify(stars, forks int) Result {
	if (Metrics{Stars: stars, Forks: forks}).Score() >= Threshold {
		return Popular
	}
	return NotPopular
}

func (r Result) String() string {
	return string(r)
}
