package content

import "math/rand/v2"

// Rand is the subset of *rand.Rand the sampler needs. Tests inject a seeded
// source to make draws reproducible.
type Rand interface {
	IntN(n int) int
}

// Sample draws k distinct violations without replacement. It always returns
// exactly min(k, catalog size) entries.
func (s *Store) Sample(rng Rand, k int) []Violation {
	return sample(rng, s.tables.Violations, k)
}

func sample(rng Rand, catalog []Violation, k int) []Violation {
	if k <= 0 {
		return []Violation{}
	}
	if k > len(catalog) {
		k = len(catalog)
	}
	if rng == nil {
		rng = defaultRand{}
	}

	pool := make([]Violation, len(catalog))
	copy(pool, catalog)
	// partial Fisher-Yates: the first k slots end up a uniform sample
	for i := 0; i < k; i++ {
		j := i + rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}

// RiskLevel is the maximum severity in vs. An empty set is low risk.
func RiskLevel(vs []Violation) Severity {
	level := SeverityLow
	for _, v := range vs {
		if v.Severity.Rank() > level.Rank() {
			level = v.Severity
		}
	}
	return level
}

// ReportCount picks how many violations a generated report lists: 2 to 5.
func ReportCount(rng Rand) int {
	if rng == nil {
		rng = defaultRand{}
	}
	return 2 + rng.IntN(4)
}

type defaultRand struct{}

func (defaultRand) IntN(n int) int { return rand.IntN(n) }
