// Package enrich computes per-group hypergeometric enrichment of an observed
// compound set.
package enrich

import (
	"sort"

	"github.com/KaramelBytes/enrich-cli/internal/annotation"
	"github.com/KaramelBytes/enrich-cli/internal/compound"
)

// Result is the enrichment of one group against one observed set.
type Result struct {
	Group annotation.Group
	// HitsUniverse are the group members present in the reference universe.
	HitsUniverse []string
	NumUniverse  int
	// HitsSample are the group members present in the observed set.
	HitsSample []string
	NumSample  int
	PValue     float64
}

// Totals are the distribution parameters shared by every group of one run.
type Totals struct {
	// Population is N, the sum of UniverseSize over all groups.
	Population int
	// Draws is n, the sum of NumSample over all groups.
	Draws int
}

// Compute returns one Result per group, in input order.
//
// N and n are sums of per-group counts rather than set cardinalities, so a
// compound that belongs to several groups is counted once per group.
func Compute(groups []annotation.Group, universe, observed compound.Set) ([]Result, Totals) {
	results := make([]Result, len(groups))
	var tot Totals
	for i, g := range groups {
		hu := g.Members.Intersect(universe).Sorted()
		hs := g.Members.Intersect(observed).Sorted()
		results[i] = Result{
			Group:        g,
			HitsUniverse: hu,
			NumUniverse:  len(hu),
			HitsSample:   hs,
			NumSample:    len(hs),
		}
		tot.Population += g.UniverseSize
		tot.Draws += len(hs)
	}
	for i := range results {
		r := &results[i]
		r.PValue = PValue(r.NumSample, tot.Population, r.Group.UniverseSize, tot.Draws)
	}
	return results, tot
}

// Rank returns a copy of results ordered by ascending p-value. Ties keep
// their input order.
func Rank(results []Result) []Result {
	out := make([]Result, len(results))
	copy(out, results)
	sort.SliceStable(out, func(i, j int) bool { return out[i].PValue < out[j].PValue })
	return out
}

// Significant keeps results with at least one sample hit, truncated to the
// first topK (topK <= 0 keeps all). Input is expected to be ranked.
func Significant(ranked []Result, topK int) []Result {
	var out []Result
	for _, r := range ranked {
		if r.NumSample == 0 {
			continue
		}
		if topK > 0 && len(out) >= topK {
			break
		}
		out = append(out, r)
	}
	return out
}
