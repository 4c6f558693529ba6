package detection

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

const (
	clusterMinPoints = 2
	noise            = -1
	unvisited        = -2
)

// clusterStrategy regroups an over-full candidate set with DBSCAN and keeps
// the best candidate of each cluster. Noise points form clusters of their own
// so isolated dots survive.
//
// A candidate's quality is its size plausibility (how close its radius is to
// the median radius) times its position confidence (how close it is to its
// cluster's centroid, relative to ClusterEps).
type clusterStrategy struct {
	p Params
}

func (c *clusterStrategy) Name() string { return "cluster" }

func (c *clusterStrategy) Engage(accepted int) bool { return accepted > c.p.ClusterAbove }

func (c *clusterStrategy) Detect(_ *Scene, accepted []Candidate) Result {
	if len(accepted) == 0 {
		return Result{Replace: true}
	}
	eps := c.p.ClusterEps
	if eps <= 0 {
		eps = 1
	}

	labels := dbscan(accepted, eps, clusterMinPoints)

	radii := make([]float64, len(accepted))
	for i, cand := range accepted {
		radii[i] = cand.Radius
	}
	sort.Float64s(radii)
	median := stat.Quantile(0.5, stat.Empirical, radii, nil)

	members := make(map[int][]int)
	order := make([]int, 0)
	next := -1
	for i, l := range labels {
		if l == noise {
			l = next
			next--
		}
		if _, ok := members[l]; !ok {
			order = append(order, l)
		}
		members[l] = append(members[l], i)
	}

	out := make([]Candidate, 0, len(order))
	var quality float64
	for _, l := range order {
		idx := members[l]
		xs := make([]float64, len(idx))
		ys := make([]float64, len(idx))
		for k, i := range idx {
			xs[k] = accepted[i].X
			ys[k] = accepted[i].Y
		}
		mx, my := stat.Mean(xs, nil), stat.Mean(ys, nil)

		bestIdx, bestQ := idx[0], -1.0
		for _, i := range idx {
			cand := accepted[i]
			q := sizePlausibility(cand.Radius, median) *
				(1 / (1 + math.Hypot(cand.X-mx, cand.Y-my)/eps))
			if q > bestQ {
				bestIdx, bestQ = i, q
			}
		}
		out = append(out, accepted[bestIdx])
		quality += bestQ
	}

	return Result{
		Candidates: out,
		Confidence: quality / float64(len(out)),
		Replace:    true,
	}
}

// sizePlausibility is 1.0 when r equals the reference radius and falls
// toward 0 as they diverge.
func sizePlausibility(r, ref float64) float64 {
	if r <= 0 || ref <= 0 {
		return 0
	}
	return math.Min(r, ref) / math.Max(r, ref)
}

// dbscan labels each candidate with a cluster id (0, 1, ...) or noise.
func dbscan(cands []Candidate, eps float64, minPts int) []int {
	labels := make([]int, len(cands))
	for i := range labels {
		labels[i] = unvisited
	}

	neighbours := func(i int) []int {
		out := make([]int, 0)
		for j := range cands {
			if cands[i].dist(cands[j]) <= eps {
				out = append(out, j)
			}
		}
		return out
	}

	cluster := 0
	for i := range cands {
		if labels[i] != unvisited {
			continue
		}
		seeds := neighbours(i)
		if len(seeds) < minPts {
			labels[i] = noise
			continue
		}
		labels[i] = cluster
		for k := 0; k < len(seeds); k++ {
			j := seeds[k]
			if labels[j] == noise {
				labels[j] = cluster
			}
			if labels[j] != unvisited {
				continue
			}
			labels[j] = cluster
			if more := neighbours(j); len(more) >= minPts {
				seeds = append(seeds, more...)
			}
		}
		cluster++
	}
	return labels
}
