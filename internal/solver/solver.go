// Package solver removes the mixed-origin seam a multi-anchor BFS leaves
// behind, distributing traverse misclosure across a network's shots.
package solver

import (
	"math"

	"compassnet/internal/diag"
	"compassnet/internal/network"
	"compassnet/internal/propagate"
	"compassnet/internal/vector"
)

// SurveyAdjuster maps a SurveyNetwork to a table of station positions.
type SurveyAdjuster interface {
	Adjust(net *network.SurveyNetwork, bag *diag.Bag) map[string]vector.Vector3D
}

// Identity returns the raw BFS propagation unchanged; the traverse
// adjustment fixed point with fewer than two anchors.
type Identity struct{}

// Adjust implements SurveyAdjuster.
func (Identity) Adjust(net *network.SurveyNetwork, bag *diag.Bag) map[string]vector.Vector3D {
	propagated := propagate.Propagate(net, bag)
	out := make(map[string]vector.Vector3D, len(propagated))
	for name, r := range propagated {
		out[name] = r.Position
	}
	return out
}

const (
	lengthTolerance = 0.05
	angleTolerance  = 0.15
	angleFloorDeg   = 2.0
	misclosureFloor = 1e-9
)

// Proportional implements spec.md §4.7's traverse adjustment: for every pair
// of anchors it re-propagates the network from one, measures the misclosure
// at the other, and distributes a per-shot polar-clamped correction across
// every station on the path between them. Stations reached by more than one
// pair take the arithmetic mean of their corrected positions.
type Proportional struct{}

// Adjust implements SurveyAdjuster.
func (Proportional) Adjust(net *network.SurveyNetwork, bag *diag.Bag) map[string]vector.Vector3D {
	base := propagate.Propagate(net, bag)
	result := make(map[string]vector.Vector3D, len(base))
	for name, r := range base {
		result[name] = r.Position
	}

	anchors := net.SortedAnchors()
	if len(anchors) < 2 {
		return result
	}

	accum := make(map[string][]vector.Vector3D)

	for i := 0; i < len(anchors); i++ {
		for j := i + 1; j < len(anchors); j++ {
			p, q := anchors[i], anchors[j]
			adjustPair(net, p, q, accum, bag)
		}
	}

	for name, positions := range accum {
		result[name] = vector.Mean(positions)
	}
	return result
}

// adjustPair carries out steps 1-4 of the pairwise traverse adjustment for
// one anchor pair, appending each reached non-anchor station's corrected
// position to accum.
func adjustPair(net *network.SurveyNetwork, p, q string, accum map[string][]vector.Vector3D, bag *diag.Bag) {
	pAbs := net.Stations[p].Position
	qAbs := net.Stations[q].Position

	measured := propagate.BFSPositions(net, p)
	measuredQOffset, reachable := measured[q]
	if !reachable {
		return
	}

	measuredQ := pAbs.Add(measuredQOffset)
	misclosure := measuredQ.Sub(qAbs)
	if misclosure.Length() < misclosureFloor {
		return
	}

	dP := propagate.BFSDistance(net, p)
	dQ := propagate.BFSDistance(net, q)
	frac := func(name string) float64 {
		total := dP[name] + dQ[name]
		if total <= 0 {
			return 0
		}
		return dP[name] / total
	}

	positions := clampedRepropagate(net, p, pAbs, misclosure, frac)
	for name, pos := range positions {
		if net.Anchors[name] {
			continue
		}
		accum[name] = append(accum[name], pos)
	}

	bag.Warning(diag.KindSolverResidual, "", 0,
		"traverse %s-%s: misclosure %.4f ft distributed across the path", p, q, misclosure.Length())
}

// clampedRepropagate is spec.md §4.7 step 4: a second BFS from p, applying
// a distance-weighted correction to each traversed edge's delta and then
// clamping the corrected shot's polar components against its original
// reading before accumulating position.
func clampedRepropagate(net *network.SurveyNetwork, p string, pAbs vector.Vector3D, misclosure vector.Vector3D, frac func(string) float64) map[string]vector.Vector3D {
	pos := map[string]vector.Vector3D{p: pAbs}
	visited := map[string]bool{p: true}
	queue := []string{p}

	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, edge := range net.Adjacency(u) {
			v := edge.Neighbour
			if visited[v] {
				continue
			}
			visited[v] = true

			delta := edge.OrientedDelta()
			var corrected vector.Vector3D
			if edge.Shot.HasFlag(network.FlagNoAdjust) {
				corrected = delta
			} else {
				c := misclosure.Scale(frac(v) - frac(u))
				candidate := delta.Sub(c)
				corrected = clampShot(delta, candidate)
			}

			pos[v] = pos[u].Add(corrected)
			queue = append(queue, v)
		}
	}
	return pos
}

// clampShot clamps candidate's polar decomposition against reference's,
// independently on each of length, heading, and inclination, per spec.md
// §4.7 step 4's tolerance table.
func clampShot(reference, candidate vector.Vector3D) vector.Vector3D {
	refLen, refHeading, refInc := vector.ToPolar(reference)
	candLen, candHeading, candInc := vector.ToPolar(candidate)

	clampedLen := clampFloat(candLen, refLen*(1-lengthTolerance), refLen*(1+lengthTolerance))

	headingTol := math.Max(angleTolerance*math.Abs(refHeading), angleFloorDeg)
	headingDiff := clampFloat(angularDiff(refHeading, candHeading), -headingTol, headingTol)
	clampedHeading := vector.NormalizeDegrees(refHeading + headingDiff)

	incTol := math.Max(angleTolerance*math.Abs(refInc), angleFloorDeg)
	incDiff := clampFloat(candInc-refInc, -incTol, incTol)
	clampedInc := refInc + incDiff

	return vector.FromPolar(clampedLen, clampedHeading, clampedInc)
}

func clampFloat(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// angularDiff returns the signed shortest-arc difference b-a in (-180, 180].
func angularDiff(a, b float64) float64 {
	return math.Mod(b-a+540, 360) - 180
}
