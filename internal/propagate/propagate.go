// Package propagate performs the multi-source breadth-first walk that turns
// a SurveyNetwork's anchors and relative shot deltas into an absolute
// position for every reachable station, per spec.md §4.6.
package propagate

import (
	"compassnet/internal/diag"
	"compassnet/internal/network"
	"compassnet/internal/vector"
)

// Result is one propagated position: an absolute Cartesian position plus the
// anchor that reached it first.
type Result struct {
	Position vector.Vector3D
	Origin   string
}

// Propagate runs a multi-source BFS seeded at every anchor in net, in
// ascending sorted order, and returns the reached stations' positions.
// Stations unreachable from any anchor are omitted and reported via bag as
// a network.disconnected diagnostic.
func Propagate(net *network.SurveyNetwork, bag *diag.Bag) map[string]Result {
	results := make(map[string]Result, len(net.Stations))
	visited := make(map[string]bool, len(net.Stations))

	var queue []string
	for _, a := range net.SortedAnchors() {
		s := net.Stations[a]
		results[a] = Result{Position: s.Position, Origin: a}
		visited[a] = true
		queue = append(queue, a)
	}

	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		cur := results[u]
		for _, edge := range net.Adjacency(u) {
			v := edge.Neighbour
			if visited[v] {
				continue
			}
			visited[v] = true
			results[v] = Result{
				Position: cur.Position.Add(edge.OrientedDelta()),
				Origin:   cur.Origin,
			}
			queue = append(queue, v)
		}
	}

	for name := range net.Stations {
		if !visited[name] {
			bag.Warning(diag.KindNetworkDisconnected, "", 0,
				"station %q is unreachable from any anchor", name)
		}
	}

	return results
}

// BFSDistance computes the minimum cumulative shot-length distance from
// source to every station reachable through net's undirected adjacency,
// used by the solver's graph-distance pass (spec.md §4.7 step 3).
func BFSDistance(net *network.SurveyNetwork, source string) map[string]float64 {
	dist := make(map[string]float64)
	if _, ok := net.Stations[source]; !ok {
		return dist
	}
	dist[source] = 0
	queue := []string{source}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, edge := range net.Adjacency(u) {
			v := edge.Neighbour
			if _, seen := dist[v]; seen {
				continue
			}
			dist[v] = dist[u] + edge.Shot.Length
			queue = append(queue, v)
		}
	}
	return dist
}

// BFSPositions runs an unclamped single-source BFS from source, summing
// oriented deltas, used by the solver's re-propagation passes (spec.md §4.7
// steps 1 and 4). The source itself is positioned at the zero vector.
func BFSPositions(net *network.SurveyNetwork, source string) map[string]vector.Vector3D {
	pos := make(map[string]vector.Vector3D)
	if _, ok := net.Stations[source]; !ok {
		return pos
	}
	pos[source] = vector.Zero
	queue := []string{source}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, edge := range net.Adjacency(u) {
			v := edge.Neighbour
			if _, seen := pos[v]; seen {
				continue
			}
			pos[v] = pos[u].Add(edge.OrientedDelta())
			queue = append(queue, v)
		}
	}
	return pos
}
