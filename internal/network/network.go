// Package network assembles parsed projects and surveys into a single
// SurveyNetwork: a unified station namespace, a directed shot list, and an
// undirected adjacency view used by the propagator and solver.
package network

import (
	"sort"

	"compassnet/internal/format"
	"compassnet/internal/vector"
)

// Station is a named point in the network.
type Station struct {
	Name     string
	Position vector.Vector3D
	Origin   string // anchor name that claimed it during BFS, or "self"
	Fixed    bool
}

// ShotFlag mirrors survey.Flag but is re-exported here so this package
// doesn't force its callers to import internal/survey just to test a flag.
type ShotFlag byte

const (
	FlagExcludeLength ShotFlag = 'L'
	FlagExcludePlot   ShotFlag = 'P'
	FlagExcludeAll    ShotFlag = 'X'
	FlagNoAdjust      ShotFlag = 'C'
)

// NetworkShot is a directed from->to measurement, reduced to a Cartesian
// delta by the kernel and rewritten against the assembler's unified station
// names.
type NetworkShot struct {
	From, To string
	Delta    vector.Vector3D
	Length   float64
	Heading  float64
	Inclination float64
	Flags    map[ShotFlag]bool
	Source   string // originating file path, for diagnostics
	Index    int    // shot's index within its survey

	// Left/Up/Down/Right are the shot's passage-wall measurements in feet,
	// negative meaning "missing" (survey.Present). Attach is the resolved
	// from/to endpoint they were measured at, after project flags O/T have
	// had a chance to override the survey file's own format descriptor.
	// The geometry kernel and solver never read these; they exist for a
	// downstream plot emitter, an external collaborator per spec.md §1.
	Left, Up, Down, Right float64
	Attach                format.LRUDAttach
}

// HasFlag reports whether f is set on the shot.
func (s NetworkShot) HasFlag(f ShotFlag) bool {
	return s.Flags != nil && s.Flags[f]
}

// AdjacencyEntry names one endpoint of an undirected edge together with the
// NetworkShot that produced it and the direction it must be traversed in
// (Forward: shot.From -> neighbour was shot.To; the delta applies as-is;
// Forward false: it must be negated).
type AdjacencyEntry struct {
	Neighbour string
	Shot      *NetworkShot
	Forward   bool
}

// SurveyNetwork is the unified station/shot graph the propagator and solver
// operate on.
type SurveyNetwork struct {
	Stations map[string]*Station
	Shots    []*NetworkShot
	Anchors  map[string]bool

	adjacency map[string][]AdjacencyEntry
}

// New returns an empty SurveyNetwork.
func New() *SurveyNetwork {
	return &SurveyNetwork{
		Stations: make(map[string]*Station),
		Anchors:  make(map[string]bool),
	}
}

// station returns the named station, creating it (unfixed, unpositioned) if
// it doesn't yet exist.
func (n *SurveyNetwork) station(name string) *Station {
	if s, ok := n.Stations[name]; ok {
		return s
	}
	s := &Station{Name: name}
	n.Stations[name] = s
	return s
}

// AddShot inserts a directed shot between two (possibly new) stations and
// invalidates any cached adjacency. Shots flagged X are excluded from the
// network entirely per spec.md §4.5 and are silently dropped here.
func (n *SurveyNetwork) AddShot(shot NetworkShot) {
	if shot.HasFlag(FlagExcludeAll) {
		return
	}
	n.station(shot.From)
	n.station(shot.To)
	stored := shot
	n.Shots = append(n.Shots, &stored)
	n.adjacency = nil
}

// MarkFixed materialises a fixed station: writes its absolute position,
// marks it as an anchor with origin "self", overriding any position a shot
// may already imply.
func (n *SurveyNetwork) MarkFixed(name string, pos vector.Vector3D) {
	s := n.station(name)
	s.Position = pos
	s.Fixed = true
	s.Origin = "self"
	n.Anchors[name] = true
}

// Adjacency returns the undirected neighbour list for name, in the order
// shots were inserted (insertion order from file reading, per spec.md
// §4.6's ordering contract). It is computed once and cached until the next
// AddShot call.
func (n *SurveyNetwork) Adjacency(name string) []AdjacencyEntry {
	if n.adjacency == nil {
		n.buildAdjacency()
	}
	return n.adjacency[name]
}

func (n *SurveyNetwork) buildAdjacency() {
	n.adjacency = make(map[string][]AdjacencyEntry, len(n.Stations))
	for _, shot := range n.Shots {
		s := shot
		n.adjacency[s.From] = append(n.adjacency[s.From], AdjacencyEntry{Neighbour: s.To, Shot: s, Forward: true})
		n.adjacency[s.To] = append(n.adjacency[s.To], AdjacencyEntry{Neighbour: s.From, Shot: s, Forward: false})
	}
}

// OrientedDelta returns the Cartesian delta to travel from `from` along
// this adjacency entry: the shot's stored delta if traversed in its
// recorded direction, or its negation otherwise.
func (e AdjacencyEntry) OrientedDelta() vector.Vector3D {
	if e.Forward {
		return e.Shot.Delta
	}
	return e.Shot.Delta.Neg()
}

// SortedAnchors returns the network's anchor names in ascending
// lexicographic order, the order spec.md §4.7/§5 mandates for
// combinations(sorted(anchors), 2).
func (n *SurveyNetwork) SortedAnchors() []string {
	names := make([]string, 0, len(n.Anchors))
	for a := range n.Anchors {
		names = append(names, a)
	}
	sort.Strings(names)
	return names
}
