package network

import (
	"testing"

	"compassnet/internal/diag"
	"compassnet/internal/format"
	"compassnet/internal/project"
	"compassnet/internal/survey"
	"compassnet/internal/vector"
)

func TestAddShotDropsExcludedAll(t *testing.T) {
	n := New()
	n.AddShot(NetworkShot{From: "A", To: "B", Flags: map[ShotFlag]bool{FlagExcludeAll: true}})
	if len(n.Shots) != 0 {
		t.Fatalf("expected X-flagged shot to be dropped, got %d shots", len(n.Shots))
	}
	if _, ok := n.Stations["A"]; ok {
		t.Errorf("station A should not have been created for a dropped shot")
	}
}

func TestAddShotKeepsOtherFlags(t *testing.T) {
	n := New()
	n.AddShot(NetworkShot{From: "A", To: "B", Flags: map[ShotFlag]bool{FlagExcludeLength: true}})
	if len(n.Shots) != 1 {
		t.Fatalf("expected 1 shot, got %d", len(n.Shots))
	}
	if !n.Shots[0].HasFlag(FlagExcludeLength) {
		t.Errorf("expected L flag to survive")
	}
	if n.Shots[0].HasFlag(FlagExcludeAll) {
		t.Errorf("unexpected X flag")
	}
}

func TestMarkFixedSetsOriginAndAnchor(t *testing.T) {
	n := New()
	n.MarkFixed("A", vector.Vector3D{East: 1, North: 2, Up: 3})
	s := n.Stations["A"]
	if !s.Fixed {
		t.Errorf("expected station to be fixed")
	}
	if s.Origin != "self" {
		t.Errorf("origin = %q, want \"self\"", s.Origin)
	}
	if !n.Anchors["A"] {
		t.Errorf("expected A to be registered as an anchor")
	}
	if s.Position.East != 1 || s.Position.North != 2 || s.Position.Up != 3 {
		t.Errorf("position = %+v, want (1,2,3)", s.Position)
	}
}

func TestAdjacencyBidirectional(t *testing.T) {
	n := New()
	n.AddShot(NetworkShot{From: "A", To: "B", Delta: vector.Vector3D{East: 10}})

	aAdj := n.Adjacency("A")
	if len(aAdj) != 1 || aAdj[0].Neighbour != "B" || !aAdj[0].Forward {
		t.Fatalf("A's adjacency = %+v, want single forward entry to B", aAdj)
	}
	if got := aAdj[0].OrientedDelta(); got.East != 10 {
		t.Errorf("A->B oriented delta = %+v, want East=10", got)
	}

	bAdj := n.Adjacency("B")
	if len(bAdj) != 1 || bAdj[0].Neighbour != "A" || bAdj[0].Forward {
		t.Fatalf("B's adjacency = %+v, want single reverse entry to A", bAdj)
	}
	if got := bAdj[0].OrientedDelta(); got.East != -10 {
		t.Errorf("B->A oriented delta = %+v, want East=-10", got)
	}
}

func TestAdjacencyInsertionOrder(t *testing.T) {
	n := New()
	n.AddShot(NetworkShot{From: "A", To: "C"})
	n.AddShot(NetworkShot{From: "A", To: "B"})
	adj := n.Adjacency("A")
	if len(adj) != 2 || adj[0].Neighbour != "C" || adj[1].Neighbour != "B" {
		t.Fatalf("adjacency order = %+v, want [C, B] (insertion order)", adj)
	}
}

func TestAdjacencyCacheInvalidatedByAddShot(t *testing.T) {
	n := New()
	n.AddShot(NetworkShot{From: "A", To: "B"})
	_ = n.Adjacency("A") // populate cache
	n.AddShot(NetworkShot{From: "A", To: "C"})
	adj := n.Adjacency("A")
	if len(adj) != 2 {
		t.Fatalf("expected cache to be rebuilt after AddShot, got %d entries", len(adj))
	}
}

func TestSortedAnchorsOrdering(t *testing.T) {
	n := New()
	n.MarkFixed("Z1", vector.Vector3D{})
	n.MarkFixed("A1", vector.Vector3D{})
	n.MarkFixed("M1", vector.Vector3D{})
	got := n.SortedAnchors()
	want := []string{"A1", "M1", "Z1"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func makeShot(from, to string, length, azimuth, inclination float64) survey.Shot {
	return survey.Shot{From: from, To: to, Length: length, Azimuth: azimuth, Inclination: inclination}
}

func TestAssembleLinkRenaming(t *testing.T) {
	// Scenario: file1 declares X1 and P; file2 links P, and separately
	// declares its own X1 and X2. Since P is link-listed and already global,
	// it stays P. file2's X1 collides with the global namespace and is not
	// link-listed, so it is renamed "file2:X1".
	file1 := FileSurvey{
		Entry: project.FileEntry{Path: "file1.dat"},
		File: survey.File{Surveys: []survey.Survey{{
			Header: survey.Header{Format: format.Default},
			Shots:  []survey.Shot{makeShot("X1", "P", 10, 0, 0)},
		}}},
	}
	file2 := FileSurvey{
		Entry: project.FileEntry{Path: "file2.dat", Links: []string{"P"}},
		File: survey.File{Surveys: []survey.Survey{{
			Header: survey.Header{Format: format.Default},
			Shots: []survey.Shot{
				makeShot("P", "X2", 10, 90, 0),
				makeShot("X2", "X1", 10, 180, 0),
			},
		}}},
	}

	bag := &diag.Bag{}
	proj := project.Project{}
	net := Assemble(proj, []FileSurvey{file1, file2}, bag)

	if _, ok := net.Stations["X1"]; !ok {
		t.Errorf("expected file1's X1 to keep its bare name")
	}
	if _, ok := net.Stations["P"]; !ok {
		t.Errorf("expected linked station P to keep its bare name")
	}
	if _, ok := net.Stations["file2:X1"]; !ok {
		t.Errorf("expected file2's colliding X1 to be renamed to file2:X1")
	}
	if _, ok := net.Stations["X2"]; !ok {
		t.Errorf("expected file2's X2 to keep its bare name")
	}
}

func TestAssembleDuplicateFixedStationWarns(t *testing.T) {
	file1 := FileSurvey{
		Entry: project.FileEntry{
			Path:  "file1.dat",
			Fixed: []project.FixedStation{{Name: "A", Unit: project.FixedFeet, East: 0, North: 0, Elev: 0}},
		},
	}
	file2 := FileSurvey{
		Entry: project.FileEntry{
			Path:  "file2.dat",
			Fixed: []project.FixedStation{{Name: "A", Unit: project.FixedFeet, East: 100, North: 100, Elev: 0}},
		},
	}
	bag := &diag.Bag{}
	net := Assemble(project.Project{}, []FileSurvey{file1, file2}, bag)

	s := net.Stations["A"]
	if s.Position.East != 0 {
		t.Errorf("expected first fixed declaration to win, got East=%v", s.Position.East)
	}
	found := false
	for _, d := range bag.All() {
		if d.Kind == diag.KindNetworkDuplicate {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a network.duplicate diagnostic")
	}
}

func TestAssembleIgnoresShotFlagsByDefault(t *testing.T) {
	shot := makeShot("A", "B", 10, 0, 0)
	shot.Flags = survey.FlagSet{survey.FlagExcludeAll: true}
	file1 := FileSurvey{
		Entry: project.FileEntry{Path: "file1.dat"},
		File: survey.File{Surveys: []survey.Survey{{
			Header: survey.Header{Format: format.Default},
			Shots:  []survey.Shot{shot},
		}}},
	}
	bag := &diag.Bag{}
	net := Assemble(project.Project{}, []FileSurvey{file1}, bag)

	if len(net.Shots) != 1 {
		t.Fatalf("expected the X-flagged shot to survive when the project never enables shot flags, got %d shots", len(net.Shots))
	}
}

func TestAssembleHonoursExclusionXWhenEnabled(t *testing.T) {
	shot := makeShot("A", "B", 10, 0, 0)
	shot.Flags = survey.FlagSet{survey.FlagExcludeAll: true}
	file1 := FileSurvey{
		Entry: project.FileEntry{Path: "file1.dat"},
		File: survey.File{Surveys: []survey.Survey{{
			Header: survey.Header{Format: format.Default},
			Shots:  []survey.Shot{shot},
		}}},
	}
	proj := project.Project{Flags: project.Flags{ApplyShotFlags: true, ApplyExclusionX: true}}
	bag := &diag.Bag{}
	net := Assemble(proj, []FileSurvey{file1}, bag)

	if len(net.Shots) != 0 {
		t.Fatalf("expected the X-flagged shot to be dropped once the project enables S and X, got %d shots", len(net.Shots))
	}
}

func TestAssembleRequiresMasterShotFlagSwitch(t *testing.T) {
	shot := makeShot("A", "B", 10, 0, 0)
	shot.Flags = survey.FlagSet{survey.FlagExcludeAll: true}
	file1 := FileSurvey{
		Entry: project.FileEntry{Path: "file1.dat"},
		File: survey.File{Surveys: []survey.Survey{{
			Header: survey.Header{Format: format.Default},
			Shots:  []survey.Shot{shot},
		}}},
	}
	// X enabled but S (the master switch) is not: spec.md §4.5 requires both.
	proj := project.Project{Flags: project.Flags{ApplyExclusionX: true}}
	bag := &diag.Bag{}
	net := Assemble(proj, []FileSurvey{file1}, bag)

	if len(net.Shots) != 1 {
		t.Fatalf("expected the X-flagged shot to survive without the S master switch, got %d shots", len(net.Shots))
	}
}

func TestAssembleDeclinationIgnoredWhenFlagI(t *testing.T) {
	shot := makeShot("A", "B", 10, 0, 0)
	file1 := FileSurvey{
		Entry: project.FileEntry{Path: "file1.dat"},
		File: survey.File{Surveys: []survey.Survey{{
			Header: survey.Header{Format: format.Default, Declination: 20},
			Shots:  []survey.Shot{shot},
		}}},
	}
	proj := project.Project{Flags: project.Flags{DeclinationIgnore: true}}
	bag := &diag.Bag{}
	net := Assemble(proj, []FileSurvey{file1}, bag)

	if got := net.Shots[0].Heading; got != 0 {
		t.Errorf("heading = %v, want 0 with declination ignored", got)
	}
}

func TestAssembleDeclinationAsEnteredIsDefault(t *testing.T) {
	shot := makeShot("A", "B", 10, 0, 0)
	file1 := FileSurvey{
		Entry: project.FileEntry{Path: "file1.dat"},
		File: survey.File{Surveys: []survey.Survey{{
			Header: survey.Header{Format: format.Default, Declination: 20},
			Shots:  []survey.Shot{shot},
		}}},
	}
	bag := &diag.Bag{}
	net := Assemble(project.Project{}, []FileSurvey{file1}, bag)

	if got := net.Shots[0].Heading; got != 20 {
		t.Errorf("heading = %v, want 20 (entered declination applied by default)", got)
	}
}

func TestAssembleDeclinationComputedWithoutBaseFallsBack(t *testing.T) {
	shot := makeShot("A", "B", 10, 0, 0)
	file1 := FileSurvey{
		Entry: project.FileEntry{Path: "file1.dat"},
		File: survey.File{Surveys: []survey.Survey{{
			Header: survey.Header{Format: format.Default, Declination: 20},
			Shots:  []survey.Shot{shot},
		}}},
	}
	proj := project.Project{Flags: project.Flags{DeclinationComputed: true}}
	bag := &diag.Bag{}
	net := Assemble(proj, []FileSurvey{file1}, bag)

	if got := net.Shots[0].Heading; got != 20 {
		t.Errorf("heading = %v, want 20 (fallback to entered declination without a base location)", got)
	}
	found := false
	for _, d := range bag.All() {
		if d.Kind == diag.KindProjectStructure {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a project.structure diagnostic when flag A has no base location to compute from")
	}
}

func TestAssembleDeclinationComputedUsesGeomagModel(t *testing.T) {
	shot := makeShot("A", "B", 10, 0, 0)
	file1 := FileSurvey{
		Entry: project.FileEntry{Path: "file1.dat"},
		File: survey.File{Surveys: []survey.Survey{{
			Header: survey.Header{Format: format.Default, Declination: 20},
			Shots:  []survey.Shot{shot},
		}}},
	}
	proj := project.Project{
		Flags: project.Flags{DeclinationComputed: true},
		Base:  project.BaseLocation{Set: true, East: 500000, North: 4000000, Zone: 15},
	}
	bag := &diag.Bag{}
	net := Assemble(proj, []FileSurvey{file1}, bag)

	if got := net.Shots[0].Heading; got == 20 {
		t.Errorf("heading = %v, expected the computed declination to replace the entered 20", got)
	}
	for _, d := range bag.All() {
		if d.Kind == diag.KindProjectStructure {
			t.Errorf("unexpected project.structure diagnostic with a base location present: %v", d)
		}
	}
}

func TestAssembleCarriesLRUDAndDefaultAttach(t *testing.T) {
	shot := makeShot("A", "B", 10, 0, 0)
	shot.LRUD = survey.LRUD{Left: 1, Up: 2, Down: 3, Right: 4}
	file1 := FileSurvey{
		Entry: project.FileEntry{Path: "file1.dat"},
		File: survey.File{Surveys: []survey.Survey{{
			Header: survey.Header{Format: format.Default},
			Shots:  []survey.Shot{shot},
		}}},
	}
	bag := &diag.Bag{}
	net := Assemble(project.Project{}, []FileSurvey{file1}, bag)

	got := net.Shots[0]
	if got.Left != 1 || got.Up != 2 || got.Down != 3 || got.Right != 4 {
		t.Errorf("LRUD = %+v, want (1,2,3,4)", got)
	}
	if got.Attach != format.AttachFrom {
		t.Errorf("Attach = %v, want AttachFrom (file's format descriptor default)", got.Attach)
	}
}

func TestAssembleOverridesLRUDAttachFromProjectFlags(t *testing.T) {
	shot := makeShot("A", "B", 10, 0, 0)
	file1 := FileSurvey{
		Entry: project.FileEntry{Path: "file1.dat"},
		File: survey.File{Surveys: []survey.Survey{{
			Header: survey.Header{Format: format.Default},
			Shots:  []survey.Shot{shot},
		}}},
	}
	proj := project.Project{Flags: project.Flags{OverrideLRUDAttach: true, AttachToStation: true}}
	bag := &diag.Bag{}
	net := Assemble(proj, []FileSurvey{file1}, bag)

	if got := net.Shots[0].Attach; got != format.AttachTo {
		t.Errorf("Attach = %v, want AttachTo when project flags O and T are both set", got)
	}
}

func TestAssembleDisconnectedStationWarns(t *testing.T) {
	file1 := FileSurvey{
		Entry: project.FileEntry{
			Path:  "file1.dat",
			Fixed: []project.FixedStation{{Name: "Lonely", Unit: project.FixedFeet}},
		},
	}
	bag := &diag.Bag{}
	Assemble(project.Project{}, []FileSurvey{file1}, bag)
	// Lonely is fixed, so it should NOT trigger a disconnected warning.
	for _, d := range bag.All() {
		if d.Kind == diag.KindNetworkDisconnected {
			t.Errorf("fixed station with no shots should not be reported disconnected")
		}
	}
}
