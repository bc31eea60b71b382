package network

import (
	"path/filepath"
	"strings"

	"compassnet/internal/diag"
	"compassnet/internal/format"
	"compassnet/internal/geomag"
	"compassnet/internal/kernel"
	"compassnet/internal/project"
	"compassnet/internal/survey"
	"compassnet/internal/vector"
)

const metersToFeet = 3.280839895

// FileSurvey pairs one project file entry with the parsed survey data it
// points to.
type FileSurvey struct {
	Entry project.FileEntry
	File  survey.File
}

// Assemble builds a SurveyNetwork from an ordered list of files and their
// parsed survey content, applying link-based renaming and fixed-station
// materialisation exactly as spec.md §4.5 describes. Declination handling
// and convergence-enablement are driven by proj.Flags and each file's
// declared convergence choice.
func Assemble(proj project.Project, files []FileSurvey, bag *diag.Bag) *SurveyNetwork {
	net := New()
	seenGlobal := make(map[string]bool) // names that have entered the global namespace

	for _, fs := range files {
		stem := fileStem(fs.Entry.Path)
		linkSet := make(map[string]bool, len(fs.Entry.Links))
		for _, l := range fs.Entry.Links {
			linkSet[l] = true
		}

		rename := make(map[string]string) // local name -> network name, this file only
		resolve := func(local string) string {
			if networkName, ok := rename[local]; ok {
				return networkName
			}
			var networkName string
			switch {
			case linkSet[local] && seenGlobal[local]:
				networkName = local
			case seenGlobal[local]:
				networkName = stem + ":" + local
				bag.Add(diag.KindNetworkDuplicate, diag.SeverityWarning, fs.Entry.Path, 0,
					"station %q collides with an existing station and is not a link; renamed to %q", local, networkName)
			default:
				networkName = local
			}
			rename[local] = networkName
			seenGlobal[networkName] = true
			return networkName
		}

		applyConvergence, convergence := resolveConvergence(proj)

		for _, surv := range fs.File.Surveys {
			hdr := surv.Header
			hdr.Declination = resolveDeclination(proj, surv.Header, fs.Entry.Path, bag)
			attach := resolveLRUDAttach(surv.Header.Format.Attach, proj.Flags)

			for _, shot := range surv.Shots {
				from := resolve(shot.From)
				to := resolve(shot.To)

				d := kernel.Reduce(shot, hdr, applyConvergence, convergence, fs.Entry.Path, bag)

				net.AddShot(NetworkShot{
					From:        from,
					To:          to,
					Delta:       d.Vector,
					Length:      d.Length,
					Heading:     d.Heading,
					Inclination: d.Inclination,
					Flags:       effectiveFlags(shot.Flags, proj.Flags),
					Source:      fs.Entry.Path,
					Index:       shot.Index,
					Left:        shot.LRUD.Left,
					Up:          shot.LRUD.Up,
					Down:        shot.LRUD.Down,
					Right:       shot.LRUD.Right,
					Attach:      attach,
				})
			}
		}

		for _, fixed := range fs.Entry.Fixed {
			name := resolve(fixed.Name)
			if s, ok := net.Stations[name]; ok && s.Fixed {
				bag.Add(diag.KindNetworkDuplicate, diag.SeverityWarning, fs.Entry.Path, 0,
					"station %q already fixed by a previous file entry; keeping first declaration", name)
				continue
			}
			net.MarkFixed(name, fixedPosition(fixed))
		}
	}

	for name, s := range net.Stations {
		if !s.Fixed && len(net.Adjacency(name)) == 0 {
			bag.Warning(diag.KindNetworkDisconnected, "", 0, "station %q has no shots", name)
		}
	}

	return net
}

// resolveConvergence decides whether convergence should be subtracted, and
// by how much, per spec.md's stated resolution of an otherwise-undocumented
// interaction: flag V enables application, '%' supplies the value once
// enabled, and '*' disables application outright regardless of V.
func resolveConvergence(proj project.Project) (apply bool, degrees float64) {
	if proj.ConvergenceOverride.Set && !proj.ConvergenceOverride.Enabled {
		return false, 0
	}
	if !proj.Flags.ApplyConvergence {
		return false, 0
	}
	if proj.ConvergenceOverride.Set {
		return true, proj.ConvergenceOverride.Value
	}
	return true, proj.Base.Convergence
}

// resolveDeclination picks the declination value fed into the shot-to-delta
// kernel, per spec.md §4.5/§6's I/E/A project flags: I discards the
// file-entered value outright, E takes it as entered (the default when no
// flag is set), and A replaces it with a value computed from the project's
// base location and the survey's date via the geomagnetic model. A base
// location is required to compute anything; lacking one, A falls back to
// the entered value with a diagnostic rather than silently guessing zero.
func resolveDeclination(proj project.Project, hdr survey.Header, source string, bag *diag.Bag) float64 {
	switch {
	case proj.Flags.DeclinationIgnore:
		return 0
	case proj.Flags.DeclinationComputed:
		if !proj.Base.Set {
			bag.Warning(diag.KindProjectStructure, source, 0,
				"declination flag A set but project has no base location; using entered declination")
			return hdr.Declination
		}
		lon, lat := geomag.ApproxUTMToLatLon(proj.Base.East, proj.Base.North, proj.Base.Zone)
		return geomag.Default.Declination(lon, lat, proj.Base.Elevation, hdr.Date)
	default:
		return hdr.Declination
	}
}

// resolveLRUDAttach picks which endpoint a shot's LRUD measurements are
// pinned to, per spec.md §4.5: project flag O overrides the survey file's
// own format-descriptor attach character, with T/t choosing to/from once
// overridden.
func resolveLRUDAttach(fileAttach format.LRUDAttach, pf project.Flags) format.LRUDAttach {
	if !pf.OverrideLRUDAttach {
		return fileAttach
	}
	if pf.AttachToStation {
		return format.AttachTo
	}
	return format.AttachFrom
}

func fixedPosition(fs project.FixedStation) vector.Vector3D {
	e, n, up := fs.East, fs.North, fs.Elev
	if fs.Unit == project.FixedMeters {
		e *= metersToFeet
		n *= metersToFeet
		up *= metersToFeet
	}
	return vector.Vector3D{East: e, North: n, Up: up}
}

func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// effectiveFlags gates a shot's raw L/P/X/C flags against the project's
// flag overrides, per spec.md §4.5: "if the project enables X/P/L/C/S
// honours those shot flags; if the corresponding lowercase is set, the
// flag is ignored." S is the master switch for shot-flag handling; a shot
// flag also needs its own specific letter enabled to take effect, so a
// project that never issues a `!` record at all (S defaults false, as does
// every letter, per compass_lib/project/models.py) honours none of them.
func effectiveFlags(fs survey.FlagSet, pf project.Flags) map[ShotFlag]bool {
	if len(fs) == 0 || !pf.ApplyShotFlags {
		return nil
	}
	out := make(map[ShotFlag]bool, len(fs))
	for f := range fs {
		if flagEnabled(ShotFlag(f), pf) {
			out[ShotFlag(f)] = true
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func flagEnabled(f ShotFlag, pf project.Flags) bool {
	switch f {
	case FlagExcludeAll:
		return pf.ApplyExclusionX
	case FlagExcludePlot:
		return pf.ApplyExclusionP
	case FlagExcludeLength:
		return pf.ApplyExclusionL
	case FlagNoAdjust:
		return pf.ApplyExclusionC
	default:
		return false
	}
}
