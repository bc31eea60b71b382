// Package main provides the compassnet CLI: a minimal driver that parses a
// project descriptor and its linked survey files, assembles them into a
// station network, and prints each station's adjusted position. It exists
// to exercise the core pipeline end to end, not as a full cave-survey
// application surface.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"compassnet/internal/cache"
	"compassnet/internal/diag"
	"compassnet/internal/network"
	"compassnet/internal/project"
	"compassnet/internal/resolve"
	"compassnet/internal/solver"
	"compassnet/internal/survey"
	"compassnet/internal/vector"
)

var identityFlag bool

var rootCmd = &cobra.Command{
	Use:   "compassnet",
	Short: "Resolve a cave survey project into adjusted station positions",
	Long:  "compassnet parses a project descriptor and its linked survey files, assembles them into a single station network, and prints each station's adjusted position.",
}

var solveCmd = &cobra.Command{
	Use:   "solve <project-file>",
	Short: "Parse, assemble, propagate, and adjust a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runSolve,
}

func init() {
	solveCmd.Flags().BoolVar(&identityFlag, "identity", false, "skip traverse adjustment; report raw BFS propagation")
	rootCmd.AddCommand(solveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runSolve(cmd *cobra.Command, args []string) error {
	projectPath := args[0]
	projectDir := filepath.Dir(projectPath)

	raw, err := os.ReadFile(projectPath)
	if err != nil {
		return fmt.Errorf("reading project file: %w", err)
	}

	bag := &diag.Bag{}
	parseCache := cache.New()

	proj, ok := parseCache.Project(raw)
	if !ok {
		proj, err = project.Parse(projectPath, raw, bag)
		if err != nil {
			return fmt.Errorf("parsing project: %w", err)
		}
		parseCache.StoreProject(raw, proj)
	}
	proj.Files, err = project.ExpandGlobs(proj.Files, projectDir)
	if err != nil {
		return fmt.Errorf("expanding file-entry globs: %w", err)
	}

	resolver, err := resolve.NewDirResolver(projectDir)
	if err != nil {
		return fmt.Errorf("opening survey directory: %w", err)
	}

	files, err := loadSurveyFiles(proj, resolver, parseCache, bag)
	if err != nil {
		return err
	}

	net := network.Assemble(proj, files, bag)

	var adjuster solver.SurveyAdjuster = solver.Proportional{}
	if identityFlag {
		adjuster = solver.Identity{}
	}
	positions := adjuster.Adjust(net, bag)

	printPositions(net, positions)
	printDiagnostics(bag)
	return nil
}

func loadSurveyFiles(proj project.Project, resolver resolve.Resolver, parseCache *cache.ParseCache, bag *diag.Bag) ([]network.FileSurvey, error) {
	files := make([]network.FileSurvey, 0, len(proj.Files))
	for _, entry := range proj.Files {
		content, err := resolver.Resolve("", entry.Path)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", entry.Path, err)
		}
		surveyFile, ok := parseCache.Survey(content)
		if !ok {
			surveyFile = survey.Parse(entry.Path, content, bag)
			parseCache.StoreSurvey(content, surveyFile)
		}
		files = append(files, network.FileSurvey{Entry: entry, File: surveyFile})
	}
	return files, nil
}

func printPositions(net *network.SurveyNetwork, positions map[string]vector.Vector3D) {
	names := make([]string, 0, len(positions))
	for name := range positions {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Printf("%-24s %12s %12s %12s %10s\n", "STATION", "EAST", "NORTH", "UP", "ORIGIN")
	for _, name := range names {
		p := positions[name]
		origin := "propagated"
		if s, ok := net.Stations[name]; ok && s.Fixed {
			origin = "fixed"
		}
		fmt.Printf("%-24s %12.2f %12.2f %12.2f %10s\n", name, p.East, p.North, p.Up, origin)
	}
}

func printDiagnostics(bag *diag.Bag) {
	for _, d := range bag.All() {
		fmt.Fprintf(os.Stderr, "%s: %s\n", d.Severity, d.Error())
	}
}
