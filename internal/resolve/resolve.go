// Package resolve turns a project file entry's path into file bytes,
// abstracting over where a project's survey files actually live.
package resolve

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Resolver reads the bytes of a survey file named by a project entry. name
// is the path as declared in the project file; folder is a subfolder,
// relative to the resolver's root (empty for the root itself), that name is
// resolved inside.
type Resolver interface {
	Resolve(folder, name string) ([]byte, error)
}

// DirResolver reads survey files from a plain filesystem directory tree.
type DirResolver struct {
	root string
}

// NewDirResolver opens root as the base directory survey file paths are
// resolved against.
func NewDirResolver(root string) (*DirResolver, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", abs)
	}
	return &DirResolver{root: abs}, nil
}

// Resolve implements Resolver.
func (d *DirResolver) Resolve(folder, name string) ([]byte, error) {
	full := filepath.Join(d.root, folder, name)
	rel, err := filepath.Rel(d.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("path %q escapes resolver root", name)
	}
	content, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", full, err)
	}
	return content, nil
}

// GitResolver reads survey files out of a single fixed commit of a Git
// repository, so a project can be reproduced from exactly the state it was
// authored against.
type GitResolver struct {
	commit *object.Commit
}

// NewGitResolver opens the repository at repoPath and resolves ref (a
// branch name, tag, or commit hash) to the commit files are read from.
func NewGitResolver(repoPath, ref string) (*GitResolver, error) {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return nil, fmt.Errorf("opening repository: %w", err)
	}
	commit, err := resolveCommit(repo, ref)
	if err != nil {
		return nil, err
	}
	return &GitResolver{commit: commit}, nil
}

func resolveCommit(repo *git.Repository, ref string) (*object.Commit, error) {
	if r, err := repo.Reference(plumbing.NewBranchReferenceName(ref), true); err == nil {
		return repo.CommitObject(r.Hash())
	}
	if r, err := repo.Reference(plumbing.NewTagReferenceName(ref), true); err == nil {
		return repo.CommitObject(r.Hash())
	}
	hash := plumbing.NewHash(ref)
	commit, err := repo.CommitObject(hash)
	if err != nil {
		return nil, fmt.Errorf("resolving ref %q: not a branch, tag, or commit hash", ref)
	}
	return commit, nil
}

// Resolve implements Resolver.
func (g *GitResolver) Resolve(folder, name string) ([]byte, error) {
	path := name
	if folder != "" {
		path = filepath.ToSlash(filepath.Join(folder, name))
	}
	tree, err := g.commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("getting tree: %w", err)
	}
	f, err := tree.File(path)
	if err != nil {
		return nil, fmt.Errorf("getting file %s: %w", path, err)
	}
	reader, err := f.Reader()
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", path, err)
	}
	defer reader.Close()
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return content, nil
}
