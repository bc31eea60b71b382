// Package cache memoises project and survey parsing by the content digest
// of the bytes that produced each result, so re-resolving an unchanged file
// never re-runs the parser.
package cache

import (
	"encoding/hex"
	"sync"

	"lukechampine.com/blake3"

	"compassnet/internal/project"
	"compassnet/internal/survey"
)

// Digest returns the BLAKE3 hex digest of content, the key every cache entry
// is stored under.
func Digest(content []byte) string {
	sum := blake3.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// ParseCache holds already-parsed projects and survey files keyed by the
// digest of the bytes they were parsed from. It never expires entries; a
// caller that wants a fresh parse of changed bytes gets one automatically
// because the digest changes.
type ParseCache struct {
	mu       sync.Mutex
	projects map[string]project.Project
	surveys  map[string]survey.File
}

// New returns an empty ParseCache.
func New() *ParseCache {
	return &ParseCache{
		projects: make(map[string]project.Project),
		surveys:  make(map[string]survey.File),
	}
}

// Project returns the cached project for content's digest, if present.
func (c *ParseCache) Project(content []byte) (project.Project, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.projects[Digest(content)]
	return p, ok
}

// StoreProject caches p under content's digest.
func (c *ParseCache) StoreProject(content []byte, p project.Project) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.projects[Digest(content)] = p
}

// Survey returns the cached survey file for content's digest, if present.
func (c *ParseCache) Survey(content []byte) (survey.File, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.surveys[Digest(content)]
	return f, ok
}

// StoreSurvey caches f under content's digest.
func (c *ParseCache) StoreSurvey(content []byte, f survey.File) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.surveys[Digest(content)] = f
}

// Len reports the total number of cached entries across both tables.
func (c *ParseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.projects) + len(c.surveys)
}

// Clear empties the cache.
func (c *ParseCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.projects = make(map[string]project.Project)
	c.surveys = make(map[string]survey.File)
}
