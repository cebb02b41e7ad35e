package templates

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"text/template"
)

// Common errors
var (
	// ErrTemplateNotFound is returned when the named template does not exist.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrTemplateInvalid is returned when the template exists but fails to parse.
	ErrTemplateInvalid = errors.New("template failed to parse")
)

// Resolver loads and caches text templates from a file system.
type Resolver struct {
	fsys  fs.FS
	mu    sync.RWMutex
	cache map[string]*template.Template
}

// NewResolver creates a resolver backed by fsys, typically an embed.FS or
// os.DirFS of the deployment's template directory.
func NewResolver(fsys fs.FS) *Resolver {
	return &Resolver{
		fsys:  fsys,
		cache: make(map[string]*template.Template),
	}
}

// Resolve returns the parsed template for name, loading and parsing it on
// first use. Missing map keys error at execution time rather than rendering
// as "<no value>", which is what lets the renderer detect bad data.
func (r *Resolver) Resolve(name string) (*template.Template, error) {
	r.mu.RLock()
	tmpl, ok := r.cache[name]
	r.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	raw, err := fs.ReadFile(r.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrTemplateNotFound, name, err)
	}

	tmpl, err = template.New(name).Option("missingkey=error").Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrTemplateInvalid, name, err)
	}

	r.mu.Lock()
	// Two concurrent first resolves may both parse; last write wins and both
	// results are equivalent.
	r.cache[name] = tmpl
	r.mu.Unlock()

	return tmpl, nil
}
