package templates

import (
	"github.com/pkg/errors"
)

// Loader resolves a template path into a parsed Template. Import is the
// Loader used outside of tests.
type Loader func(path string) (*Template, error)

// Pending is a template load that was started in the background. Loads
// for several templates may run at the same time; callers join them one
// at a time, in the order they need them, with Wait.
type Pending struct {
	path string
	done chan struct{}

	tmpl *Template
	err  error
}

// Start begins loading path with load in a new goroutine.
func Start(path string, load Loader) *Pending {
	p := &Pending{path: path, done: make(chan struct{})}
	go func() {
		defer close(p.done)
		defer func() {
			if r := recover(); r != nil {
				p.tmpl, p.err = nil, errors.Errorf("loading template %s panicked: %v", path, r)
			}
		}()
		p.tmpl, p.err = load(path)
	}()
	return p
}

// Path returns the path the load was started for.
func (p *Pending) Path() string {
	return p.path
}

// Wait blocks until the load has finished and returns its result. Every
// call returns the same result.
func (p *Pending) Wait() (*Template, error) {
	<-p.done
	return p.tmpl, p.err
}
