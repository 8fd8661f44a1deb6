// Package page models the browser-side state a search touches: the results
// container and the CSS classes on the page body.
package page

import (
	"slices"
	"sync"
	"time"
)

// Page is one results container plus the page body's class set.
// It is safe for concurrent use.
type Page struct {
	mu          sync.Mutex
	content     string
	visible     bool
	transition  time.Duration
	bodyClasses []string
}

// New creates an empty, hidden page.
func New() *Page {
	return &Page{}
}

// SetContent replaces the container's HTML.
func (p *Page) SetContent(html string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.content = html
}

// Content returns the container's HTML.
func (p *Page) Content() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.content
}

// Show makes the container visible over d.
func (p *Page) Show(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visible = true
	p.transition = d
}

// Hide hides the container over d.
func (p *Page) Hide(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visible = false
	p.transition = d
}

// Visible reports whether the container is shown.
func (p *Page) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible
}

// LastTransition returns the duration of the most recent show or hide.
func (p *Page) LastTransition() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.transition
}

// AddBodyClass adds class to the body if not already present.
func (p *Page) AddBodyClass(class string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !slices.Contains(p.bodyClasses, class) {
		p.bodyClasses = append(p.bodyClasses, class)
	}
}

// RemoveBodyClass removes class from the body. Missing classes are ignored.
func (p *Page) RemoveBodyClass(class string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bodyClasses = slices.DeleteFunc(p.bodyClasses, func(c string) bool { return c == class })
}

// HasBodyClass reports whether the body carries class.
func (p *Page) HasBodyClass(class string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Contains(p.bodyClasses, class)
}

// BodyClasses returns the body's classes in insertion order.
func (p *Page) BodyClasses() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.bodyClasses)
}
