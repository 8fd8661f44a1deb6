package page

import "time"

const (
	ShowDuration       = 400 * time.Millisecond
	HideDuration       = 5 * time.Millisecond
	BodyClassModalOpen = "modal-open"
)

// State is the modal's lifecycle state.
type State int

const (
	Closed State = iota
	Open
)

func (s State) String() string {
	if s == Open {
		return "open"
	}
	return "closed"
}

// Modal drives a page's results container as a dialog. The modal is open
// exactly when the container is visible, so any number of Modals over the
// same page agree on its state.
type Modal struct {
	page *Page
}

// NewModal attaches a modal to p.
func NewModal(p *Page) *Modal {
	return &Modal{page: p}
}

// Page returns the page the modal is attached to.
func (m *Modal) Page() *Page {
	return m.page
}

// State returns the current state.
func (m *Modal) State() State {
	if m.page.Visible() {
		return Open
	}
	return Closed
}

// Open shows the container and marks the body as having an open modal.
// Opening an open modal replays the show transition.
func (m *Modal) Open() {
	m.page.Show(ShowDuration)
	m.page.AddBodyClass(BodyClassModalOpen)
}

// Dismiss hides the container and removes the modal-open marker.
// Dismissing a closed modal does nothing.
func (m *Modal) Dismiss() {
	if m.State() == Closed {
		return
	}
	m.page.Hide(HideDuration)
	m.page.RemoveBodyClass(BodyClassModalOpen)
}
