package search

import "sync/atomic"

// Holder publishes the current Service. A reload builds a complete new
// Service and swaps it in; readers never see a partially built one.
type Holder struct {
	p atomic.Pointer[Service]
}

// NewHolder creates a Holder serving svc.
func NewHolder(svc *Service) *Holder {
	h := &Holder{}
	h.p.Store(svc)
	return h
}

// Service returns the current service.
func (h *Holder) Service() *Service {
	return h.p.Load()
}

// Swap installs svc and returns the one it replaced.
func (h *Holder) Swap(svc *Service) *Service {
	return h.p.Swap(svc)
}
