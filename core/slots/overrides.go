package slots

import "sync"

// Window is a per-date (start hour, end hour) pair compressing or
// shifting the default working day.
type Window struct {
	StartHour int
	EndHour   int
}

// DefaultWindow is the window used for dates without an override.
func DefaultWindow() Window {
	return Window{StartHour: DefaultStartHour, EndHour: DefaultEndHour}
}

// Overrides is the explicit registry of day timing overrides, owned by the
// engine and injected into the pure allocation functions.
type Overrides struct {
	mu sync.RWMutex
	m  map[string]Window
}

// NewOverrides creates an empty registry.
func NewOverrides() *Overrides {
	return &Overrides{m: make(map[string]Window)}
}

// Get returns the window for a date, defaulting to the full day.
func (o *Overrides) Get(date string) Window {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if w, ok := o.m[date]; ok {
		return w
	}
	return DefaultWindow()
}

// Has reports whether the date carries an explicit override.
func (o *Overrides) Has(date string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, ok := o.m[date]
	return ok
}

// Set stores an override, filling missing bounds from the default window.
func (o *Overrides) Set(date string, w Window) {
	if w.StartHour <= 0 {
		w.StartHour = DefaultStartHour
	}
	if w.EndHour <= 0 {
		w.EndHour = DefaultEndHour
	}
	o.mu.Lock()
	o.m[date] = w
	o.mu.Unlock()
}

// Clear removes the override for a date.
func (o *Overrides) Clear(date string) {
	o.mu.Lock()
	delete(o.m, date)
	o.mu.Unlock()
}
