package config

import "sync/atomic"

// Store holds the process-wide Settings reference. Readers get a copy;
// replacing the settings swaps the reference atomically.
type Store struct {
	current atomic.Pointer[Settings]
}

func NewStore(s Settings) *Store {
	st := &Store{}
	st.current.Store(&s)
	return st
}

// Settings returns a copy of the current settings
func (st *Store) Settings() Settings {
	return *st.current.Load()
}

// Replace installs s and returns the settings it replaced
func (st *Store) Replace(s Settings) Settings {
	return *st.current.Swap(&s)
}
