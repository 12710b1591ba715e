package ui

import "sync"

// Snapshot is a point-in-time copy of a State.
type Snapshot struct {
	Busy        bool
	Notice      *Notice
	Table       Table
	HasTable    bool
	Modal       Detail
	ModalOpen   bool
	Enabled     map[Control]bool
	Revealed    map[Control]bool
	Suggestions []string
	// SuggestionsBound is false between a detach and the following attach.
	SuggestionsBound bool
	Navigated        string
}

// State is a View that records what it is told. It is safe for concurrent use.
type State struct {
	mu sync.RWMutex
	s  Snapshot
}

var _ View = (*State)(nil)

// NewState returns an empty state with every control hidden and disabled.
func NewState() *State {
	return &State{s: Snapshot{
		Enabled:  map[Control]bool{},
		Revealed: map[Control]bool{},
	}}
}

func (st *State) SetBusy(on bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.Busy = on
}

func (st *State) Notify(n Notice) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.Notice = &n
}

func (st *State) ShowTable(t Table) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.Table = t
	st.s.HasTable = true
}

func (st *State) ShowModal(d Detail) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.Modal = d
	st.s.ModalOpen = true
}

func (st *State) CloseModal() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.ModalOpen = false
}

func (st *State) SetEnabled(c Control, enabled bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.Enabled[c] = enabled
}

func (st *State) Reveal(c Control) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.Revealed[c] = true
}

func (st *State) DetachSuggestions() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.Suggestions = nil
	st.s.SuggestionsBound = false
}

func (st *State) AttachSuggestions(items []string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.Suggestions = append([]string(nil), items...)
	st.s.SuggestionsBound = true
}

func (st *State) Navigate(url string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.Navigated = url
}

// TakeNotice returns the pending notice and clears it.
func (st *State) TakeNotice() *Notice {
	st.mu.Lock()
	defer st.mu.Unlock()
	n := st.s.Notice
	st.s.Notice = nil
	return n
}

// TakeNavigation returns the pending download URL and clears it.
func (st *State) TakeNavigation() string {
	st.mu.Lock()
	defer st.mu.Unlock()
	u := st.s.Navigated
	st.s.Navigated = ""
	return u
}

// Snapshot returns a copy of the current state. The table rows are shared
// and must not be modified.
func (st *State) Snapshot() Snapshot {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := st.s
	out.Enabled = make(map[Control]bool, len(st.s.Enabled))
	for k, v := range st.s.Enabled {
		out.Enabled[k] = v
	}
	out.Revealed = make(map[Control]bool, len(st.s.Revealed))
	for k, v := range st.s.Revealed {
		out.Revealed[k] = v
	}
	out.Suggestions = append([]string(nil), st.s.Suggestions...)
	if st.s.Notice != nil {
		n := *st.s.Notice
		out.Notice = &n
	}
	return out
}
