package mention

// State is the observable popup state exposed to the rendering layer.
type State struct {
	Open        bool
	Trigger     string
	Query       string
	Items       []Item
	ActiveIndex int
	Loading     bool
	Position    Position
}

// Active returns the highlighted candidate.
func (s State) Active() (Item, bool) {
	if !s.Open || s.ActiveIndex < 0 || s.ActiveIndex >= len(s.Items) {
		return Item{}, false
	}
	return s.Items[s.ActiveIndex], true
}
