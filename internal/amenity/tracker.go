package amenity

// Display receives the summary text after every change.
type Display interface {
	SetAmenitySummary(text string)
}

// Tracker owns a Selection and mirrors it into a Display.
type Tracker struct {
	sel     *Selection
	display Display
}

// NewTracker binds sel to d and paints the current summary. A nil sel starts
// empty.
func NewTracker(sel *Selection, d Display) *Tracker {
	if sel == nil {
		sel = &Selection{}
	}
	t := &Tracker{sel: sel, display: d}
	t.paint()
	return t
}

// Toggle applies the change and updates the display before returning the
// new summary.
func (t *Tracker) Toggle(id, name string, checked bool) string {
	t.sel.Toggle(id, name, checked)
	return t.paint()
}

func (t *Tracker) Summary() string { return t.sel.Summary() }

func (t *Tracker) paint() string {
	summary := t.sel.Summary()
	if t.display != nil {
		t.display.SetAmenitySummary(summary)
	}
	return summary
}
