package zammi

// DialoguePage is one page of a dialogue box.
type DialoguePage struct {
	Text  string `yaml:"text"`
	Image string `yaml:"image,omitempty"`
}

// DialogueStep reports what an input did to a dialogue.
type DialogueStep int

const (
	DialogueIgnored DialogueStep = iota
	DialogueNextPage
	DialogueFinished
)

// Dialogue is a paged text box. The page index resets whenever the box is
// dismissed.
type Dialogue struct {
	ID    string
	pages []DialoguePage

	// OnFinish names an action run after the last page is dismissed, such
	// as "video:<path>".
	OnFinish string

	index     int
	visible   bool
	dismissed bool
}

// NewDialogue returns a hidden dialogue over pages.
func NewDialogue(id string, pages ...DialoguePage) *Dialogue {
	return &Dialogue{ID: id, pages: pages}
}

// Show makes the dialogue visible unless it has no pages.
func (d *Dialogue) Show() {
	if len(d.pages) == 0 {
		return
	}
	d.visible = true
	d.dismissed = false
}

// Hide hides the dialogue without counting as a dismissal.
func (d *Dialogue) Hide() {
	d.visible = false
}

// Rewind returns to the first page without changing visibility.
func (d *Dialogue) Rewind() {
	d.index = 0
}

// Visible reports whether the box is shown.
func (d *Dialogue) Visible() bool { return d.visible }

// Dismissed reports whether the player closed the box on its last page
// since it was last shown.
func (d *Dialogue) Dismissed() bool { return d.dismissed }

// PageIndex returns the zero-based current page.
func (d *Dialogue) PageIndex() int { return d.index }

// PageCount returns the number of pages.
func (d *Dialogue) PageCount() int { return len(d.pages) }

// Page returns the current page.
func (d *Dialogue) Page() DialoguePage {
	if len(d.pages) == 0 {
		return DialoguePage{}
	}
	return d.pages[d.index]
}

// SetPages replaces the pages and rewinds to the first one. Scenes use it to
// swap in the follow-up text once a challenge is done.
func (d *Dialogue) SetPages(pages ...DialoguePage) {
	d.pages = pages
	d.index = 0
	if len(pages) == 0 {
		d.visible = false
	}
}

// Advance moves to the next page, or dismisses the box on the last page.
func (d *Dialogue) Advance() DialogueStep {
	if !d.visible {
		return DialogueIgnored
	}
	if d.index+1 < len(d.pages) {
		d.index++
		return DialogueNextPage
	}
	d.index = 0
	d.visible = false
	d.dismissed = true
	return DialogueFinished
}

// Region returns the box area for a window: the bottom third, full width.
func (d *Dialogue) Region(win Size) Rect {
	h := float64(int(win.Height) / 3)
	return Rect{X: 0, Y: win.Height - h, Width: win.Width, Height: h}
}

// Click advances the dialogue when p falls inside its region.
func (d *Dialogue) Click(p Vec2, win Size) DialogueStep {
	if !d.visible || !d.Region(win).Contains(p.X, p.Y) {
		return DialogueIgnored
	}
	return d.Advance()
}
