package logic

// Navigation tracks whether the user is browsing the page carousel or
// looking at one selected page. Exactly one of the two modes holds.
type Navigation struct {
	index    int
	selected Page
	detail   bool
}

// Index returns the carousel position, in [0, PageCount).
func (n Navigation) Index() int {
	return n.index
}

// Mode returns the current navigation mode.
func (n Navigation) Mode() Mode {
	if n.detail {
		return ModeDetail
	}
	return ModeBrowse
}

// Selected returns the page shown in detail mode. ok is false while browsing.
func (n Navigation) Selected() (p Page, ok bool) {
	return n.selected, n.detail
}

// Current returns the page under the carousel cursor.
func (n Navigation) Current() Page {
	return Pages[n.index]
}

// Next advances the carousel by one page, wrapping around.
func (n *Navigation) Next() {
	n.index = (n.index + 1) % PageCount
}

// Prev moves the carousel back by one page, wrapping around.
func (n *Navigation) Prev() {
	n.index = (n.index - 1 + PageCount) % PageCount
}

// Enter switches to detail mode for the page under the cursor.
func (n *Navigation) Enter() {
	n.selected = Pages[n.index]
	n.detail = true
}

// Back returns to the carousel. The cursor keeps its position.
func (n *Navigation) Back() {
	n.detail = false
}
