package logic

import (
	"testing"
	"time"
)

// newTestConsole returns a console that has already consumed its initial
// render, so Dirty() only reflects changes made by the test.
func newTestConsole(t *testing.T) *Console {
	t.Helper()
	c := NewConsole(DefaultConfig(), time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	c.ClearDirty()
	return c
}

// enterPage moves the carousel to page and selects it.
func enterPage(t *testing.T, c *Console, page Page) {
	t.Helper()
	for c.Navigation().Current() != page {
		c.Press(B4)
	}
	c.Press(ButtonPage)
	if got, ok := c.Navigation().Selected(); !ok || got != page {
		t.Fatalf("expected detail mode on %s, got %s (detail=%v)", page, got, ok)
	}
	c.ClearDirty()
}

func TestNewConsole(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewConsole(DefaultConfig(), start)

	if !c.Dirty() {
		t.Error("new console should start dirty so the carousel is drawn")
	}
	if c.Navigation().Mode() != ModeBrowse {
		t.Errorf("expected BROWSE, got %s", c.Navigation().Mode())
	}
	if c.Navigation().Index() != 0 {
		t.Errorf("expected carousel index 0, got %d", c.Navigation().Index())
	}
	want := Counters{Joules: 0, Cmd1: 0, Cmd2: 0, Cmd3: 0, Infect: 1, Speed: 1}
	if c.Counters() != want {
		t.Errorf("expected initial counters %+v, got %+v", want, c.Counters())
	}
	if c.Flash().On {
		t.Error("flash should start off")
	}
	if !c.Flash().LastToggle.Equal(start) {
		t.Errorf("expected flash timer to start at %v, got %v", start, c.Flash().LastToggle)
	}
}

func TestCarouselCycling(t *testing.T) {
	for n := 0; n <= 12; n++ {
		c := newTestConsole(t)
		for i := 0; i < n; i++ {
			c.Press(B4)
		}
		if got := c.Navigation().Index(); got != n%PageCount {
			t.Errorf("%d×B4: expected index %d, got %d", n, n%PageCount, got)
		}
	}

	for n := 0; n <= 12; n++ {
		c := newTestConsole(t)
		for i := 0; i < n; i++ {
			c.Press(B3)
		}
		want := ((-n % PageCount) + PageCount) % PageCount
		if got := c.Navigation().Index(); got != want {
			t.Errorf("%d×B3: expected index %d, got %d", n, want, got)
		}
	}
}

func TestBrowseIgnoresCounterButtons(t *testing.T) {
	c := newTestConsole(t)
	for _, b := range []ButtonID{B1, B2, B5, B6, B7} {
		a := c.Press(b)
		if a.Changed() {
			t.Errorf("%s in browse mode should do nothing, got %+v", b, a)
		}
	}
	if c.Dirty() {
		t.Error("no-op presses should not mark the display dirty")
	}
	if c.Counters() != NewCounters() {
		t.Errorf("counters changed in browse mode: %+v", c.Counters())
	}
}

func TestEnterAndLeave(t *testing.T) {
	for _, page := range []Page{PageJoules, PageInfect, PageBattery} {
		c := newTestConsole(t)
		enterPage(t, c, page)

		a := c.Press(B7)
		if !a.Navigated {
			t.Errorf("%s: expected B7 to navigate, got %+v", page, a)
		}
		if c.Navigation().Mode() != ModeBrowse {
			t.Errorf("%s: expected BROWSE after B7, got %s", page, c.Navigation().Mode())
		}
		if c.Navigation().Current() != page {
			t.Errorf("%s: cursor should stay on the page, got %s", page, c.Navigation().Current())
		}
		if !c.Dirty() {
			t.Errorf("%s: leaving a page should mark dirty", page)
		}
	}
}

func TestPageButtonInDetailIsNoOp(t *testing.T) {
	c := newTestConsole(t)
	enterPage(t, c, PageJoules)

	a := c.Press(ButtonPage)
	if a.Changed() {
		t.Errorf("PAGE in detail should do nothing, got %+v", a)
	}
	if c.Navigation().Mode() != ModeDetail {
		t.Error("expected to stay in detail mode")
	}
}

func TestJoulesScenario(t *testing.T) {
	c := newTestConsole(t)
	enterPage(t, c, PageJoules)

	seq := []ButtonID{B1, B1, B3, B5, B6}
	want := []int{1, 2, 4, 7, 0}
	for i, b := range seq {
		c.Press(b)
		if got := c.Counters().Joules; got != want[i] {
			t.Errorf("after %s (step %d): expected joules %d, got %d", b, i, want[i], got)
		}
	}

	c.Press(B2)
	c.Press(B4)
	if got := c.Counters().Joules; got != -3 {
		t.Errorf("joules should go negative without clamping, got %d", got)
	}
}

func TestCmdScenario(t *testing.T) {
	c := newTestConsole(t)
	enterPage(t, c, PageCmd)

	c.Press(B1)
	c.Press(B3)
	c.Press(B3)
	if got := c.Counters(); got.Cmd1 != 1 || got.Cmd2 != 2 || got.Cmd3 != 0 {
		t.Fatalf("expected cmd 1/2/0, got %d/%d/%d", got.Cmd1, got.Cmd2, got.Cmd3)
	}

	c.ClearDirty()
	a := c.Press(B7)
	if !a.Mutated || a.Navigated {
		t.Errorf("CMD B7 should reset in place, got %+v", a)
	}
	if got := c.Counters(); got.Cmd1 != 0 || got.Cmd2 != 0 || got.Cmd3 != 0 {
		t.Errorf("expected all cmd counters reset, got %+v", got)
	}
	if page, ok := c.Navigation().Selected(); !ok || page != PageCmd {
		t.Error("expected to stay on CMD page after B7")
	}
	if !c.Dirty() {
		t.Error("reset should mark dirty")
	}

	c.Press(B2)
	c.Press(B4)
	c.Press(B5)
	c.Press(B6)
	c.Press(B6)
	if got := c.Counters(); got.Cmd1 != -1 || got.Cmd2 != -1 || got.Cmd3 != -1 {
		t.Errorf("expected cmd -1/-1/-1, got %d/%d/%d", got.Cmd1, got.Cmd2, got.Cmd3)
	}
}

func TestInfectClamping(t *testing.T) {
	c := newTestConsole(t)
	enterPage(t, c, PageInfect)

	for i := 0; i < 8; i++ {
		c.Press(B1)
	}
	if got := c.Counters().Infect; got != 9 {
		t.Fatalf("expected infect 9, got %d", got)
	}
	c.Press(B1)
	if got := c.Counters().Infect; got != 10 {
		t.Errorf("expected infect 10, got %d", got)
	}
	c.Press(B1)
	if got := c.Counters().Infect; got != 10 {
		t.Errorf("expected infect to stay at 10, got %d", got)
	}

	for i := 0; i < 15; i++ {
		c.Press(B2)
		if got := c.Counters().Infect; got < InfectMin || got > InfectMax {
			t.Fatalf("infect out of range: %d", got)
		}
	}
	if got := c.Counters().Infect; got != 0 {
		t.Errorf("expected infect 0, got %d", got)
	}

	c.Press(B1)
	c.Press(B1)
	c.Press(B6)
	if got := c.Counters().Infect; got != 0 {
		t.Errorf("expected B6 reset to 0, got %d", got)
	}

	for _, b := range []ButtonID{B3, B4, B5} {
		if a := c.Press(b); a.Changed() {
			t.Errorf("%s on infect page should do nothing, got %+v", b, a)
		}
	}
}

func TestSpeedClampingAndReset(t *testing.T) {
	c := newTestConsole(t)
	enterPage(t, c, PageSpeed)

	for i := 0; i < 6; i++ {
		c.Press(B1)
	}
	if got := c.Counters().Speed; got != SpeedMax {
		t.Errorf("expected speed %d, got %d", SpeedMax, got)
	}
	for i := 0; i < 6; i++ {
		c.Press(B2)
	}
	if got := c.Counters().Speed; got != SpeedMin {
		t.Errorf("expected speed %d, got %d", SpeedMin, got)
	}
	if a := c.Press(B6); a.Changed() {
		t.Errorf("B6 on speed page should do nothing, got %+v", a)
	}

	a := c.Press(B7)
	if !a.Mutated || !a.Navigated {
		t.Errorf("speed B7 should reset and leave, got %+v", a)
	}
	if got := c.Counters().Speed; got != 0 {
		t.Errorf("expected speed reset to 0 below the floor, got %d", got)
	}
	if c.Navigation().Mode() != ModeBrowse {
		t.Errorf("expected BROWSE after speed B7, got %s", c.Navigation().Mode())
	}

	// From 0, B2 clamps back up to the floor.
	enterPage(t, c, PageSpeed)
	c.Press(B2)
	if got := c.Counters().Speed; got != SpeedMin {
		t.Errorf("expected B2 from 0 to clamp to %d, got %d", SpeedMin, got)
	}
}

func TestBatteryPageIsReadOnly(t *testing.T) {
	c := newTestConsole(t)
	enterPage(t, c, PageBattery)

	for _, b := range []ButtonID{B1, B2, B3, B4, B5, B6} {
		if a := c.Press(b); a.Changed() {
			t.Errorf("%s on battery page should do nothing, got %+v", b, a)
		}
	}
	if c.Counters() != NewCounters() {
		t.Errorf("battery page mutated counters: %+v", c.Counters())
	}
}

func TestModeExclusivity(t *testing.T) {
	c := newTestConsole(t)
	seq := []ButtonID{B4, ButtonPage, B1, B7, B4, B4, ButtonPage, B7, B3, ButtonPage, B1, B7, B7, ButtonPage, B6, B7}
	for i, b := range seq {
		c.Press(b)
		nav := c.Navigation()
		_, detail := nav.Selected()
		if (nav.Mode() == ModeDetail) != detail {
			t.Fatalf("step %d: mode %s disagrees with selection (detail=%v)", i, nav.Mode(), detail)
		}
		if nav.Index() < 0 || nav.Index() >= PageCount {
			t.Fatalf("step %d: index out of range: %d", i, nav.Index())
		}
	}
}

func TestStepDispatchesPressesOnly(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewConsole(DefaultConfig(), start)
	c.ClearDirty()

	// Hold B4 for 500ms: one carousel step, then release.
	now := start
	for i := 0; i < 50; i++ {
		c.Step(pressing(B4), 4.0, now)
		now = now.Add(TickInterval)
	}
	for i := 0; i < 50; i++ {
		c.Step(released(), 4.0, now)
		now = now.Add(TickInterval)
	}

	if got := c.Navigation().Index(); got != 1 {
		t.Errorf("expected one carousel step, got index %d", got)
	}
	if got := c.Presses()[B4]; got != 1 {
		t.Errorf("expected 1 counted press, got %d", got)
	}
}

func TestStepSameTickOrder(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewConsole(DefaultConfig(), start)

	// B4 and PAGE in the same tick: B4 is dispatched first, so page 1 opens.
	actions := c.Step(pressing(B4, ButtonPage), 4.0, start)
	if len(actions) != 2 {
		t.Fatalf("expected 2 actions, got %d", len(actions))
	}
	if actions[0].Button != B4 || actions[1].Button != ButtonPage {
		t.Errorf("expected B4 then PAGE, got %s then %s", actions[0].Button, actions[1].Button)
	}
	if page, ok := c.Navigation().Selected(); !ok || page != PageCmd {
		t.Errorf("expected CMD page selected, got %s (detail=%v)", page, ok)
	}
}

func TestFlashMarksDirty(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewConsole(DefaultConfig(), start)
	c.ObserveVoltage(3.1, start)
	c.ClearDirty()

	c.ObserveVoltage(3.1, start.Add(100*time.Millisecond))
	if c.Dirty() {
		t.Error("no toggle before the flash interval")
	}

	c.ObserveVoltage(3.1, start.Add(500*time.Millisecond))
	if !c.Dirty() {
		t.Error("flash toggle should mark dirty")
	}
	if !c.View().ShowIcon() {
		t.Error("expected icon shown after first toggle")
	}
}

func TestVoltageRecoveryHidesIcon(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewConsole(DefaultConfig(), start)
	c.ObserveVoltage(3.0, start.Add(time.Second))
	if !c.View().ShowIcon() {
		t.Fatal("expected icon after toggle")
	}
	c.ClearDirty()

	c.ObserveVoltage(3.9, start.Add(1100*time.Millisecond))
	if c.View().ShowIcon() {
		t.Error("icon should hide when voltage recovers")
	}
	if !c.Dirty() {
		t.Error("hiding the icon should mark dirty")
	}
	if !c.Flash().On {
		t.Error("flash phase should be held, not reset, on recovery")
	}
}

func TestBatteryPageRedrawsOnVoltageText(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := newTestConsole(t)
	c.ObserveVoltage(4.10, start)
	enterPage(t, c, PageBattery)

	c.ObserveVoltage(4.101, start.Add(10*time.Millisecond))
	if c.Dirty() {
		t.Error("same two-decimal text should not redraw")
	}
	c.ObserveVoltage(4.12, start.Add(20*time.Millisecond))
	if !c.Dirty() {
		t.Error("changed voltage text on battery page should redraw")
	}

	c.Press(B7)
	c.ClearDirty()
	c.ObserveVoltage(4.00, start.Add(30*time.Millisecond))
	if c.Dirty() {
		t.Error("voltage change off the battery page should not redraw")
	}
}

func TestCheckHeartbeat(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewConsole(DefaultConfig(), start)
	c.Step(pressing(B4), 4.0, start)

	if hb := c.CheckHeartbeat(start.Add(time.Minute), 0); hb != nil {
		t.Error("heartbeat disabled with interval 0")
	}
	if hb := c.CheckHeartbeat(start.Add(10*time.Minute), 15*time.Minute); hb != nil {
		t.Error("heartbeat should not fire before interval")
	}

	hb := c.CheckHeartbeat(start.Add(15*time.Minute), 15*time.Minute)
	if hb == nil {
		t.Fatal("expected heartbeat at interval")
	}
	if hb.Uptime != 15*time.Minute {
		t.Errorf("expected uptime 15m, got %v", hb.Uptime)
	}
	if hb.Presses[B4] != 1 || hb.Presses.Total() != 1 {
		t.Errorf("expected one B4 press, got %v", hb.Presses)
	}

	if hb := c.CheckHeartbeat(start.Add(20*time.Minute), 15*time.Minute); hb != nil {
		t.Error("heartbeat should wait a full interval after the last one")
	}
}
