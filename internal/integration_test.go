package internal

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/sweeney/counter-console/internal/adc"
	"github.com/sweeney/counter-console/internal/display"
	"github.com/sweeney/counter-console/internal/glyph"
	"github.com/sweeney/counter-console/internal/gpio"
	"github.com/sweeney/counter-console/internal/logic"
	"github.com/sweeney/counter-console/internal/mqtt"
	"github.com/sweeney/counter-console/internal/render"
	"github.com/sweeney/counter-console/internal/status"
)

const pollInterval = 100 * time.Millisecond

var startTime = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

// script builds a sequence of button samples at pollInterval spacing.
type script []gpio.Levels

// press holds b for one poll and releases it long enough for the release
// and a following press of the same button to clear the debounce window.
func (s script) press(buttons ...logic.ButtonID) script {
	for _, b := range buttons {
		s = append(s, gpio.Pressing(b), gpio.AllReleased(), gpio.AllReleased(), gpio.AllReleased())
	}
	return s
}

func (s script) idle(n int) script {
	for i := 0; i < n; i++ {
		s = append(s, gpio.AllReleased())
	}
	return s
}

func (s script) repeat(b logic.ButtonID, n int) script {
	for i := 0; i < n; i++ {
		s = s.press(b)
	}
	return s
}

// rig wires the console to fakes the way the run loop does.
type rig struct {
	faces    *glyph.Faces
	console  *logic.Console
	composer *render.Composer
	sink     *display.FakeSink
	pub      *mqtt.FakePublisher
	tracker  *status.Tracker
	battery  logic.AnalogInput
	ticks    int
}

func newRig() *rig {
	faces := glyph.Default()
	sink := display.NewFakeSink(128, 64)
	sink.Faces = faces
	return &rig{
		faces:    faces,
		console:  logic.NewConsole(logic.DefaultConfig(), startTime),
		composer: render.NewComposer(faces, sink.Width(), sink.Height()),
		sink:     sink,
		pub:      mqtt.NewFakePublisher(),
		tracker:  status.NewTracker(startTime, status.Config{Input: "gpio", PollMs: 10, DebounceMs: 200}),
		battery:  adc.NewFixed(4.2),
	}
}

func (r *rig) now() time.Time {
	return startTime.Add(time.Duration(r.ticks) * pollInterval)
}

// run feeds every sample of s through a fake reader and one loop iteration.
func (r *rig) run(t *testing.T, s script) {
	t.Helper()
	reader := gpio.NewFakeReader(s)
	for range s {
		r.ticks++
		now := r.now()

		levels, err := reader.Read()
		if err != nil {
			t.Fatalf("tick %d: gpio read error: %v", r.ticks, err)
		}
		voltage, err := logic.ReadVoltage(r.battery)
		if err != nil {
			t.Fatalf("tick %d: adc read error: %v", r.ticks, err)
		}

		actions := r.console.Step(levels, voltage, now)
		view := r.console.View()
		for _, a := range actions {
			// Publish failures never stop the loop.
			_ = r.pub.Publish(mqtt.PressEvent{Timestamp: now, Action: a, View: view})
		}

		if f, ok := r.composer.Render(r.console); ok {
			if err := r.sink.Present(f); err != nil {
				t.Fatalf("tick %d: present: %v", r.ticks, err)
			}
			r.tracker.SetFrame(f, r.sink.Last)
		}
		r.tracker.Update(r.console.View(), r.console.Presses())
	}
}

func (r *rig) lastFrame(t *testing.T) render.Frame {
	t.Helper()
	if len(r.sink.Frames) == 0 {
		t.Fatal("no frames presented")
	}
	return r.sink.Frames[len(r.sink.Frames)-1]
}

func texts(f render.Frame) []string {
	var out []string
	for _, tx := range f.Texts() {
		out = append(out, tx.Text)
	}
	return out
}

func effects(t *testing.T, payloads [][]byte) []string {
	t.Helper()
	var out []string
	for i, p := range payloads {
		var parsed mqtt.Payload
		if err := json.Unmarshal(p, &parsed); err != nil {
			t.Fatalf("payload %d: invalid JSON: %v", i, err)
		}
		out = append(out, parsed.Press.Button+":"+parsed.Press.Effect)
	}
	return out
}

// TestIntegrationCmdSession walks to the CMD page, mutates all three
// counters, tries PAGE (no effect in detail) and resets with B7.
func TestIntegrationCmdSession(t *testing.T) {
	r := newRig()
	r.run(t, script{}.idle(1).
		press(logic.B4, logic.ButtonPage).
		press(logic.B1).press(logic.B1).press(logic.B3, logic.B5, logic.B6).
		press(logic.ButtonPage).
		press(logic.B7))

	wantEffects := []string{
		"B4:NAVIGATE", "PAGE:NAVIGATE",
		"B1:MUTATE", "B1:MUTATE", "B3:MUTATE", "B5:MUTATE", "B6:MUTATE",
		"PAGE:NONE",
		"B7:MUTATE",
	}
	if diff := cmp.Diff(wantEffects, effects(t, r.pub.Payloads)); diff != "" {
		t.Errorf("effects mismatch (-want +got):\n%s", diff)
	}

	// Initial carousel, B4, PAGE, five mutations and B7. The PAGE no-op
	// does not redraw.
	if len(r.sink.Frames) != 9 {
		t.Fatalf("expected 9 frames, got %d", len(r.sink.Frames))
	}
	if diff := cmp.Diff([]string{"1", "2", "3", "02", "01", "00"}, texts(r.sink.Frames[7])); diff != "" {
		t.Errorf("CMD frame before reset (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"1", "2", "3", "00", "00", "00"}, texts(r.lastFrame(t))); diff != "" {
		t.Errorf("CMD frame after reset (-want +got):\n%s", diff)
	}

	v := r.console.View()
	if v.Mode != logic.ModeDetail || v.Page != logic.PageCmd {
		t.Errorf("B7 on CMD should stay in detail, got %s %s", v.Mode, v.Page)
	}
}

func TestIntegrationSpeedResetReturnsToBrowse(t *testing.T) {
	r := newRig()
	r.run(t, script{}.
		repeat(logic.B4, 3).press(logic.ButtonPage).
		repeat(logic.B1, 4))

	if got := texts(r.lastFrame(t)); got[0] != "MAX SPEED" || got[1] != "4" {
		t.Errorf("expected MAX SPEED 4, got %v", got)
	}

	r.run(t, script{}.press(logic.B7))

	v := r.console.View()
	if v.Mode != logic.ModeBrowse || v.Index != 3 || v.Counters.Speed != 0 {
		t.Errorf("after B7: mode %s index %d speed %d", v.Mode, v.Index, v.Counters.Speed)
	}
	if got := texts(r.lastFrame(t)); got[0] != "Speed Tracker" {
		t.Errorf("carousel should start at the speed page, got %v", got)
	}

	last := r.pub.Events[len(r.pub.Events)-1]
	if !last.Action.Navigated || !last.Action.Mutated {
		t.Errorf("B7 on speed should navigate and mutate, got %+v", last.Action)
	}
}

func TestIntegrationInfectFullShowsCaption(t *testing.T) {
	r := newRig()
	r.run(t, script{}.
		repeat(logic.B4, 2).press(logic.ButtonPage).
		repeat(logic.B1, 12))

	f := r.lastFrame(t)
	ts := f.Texts()
	if len(ts) != 3 {
		t.Fatalf("expected heading, value and caption, got %v", texts(f))
	}
	if ts[1].Text != "10" || ts[1].X != 55 || ts[1].Scale != 1 {
		t.Errorf("full value: got %+v", ts[1])
	}
	if ts[2].Text != "COMPLEATED" {
		t.Errorf("caption: got %q", ts[2].Text)
	}
	if r.console.View().Counters.Infect != logic.InfectMax {
		t.Errorf("infect should clamp at %d", logic.InfectMax)
	}
}

func TestIntegrationBatteryPageFollowsVoltage(t *testing.T) {
	r := newRig()
	r.run(t, script{}.press(logic.B3, logic.ButtonPage))

	if got := texts(r.lastFrame(t)); got[1] != "4.20V" {
		t.Fatalf("battery value: got %v", got)
	}
	frames := len(r.sink.Frames)

	r.battery = adc.NewFixed(3.9)
	r.run(t, script{}.idle(3))

	if len(r.sink.Frames) != frames+1 {
		t.Fatalf("expected one redraw for the new voltage, got %d", len(r.sink.Frames)-frames)
	}
	if got := texts(r.lastFrame(t)); got[1] != "3.90V" {
		t.Errorf("battery value: got %v", got)
	}

	var sj status.StatusJSON
	if err := json.Unmarshal(status.FormatJSON(r.tracker.Snapshot()), &sj); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if sj.Status.Battery.Text != "3.90V" || sj.Status.Page != "BATTERY" {
		t.Errorf("status battery: %+v page %q", sj.Status.Battery, sj.Status.Page)
	}
}

func TestIntegrationLowBatteryBlinksInBrowse(t *testing.T) {
	r := newRig()
	r.battery = adc.NewFixed(3.0)
	r.run(t, script{}.idle(10))

	// Initial frame, icon on at 500ms, icon off at 1s.
	if len(r.sink.Frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(r.sink.Frames))
	}
	on := r.sink.Frames[1].Icons()
	if len(on) != 1 || on[0].X != 128-12 || on[0].Y != 2 {
		t.Errorf("icon placement: got %+v", on)
	}
	if !display.Lit(display.Rasterize(r.sink.Frames[1], r.faces), 128-12, 2) {
		t.Error("expected the icon's top-left pixel lit")
	}
	if len(r.sink.Frames[2].Icons()) != 0 {
		t.Error("icon should be hidden in the off phase")
	}
}

func TestIntegrationStartupThenShutdown(t *testing.T) {
	r := newRig()
	r.tracker.Update(r.console.View(), r.console.Presses())

	snap := r.tracker.Snapshot()
	r.pub.PublishSystem(mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	})

	r.run(t, script{}.press(logic.ButtonPage, logic.B5, logic.B1))

	snap = r.tracker.Snapshot()
	r.pub.PublishSystem(mqtt.SystemEvent{
		Timestamp:  r.now(),
		Event:      "SHUTDOWN",
		Reason:     "SIGTERM",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "SHUTDOWN", "SIGTERM"),
	})

	if len(r.pub.SystemPayloads) != 2 {
		t.Fatalf("expected 2 system payloads, got %d", len(r.pub.SystemPayloads))
	}

	var startup, shutdown status.StatusJSON
	json.Unmarshal(r.pub.SystemPayloads[0], &startup)
	json.Unmarshal(r.pub.SystemPayloads[1], &shutdown)

	if startup.Status.Event != "STARTUP" || startup.Status.Mode != "BROWSE" {
		t.Errorf("startup: %+v", startup.Status)
	}
	if shutdown.Status.Event != "SHUTDOWN" || shutdown.Status.Reason != "SIGTERM" {
		t.Errorf("shutdown event/reason: %q/%q", shutdown.Status.Event, shutdown.Status.Reason)
	}
	if shutdown.Status.Counters.Joules != 4 {
		t.Errorf("shutdown joules: got %d, want 4", shutdown.Status.Counters.Joules)
	}
	if shutdown.Status.Presses["PAGE"] != 1 || shutdown.Status.Presses["B5"] != 1 {
		t.Errorf("shutdown presses: %v", shutdown.Status.Presses)
	}
	if shutdown.Status.Frames != len(r.sink.Frames) {
		t.Errorf("shutdown frames: got %d, want %d", shutdown.Status.Frames, len(r.sink.Frames))
	}
}

func TestIntegrationPublishFailureDoesNotCrash(t *testing.T) {
	r := newRig()
	r.pub.PublishError = errors.New("broker down")

	r.run(t, script{}.press(logic.B4, logic.B4))

	if r.console.View().Index != 2 {
		t.Errorf("presses should apply despite publish errors, index %d", r.console.View().Index)
	}
	if len(r.pub.Events) != 0 {
		t.Errorf("expected 0 recorded events, got %d", len(r.pub.Events))
	}
}

func TestIntegrationSimultaneousPressesDispatchInOrder(t *testing.T) {
	r := newRig()
	r.run(t, script{gpio.Pressing(logic.B4, logic.ButtonPage)}.idle(3))

	// B4 moves to CMD first, then PAGE selects it.
	v := r.console.View()
	if v.Mode != logic.ModeDetail || v.Page != logic.PageCmd {
		t.Errorf("got %s %s, want DETAIL CMD", v.Mode, v.Page)
	}
	if diff := cmp.Diff([]string{"B4:NAVIGATE", "PAGE:NAVIGATE"}, effects(t, r.pub.Payloads)); diff != "" {
		t.Errorf("effects mismatch (-want +got):\n%s", diff)
	}
	// Both presses land in one tick, so the payloads share the end-of-tick view.
	if r.pub.Events[0].View.Mode != logic.ModeDetail {
		t.Errorf("expected end-of-tick view on the first event")
	}
}
