//go:build linux && !tinygo

package gpio

import (
	"testing"

	"github.com/holoplot/go-evdev"

	"github.com/sweeney/counter-console/internal/logic"
)

func TestLevelsFromKeys(t *testing.T) {
	l := levelsFromKeys(map[evdev.EvCode]bool{
		evdev.KEY_3: true,
		evdev.KEY_P: true,
		evdev.KEY_7: false,
		evdev.KEY_Q: true,
	})

	for _, b := range logic.Buttons {
		want := b != logic.B3 && b != logic.ButtonPage
		if l[b] != want {
			t.Errorf("%s: got level %v, want %v", b, l[b], want)
		}
	}
}

func TestLevelsFromNoKeys(t *testing.T) {
	if l := levelsFromKeys(nil); l != AllReleased() {
		t.Errorf("expected all released, got %v", l)
	}
}
