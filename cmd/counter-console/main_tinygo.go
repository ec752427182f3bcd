//go:build tinygo

package main

import (
	"time"

	"github.com/sweeney/counter-console/internal/board"
	"github.com/sweeney/counter-console/internal/logic"
	"github.com/sweeney/counter-console/internal/render"
)

// main is the microcontroller build: the same console and composer on
// board pins with a fixed sleep between polls. It never returns.
func main() {
	buttons := board.NewButtons()
	battery := board.NewBattery()
	fonts := board.DefaultFonts()
	panel := board.NewPanel(fonts)

	composer := render.NewComposer(fonts, panel.Width(), panel.Height())
	console := logic.NewConsole(logic.DefaultConfig(), time.Now())

	var voltage float64
	for {
		now := time.Now()
		levels, _ := buttons.Read()
		if v, err := logic.ReadVoltage(battery); err == nil {
			voltage = v
		}

		for _, a := range console.Step(levels, voltage, now) {
			if a.Changed() {
				println("press", a.Button.String())
			}
		}

		if f, ok := composer.Render(console); ok {
			if err := panel.Present(f); err != nil {
				println("display:", err.Error())
			}
		}
		time.Sleep(logic.TickInterval)
	}
}
