// Package board adapts the console to a Feather-class microcontroller
// running TinyGo: active-low buttons on digital pins, the battery divider
// on an analog pin and an SSD1306 panel drawn with tinyfont.
//
// Everything except this file is built only with the tinygo tag.
package board
