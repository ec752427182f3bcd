package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/counter-console/internal/logic"
	"github.com/sweeney/counter-console/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"counter": func(n int) string { return fmt.Sprintf("%02d", n) },
	"volts":   logic.FormatVoltage,
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="2">
<title>Counter Console</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.low { color: red; font-weight: bold; }
.ok { color: green; }
.connected { color: green; }
.disconnected { color: red; }
.panel { image-rendering: pixelated; border: 4px solid #222; width: 512px; max-width: 100%; }
</style>
</head>
<body>
<h1>Counter Console</h1>

{{if .Image}}<p><img class="panel" src="/frame.png" alt="display"></p>{{else}}<p>No frame presented yet.</p>{{end}}

<h2>Navigation</h2>
<table>
<tr><th>Mode</th><td id="mode">{{.View.Mode}}</td></tr>
<tr><th>Carousel</th><td>{{.Carousel.Label}}</td></tr>
{{if .Detail}}<tr><th>Page</th><td id="page">{{.View.Page.Label}}</td></tr>{{end}}
</table>

<h2>Counters</h2>
<table>
<tr><th>Joules</th><td>{{counter .View.Counters.Joules}}</td></tr>
<tr><th>CMD</th><td>{{counter .View.Counters.Cmd1}} / {{counter .View.Counters.Cmd2}} / {{counter .View.Counters.Cmd3}}</td></tr>
<tr><th>Infect</th><td>{{.View.Counters.Infect}}</td></tr>
<tr><th>Speed</th><td>{{.View.Counters.Speed}}</td></tr>
</table>

<h2>Battery</h2>
<table>
<tr><th>Voltage</th><td class="{{if .View.Low}}low{{else}}ok{{end}}">{{volts .View.Voltage}}</td></tr>
<tr><th>Warning</th><td>{{if .View.Low}}low battery{{else}}none{{end}}</td></tr>
</table>

<h2>Presses</h2>
<table>
{{range .Presses}}<tr><th>{{.Button}}</th><td>{{.Count}}</td></tr>
{{end}}</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}} {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Frames</th><td>{{.Frames}}</td></tr>
<tr><th>Input</th><td>{{.Config.Input}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><th>Flash</th><td>{{.Config.FlashMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPPort}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> · <a href="/frame.svg">SVG</a></p>
</body>
</html>
`

type pressRow struct {
	Button logic.ButtonID
	Count  int
}

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime   time.Duration
		Detail   bool
		Carousel logic.Page
		Presses  []pressRow
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Detail:   snap.View.Mode == logic.ModeDetail,
		Carousel: logic.Pages[snap.View.Index],
	}
	for _, b := range logic.Buttons {
		data.Presses = append(data.Presses, pressRow{Button: b, Count: snap.Presses[b]})
	}
	indexTmpl.Execute(w, data)
}
