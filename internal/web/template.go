package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/infinitime/smartalarm/internal/status"
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
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Smart Alarm</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.phase-light { color: green; }
.phase-deep { color: #2255aa; }
.phase-rem { color: #aa8800; }
.phase-unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Smart Alarm</h1>

<h2>State</h2>
<table>
<tr><th>Enabled</th><td class="{{if .Enabled}}on{{else}}off{{end}}">{{if .Enabled}}yes{{else}}no{{end}}</td></tr>
<tr><th>Alerting</th><td class="{{if .Alerting}}on{{else}}off{{end}}">{{if .Alerting}}yes{{else}}no{{end}}</td></tr>
<tr><th>In window</th><td>{{if .InWindow}}yes{{else}}no{{end}}</td></tr>
<tr><th>Sleep phase</th><td class="phase-{{.PhaseClass}}">{{.Phase}}</td></tr>
<tr><th>HR samples logged</th><td>{{.HRSampleCount}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>Companion bus</th><td class="{{if .BusConnected}}connected{{else}}disconnected{{end}}">{{if .BusConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Alarm time</th><td>{{printf "%02d:%02d" .Config.AlarmHours .Config.AlarmMinutes}}</td></tr>
<tr><th>Storage</th><td>{{.Config.StorageDir}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	data := struct {
		status.Snapshot
		Uptime     time.Duration
		PhaseClass string
	}{
		Snapshot:   snap,
		Uptime:     snap.Uptime(),
		PhaseClass: phaseClass(snap.Phase.String()),
	}
	indexTmpl.Execute(w, data)
}

func phaseClass(phase string) string {
	switch phase {
	case "Light":
		return "light"
	case "Deep":
		return "deep"
	case "REM":
		return "rem"
	default:
		return "unknown"
	}
}
