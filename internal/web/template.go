package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/tempcycle/internal/status"
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
	"trendClass": func(s string) string {
		switch s {
		case "RISING":
			return "rising"
		case "FALLING":
			return "falling"
		case "STABLE":
			return "stable"
		}
		return "unknown"
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="{{.Refresh}}">
<title>Temperature Cycle</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.big { font-size: 2em; }
.rising { color: red; font-weight: bold; }
.falling { color: blue; font-weight: bold; }
.stable { color: green; font-weight: bold; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Temperature Cycle</h1>

<h2>Reading</h2>
<table>
<tr><th>Temperature</th><td id="temperature" class="big">{{if .Rendered}}{{printf "%.2f" .Temperature}} &deg;C{{else}}&mdash;{{end}}</td></tr>
<tr><th>Trend</th><td id="trend" class="{{trendClass .Trend.String}}">{{.Trend.String}}</td></tr>
<tr><th>Updated</th><td>{{if .Rendered}}{{.RenderedAt.UTC.Format "2006-01-02T15:04:05Z"}}{{else}}never{{end}}</td></tr>
</table>

<h2>Cycles</h2>
<table>
<tr><th>Ticks</th><td>{{.Counts.Ticks}}</td></tr>
<tr><th>Completed</th><td>{{.Counts.Completed}}</td></tr>
<tr><th>Overruns</th><td>{{.Counts.Overruns}}</td></tr>
<tr><th>Sample failures</th><td>{{.Counts.SampleFailures}}</td></tr>
<tr><th>Present failures</th><td>{{.Counts.PresentFailures}}</td></tr>
<tr><th>Indicate failures</th><td>{{.Counts.IndicateFailures}}</td></tr>
<tr><th>Report failures</th><td>{{.Counts.ReportFailures}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Period</th><td>{{.Config.PeriodMs}}ms</td></tr>
<tr><th>Threshold</th><td>{{.Config.Threshold}} &deg;C</td></tr>
<tr><th>History</th><td>{{.Config.HistorySize}}</td></tr>
<tr><th>Samples per mean</th><td>{{.Config.SamplesPerMean}}</td></tr>
<tr><th>Sensor</th><td>{{.Config.Sensor}}</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	refresh := snap.Config.PeriodMs / 1000
	if refresh < 1 {
		refresh = 1
	}
	data := struct {
		status.Snapshot
		Uptime  time.Duration
		Refresh int64
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Refresh:  refresh,
	}
	indexTmpl.Execute(w, data)
}
