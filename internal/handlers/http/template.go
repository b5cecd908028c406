package http

import "html/template"

var pageTemplate = template.Must(template.New("index").Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <meta http-equiv="refresh" content="{{.RefreshInterval}}">
    <title>{{.Title}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 2em auto; max-width: 60em; background-color: #f4f4f9; color: #333; }
        h1 { color: #444; }
        .status-bar { margin-bottom: 1em; }
        .status-bar span.badge { padding: 0.2em 0.6em; border-radius: 4px; color: #fff; font-weight: bold; }
        .status-up { background-color: #2a9d3a; }
        .status-down { background-color: #c0392b; }
        .status-warning { background-color: #e09f3e; }
        .status-unknown { background-color: #7f8c8d; }
        .updated { color: #777; font-size: 0.85em; margin-left: 1em; }
        pre#log { background-color: #1e1e1e; color: #d4d4d4; padding: 1em; border-radius: 4px; overflow-x: auto; max-height: 32em; overflow-y: scroll; }
        form.clear { margin-top: 1em; }
        form.clear button { background-color: #c0392b; color: #fff; border: none; padding: 0.5em 1em; border-radius: 4px; cursor: pointer; }
    </style>
</head>
<body>
    <h1>{{.Title}}</h1>
    <div class="status-bar">
        Internet: <span class="badge {{.Internet.CSS}}">{{.Internet.Text}}</span>
        DNS: <span class="badge {{.DNS.CSS}}">{{.DNS.Text}}</span>
        {{if .Timestamp}}<span class="updated">last update {{.Timestamp}}{{if .Stale}} (stale){{end}}</span>{{end}}
    </div>
    <h2>Event Log (last {{.LogLines}} lines)</h2>
    <pre id="log">{{range .Log}}{{.}}
{{end}}</pre>
    <form class="clear" method="POST" action="/clear-log" onsubmit="return confirm('Clear the event log?');">
        <button type="submit">Clear Log</button>
    </form>
    <script>
        (function () {
            var pre = document.getElementById("log");
            var proto = location.protocol === "https:" ? "wss://" : "ws://";
            var ws = new WebSocket(proto + location.host + "/ws/log");
            ws.onmessage = function (ev) {
                pre.textContent += ev.data + "\n";
                pre.scrollTop = pre.scrollHeight;
            };
        })();
    </script>
</body>
</html>
`
