package web

import "net/http"

const dashboardHTML = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>twitta dashboard</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; background-color: #f5f8fa; }
        h1 { color: #1da1f2; }
        .card { background: white; border-radius: 8px; padding: 20px; margin-bottom: 20px; box-shadow: 0 1px 3px rgba(0,0,0,0.1); }
        .stat { display: inline-block; margin-right: 40px; }
        .stat .value { font-size: 2em; font-weight: bold; }
        .stat .label { color: #657786; }
        button { background: #1da1f2; color: white; border: none; padding: 10px 24px; border-radius: 20px; cursor: pointer; margin-right: 10px; }
        button.stop { background: #e0245e; }
        #status-message { color: #657786; margin-top: 10px; }
    </style>
</head>
<body>
    <h1>twitta</h1>
    <div class="card">
        <button onclick="control('start')">Start</button>
        <button class="stop" onclick="control('stop')">Stop</button>
        <div id="status-message"></div>
    </div>
    <div class="card">
        <div class="stat"><div class="value" id="running">-</div><div class="label">Running</div></div>
        <div class="stat"><div class="value" id="uptime">-</div><div class="label">Uptime</div></div>
        <div class="stat"><div class="value" id="tweet_count">-</div><div class="label">Tweets Handled</div></div>
        <div class="stat"><div class="value" id="last_tweet">-</div><div class="label">Last Tweet</div></div>
        <div class="stat"><div class="value" id="error_count">-</div><div class="label">Errors</div></div>
    </div>
    <script>
        async function refresh() {
            const res = await fetch('/api/status');
            const status = await res.json();
            for (const key of ['running', 'uptime', 'tweet_count', 'last_tweet', 'error_count']) {
                document.getElementById(key).textContent = String(status[key]);
            }
            document.getElementById('status-message').textContent = status.status_message;
        }
        async function control(action) {
            await fetch('/api/' + action, { method: 'POST' });
            refresh();
        }
        refresh();
        setInterval(refresh, 5000);
    </script>
</body>
</html>
`

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(dashboardHTML))
}
