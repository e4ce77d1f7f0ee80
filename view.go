package main

import (
	"html/template"
	"net/http"
)

func (s *HTTPServer) handleHome(w http.ResponseWriter, r *http.Request) {
	if _, issued := s.playerIdentity(r); issued != nil {
		http.SetCookie(w, issued)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = homeTmpl.Execute(w, nil)
}

func (s *HTTPServer) handleGamePage(w http.ResponseWriter, r *http.Request) {
	// Make sure the identity cookie exists before the websocket opens.
	if _, issued := s.playerIdentity(r); issued != nil {
		http.SetCookie(w, issued)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = gameTmpl.Execute(w, nil)
}

var homeTmpl = template.Must(template.New("home").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>deathroll</title>
  <style>
    :root{ --bg:#0d1117; --panel:#111827; --border:#1f2937; --fg:#e5e7eb; --muted:#9ca3af; --accent:#22c55e }
    *{ box-sizing:border-box }
    body{ margin:0; padding:24px; background:var(--bg); color:var(--fg); font-family:ui-sans-serif,system-ui,-apple-system,Segoe UI,Roboto,Helvetica,Arial }
    .wrap{ max-width:560px; margin:0 auto }
    h1{ font-weight:700 }
    .panel{ border:1px solid var(--border); border-radius:10px; background:var(--panel); padding:18px }
    p{ color:var(--muted); line-height:1.5 }
    input{ background:transparent; border:1px solid var(--border); color:var(--fg); padding:10px; border-radius:6px; font-size:16px; width:160px }
    button{ background:var(--accent); border:none; color:#052e16; padding:10px 16px; border-radius:6px; font-size:16px; font-weight:700; cursor:pointer }
    .err{ color:#ef4444; min-height:1.2em }
  </style>
</head>
<body>
  <div class="wrap">
    <h1>deathroll &#x1F3B2;</h1>
    <div class="panel">
      <p>Pick a starting number and share the link. Players take turns rolling
      between 1 and the previous roll &mdash; roll a 1 and you lose.</p>
      <input id="num" type="text" maxlength="9" inputmode="numeric" pattern="[0-9]*" value="100" />
      <button id="new">New game</button>
      <p class="err" id="err"></p>
    </div>
  </div>
  <script>
    function gameId(n) {
      const chars = 'abcdefghijklmnopqrstuvwxyz0123456789';
      let id = '';
      const buf = new Uint8Array(n);
      crypto.getRandomValues(buf);
      for (const b of buf) id += chars[b % chars.length];
      return id;
    }
    document.getElementById('new').onclick = async () => {
      const num = parseInt(document.getElementById('num').value, 10);
      const err = document.getElementById('err');
      if (!Number.isInteger(num) || num < 1 || num > 100000000) {
        err.textContent = 'enter a number between 1 and 100000000';
        return;
      }
      const id = gameId(8);
      const res = await fetch('/ws/' + id, { method: 'POST', body: String(num) });
      if (!res.ok) { err.textContent = await res.text(); return; }
      location.href = '/game/' + id;
    };
  </script>
</body>
</html>`))

var gameTmpl = template.Must(template.New("game").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>deathroll</title>
  <style>
    :root{ --bg:#0d1117; --panel:#111827; --border:#1f2937; --fg:#e5e7eb; --muted:#9ca3af; --accent:#22c55e }
    *{ box-sizing:border-box }
    body{ margin:0; padding:24px; background:var(--bg); color:var(--fg); font-family:ui-sans-serif,system-ui,-apple-system,Segoe UI,Roboto,Helvetica,Arial }
    .wrap{ max-width:560px; margin:0 auto }
    .panel{ border:1px solid var(--border); border-radius:10px; background:var(--panel); padding:18px }
    #status{ font-size:20px; min-height:1.4em; margin-bottom:12px }
    #feed{ font-family:ui-monospace,SFMono-Regular,Menlo,Consolas,monospace; font-size:15px; line-height:1.6; max-height:380px; overflow:auto; color:var(--muted) }
    button{ background:var(--accent); border:none; color:#052e16; padding:12px 20px; border-radius:6px; font-size:18px; font-weight:700; cursor:pointer }
    button:disabled{ background:var(--border); color:var(--muted); cursor:default }
    .muted{ color:var(--muted) }
    #share{ word-break:break-all }
  </style>
</head>
<body>
  <div class="wrap">
    <div class="panel">
      <div id="status" class="muted">connecting&hellip;</div>
      <button id="roll" disabled>Roll &#x1F3B2;</button>
      <p class="muted" id="share"></p>
      <div id="feed"></div>
    </div>
  </div>
  <script>
    const status = document.getElementById('status');
    const feed = document.getElementById('feed');
    const rollBtn = document.getElementById('roll');
    const share = document.getElementById('share');
    let ws = null, retry = 500, pinger = null;

    function connect() {
      const proto = location.protocol === 'https:' ? 'wss:' : 'ws:';
      ws = new WebSocket(proto + '//' + location.host + '/ws/' + location.pathname.split('/').pop());
      ws.onopen = () => {
        retry = 500;
        rollBtn.disabled = false;
        pinger = setInterval(() => ws.send(JSON.stringify({type:'ping'})), 25000);
      };
      ws.onclose = () => {
        rollBtn.disabled = true;
        clearInterval(pinger);
        status.textContent = 'disconnected, retrying…';
        setTimeout(connect, retry);
        retry = Math.min(retry * 2, 10000);
      };
      ws.onmessage = (e) => {
        const msg = JSON.parse(e.data);
        switch (msg.type) {
        case 'no_game_found':
          status.textContent = 'no such game';
          rollBtn.disabled = true;
          share.textContent = '';
          ws.onclose = null;
          ws.close();
          break;
        case 'p1_join':
          status.textContent = '\u{1F9D9}\u200D\u2642\uFE0F waiting for an opponent';
          share.textContent = 'invite: ' + location.href;
          break;
        case 'p2_join':
          status.textContent = '\u{1F9DF} you joined, waiting for the first roll';
          break;
        case 'spectate':
          status.textContent = '\u{1F440} spectating';
          rollBtn.disabled = true;
          break;
        case 'reconnect':
          status.textContent = 'back in the game';
          break;
        case 'start_roll':
          share.textContent = 'starting roll: ' + msg.bound + ' • invite: ' + location.href;
          break;
        case 'start_game':
        case 'status':
        case 'game_over':
          status.textContent = msg.body;
          break;
        case 'game_score':
          feed.innerHTML = '';
          for (const line of (msg.feed || []).slice().reverse()) {
            const div = document.createElement('div');
            div.textContent = line;
            feed.appendChild(div);
          }
          break;
        }
      };
    }
    rollBtn.onclick = () => { if (ws && ws.readyState === 1) ws.send(JSON.stringify({type:'roll'})); };
    window.addEventListener('beforeunload', () => { if (ws && ws.readyState === 1) ws.send(JSON.stringify({type:'close'})); });
    connect();
  </script>
</body>
</html>`))
