package web

const pageHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width,initial-scale=1" />
  <title>relay</title>
  <style>
    html, body {
      margin: 0;
      background: #1e1f22;
      color: #e3e5e8;
      font-family: ui-monospace, SFMono-Regular, Menlo, monospace;
    }
    #top {
      display: flex;
      justify-content: space-between;
      padding: 8px 12px;
      background: #5865f2;
      color: #fff;
      font-weight: 700;
    }
    #log { padding: 12px; }
    .entry { margin: 0 0 10px; }
    .line { color: #72767d; }
    .error { color: #ed4245; }
    form { display: flex; padding: 12px; gap: 8px; }
    input { flex: 1; font: inherit; padding: 6px; background: #2b2d31; color: inherit; border: 1px solid #5865f2; }
  </style>
</head>
<body>
  <div id="top"><span>relay</span><span id="status">connecting...</span></div>
  <div id="log"></div>
  <form id="form">
    <input id="line" autocomplete="off" placeholder=".window 100 10 square '_' &quot;hello&quot;" />
  </form>
  <script>
    const statusEl = document.getElementById("status");
    const logEl = document.getElementById("log");
    const lineEl = document.getElementById("line");
    const token = new URLSearchParams(window.location.search).get("token") || "";
    const proto = window.location.protocol === "https:" ? "wss" : "ws";
    const ws = new WebSocket(proto + "://" + window.location.host + "/ws?token=" + encodeURIComponent(token));
    const blocks = {};
    let pending = [];

    function block(id) {
      if (!blocks[id]) {
        const entry = document.createElement("div");
        entry.className = "entry";
        const line = document.createElement("div");
        line.className = "line";
        line.textContent = pending.shift() || "";
        const out = document.createElement("pre");
        entry.append(line, out);
        logEl.append(entry);
        blocks[id] = out;
      }
      return blocks[id];
    }

    ws.onopen = () => { statusEl.textContent = "connected"; };
    ws.onclose = () => { statusEl.textContent = "disconnected"; };
    ws.onmessage = (ev) => {
      const msg = JSON.parse(ev.data);
      const out = block(msg.id);
      out.className = msg.type === "error" ? "error" : "";
      out.textContent = msg.data.replaceAll("\u0000", " ");
    };

    document.getElementById("form").addEventListener("submit", (ev) => {
      ev.preventDefault();
      const line = lineEl.value.trim();
      if (!line) return;
      pending.push(line);
      ws.send(JSON.stringify({ type: "command", data: line }));
      lineEl.value = "";
    });
  </script>
</body>
</html>
`
