package web

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

func Home() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, _ = io.WriteString(w, `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Sketch Party</title>
    <link rel="stylesheet" href="/static/styles.css"/>
  </head>
  <body>
    <main class="shell">
      <header class="hero">
        <span class="tag">Sketch Party</span>
        <h1>One word. One drawer. Everyone guesses.</h1>
        <p>Connect a client to the websocket and play; this page watches the lobby live.</p>
      </header>

      <section class="panel">
        <div>
          <h2>Lobby</h2>
          <p id="lobbyStatus">Connecting...</p>
        </div>
        <ul id="playerList" class="player-list"></ul>
        <div id="roundStatus" class="result"></div>
      </section>

      <section class="panel">
        <div>
          <h2>Connect a client</h2>
          <p>Open a websocket to <code>/ws</code> and send a join message:</p>
        </div>
        <pre class="code-sample">{"type": "join", "player": "your name"}</pre>
        <p>Then guess with <code>{"type": "guess", "guess": "word"}</code>.
           The drawer streams strokes as <code>{"type": "drawing", "data": {"x": 0, "y": 0}}</code>.</p>
      </section>
    </main>

    <script>
      const lobbyStatus = document.getElementById("lobbyStatus");
      const playerList = document.getElementById("playerList");
      const roundStatus = document.getElementById("roundStatus");

      function render(status) {
        playerList.innerHTML = "";
        for (const name of status.players) {
          const item = document.createElement("li");
          item.textContent = name;
          playerList.appendChild(item);
        }
        if (status.players.length === 0) {
          lobbyStatus.textContent = "No players yet.";
        } else if (status.roundActive) {
          lobbyStatus.textContent = status.players.length + " playing now.";
        } else {
          lobbyStatus.textContent = "Waiting for " + status.minPlayers + " players to start.";
        }
        roundStatus.textContent = "Rounds played: " + status.roundsPlayed + " of " + status.maxRounds;
      }

      function watchLobby() {
        const scheme = location.protocol === "https:" ? "wss" : "ws";
        const socket = new WebSocket(scheme + "://" + location.host + "/ws/lobby");
        socket.addEventListener("message", (event) => {
          const payload = JSON.parse(event.data);
          if (payload.type === "lobby") {
            render(payload);
          }
        });
        socket.addEventListener("close", () => {
          lobbyStatus.textContent = "Disconnected. Retrying...";
          setTimeout(watchLobby, 2000);
        });
      }

      watchLobby();
    </script>
  </body>
</html>
`)
		return nil
	})
}
