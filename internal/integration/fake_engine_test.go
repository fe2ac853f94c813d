package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
)

// fakeEngine plays a two-move game per cookie session: the human moves once,
// the opponent answers and the game ends.
type fakeEngine struct {
	mu      sync.Mutex
	next    int
	games   map[string]*fakeGame
	noState int
}

type fakeGame struct {
	color     string
	userMoves int
}

func newFakeEngine(t *testing.T) (*fakeEngine, *httptest.Server) {
	t.Helper()
	f := &fakeEngine{games: map[string]*fakeGame{}}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>engine</html>"))
	})
	mux.HandleFunc("/play_game", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.next++
		id := strconv.Itoa(f.next)
		f.games[id] = &fakeGame{color: r.FormValue("color")}
		f.mu.Unlock()
		http.SetCookie(w, &http.Cookie{Name: "session", Value: id, Path: "/"})
		w.Write([]byte("<html>board</html>"))
	})
	mux.HandleFunc("/get_game_state", f.withGame(func(w http.ResponseWriter, g *fakeGame) {
		rows := make([][]string, 8)
		for r := range rows {
			rows[r] = []string{"EMPTY", "EMPTY", "EMPTY", "EMPTY", "EMPTY", "EMPTY", "EMPTY", "EMPTY"}
		}
		rows[3][3], rows[4][4] = "WHITE", "WHITE"
		rows[3][4], rows[4][3] = "BLACK", "BLACK"
		if g.userMoves == 0 {
			rows[2][3], rows[3][2], rows[4][5], rows[5][4] = "VALID", "VALID", "VALID", "VALID"
		}
		writeJSON(w, map[string]any{"game_state": rows})
	}))
	mux.HandleFunc("/user_move", f.withGame(func(w http.ResponseWriter, g *fakeGame) {
		g.userMoves++
		writeJSON(w, map[string]any{"game_over": false})
	}))
	mux.HandleFunc("/agent_move", f.withGame(func(w http.ResponseWriter, g *fakeGame) {
		writeJSON(w, map[string]any{"game_over": true, "agent_moved": true, "user_has_moves": false})
	}))
	mux.HandleFunc("/get_game_outcome", f.withGame(func(w http.ResponseWriter, g *fakeGame) {
		writeJSON(w, map[string]any{"outcome_message": "Game over. Black wins. Score: Black 5 - White 0"})
	}))
	mux.HandleFunc("/reset_game", f.withGame(func(w http.ResponseWriter, g *fakeGame) {
		g.userMoves = 0
		writeJSON(w, map[string]any{"message": "Game reset"})
	}))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeEngine) withGame(h func(http.ResponseWriter, *fakeGame)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		var g *fakeGame
		if c, err := r.Cookie("session"); err == nil {
			g = f.games[c.Value]
		}
		if g == nil {
			f.noState++
			writeJSON(w, map[string]any{"message": "Game instance not found"})
			return
		}
		h(w, g)
	}
}

func (f *fakeEngine) sessionsWithoutGame() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.noState
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
