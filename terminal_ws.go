package main

import (
	"context"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/cnsenarathna/portfolio/logging"
	"github.com/cnsenarathna/portfolio/terminal"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// wsFrame is one message on the terminal socket, in either direction.
type wsFrame struct {
	Type   string `json:"type"`
	Slot   int    `json:"slot,omitempty"`
	Data   string `json:"data,omitempty"`
	Key    string `json:"key,omitempty"`
	Target string `json:"target,omitempty"`
	Offset int    `json:"offset,omitempty"`
	URL    string `json:"url,omitempty"`
}

// wsScreen draws a terminal session in the browser by streaming frames.
// Frames are queued for a single writer goroutine, which also sends pings.
type wsScreen struct {
	send chan wsFrame
	done chan struct{}

	mu   sync.Mutex
	slot int
}

func newWSScreen() *wsScreen {
	return &wsScreen{
		send: make(chan wsFrame, 256),
		done: make(chan struct{}),
	}
}

func (s *wsScreen) push(f wsFrame) {
	select {
	case s.send <- f:
	case <-s.done:
	}
}

type wsOutput struct {
	screen *wsScreen
	slot   int
}

func (o wsOutput) Append(r rune) {
	o.screen.push(wsFrame{Type: "char", Slot: o.slot, Data: string(r)})
}

func (s *wsScreen) OpenOutput() terminal.Output {
	s.mu.Lock()
	s.slot++
	slot := s.slot
	s.mu.Unlock()
	s.push(wsFrame{Type: "output", Slot: slot})
	return wsOutput{screen: s, slot: slot}
}

func (s *wsScreen) ShowInput(prompt string) { s.push(wsFrame{Type: "prompt", Data: prompt}) }
func (s *wsScreen) SetInput(value string)   { s.push(wsFrame{Type: "input", Data: value}) }
func (s *wsScreen) Echo(line string)        { s.push(wsFrame{Type: "echo", Data: line}) }
func (s *wsScreen) Clear()                  { s.push(wsFrame{Type: "clear"}) }
func (s *wsScreen) Focus()                  { s.push(wsFrame{Type: "focus"}) }

func (s *wsScreen) Perform(a terminal.Action) {
	switch a.Kind {
	case terminal.ActionScroll:
		s.push(wsFrame{Type: "scroll", Target: a.Target, Offset: a.Offset})
	case terminal.ActionNavigate:
		s.push(wsFrame{Type: "navigate", URL: a.Target})
	}
}

// writePump owns all writes to conn. It closes done when it stops so
// producers never block on a dead connection.
func (s *wsScreen) writePump(ctx context.Context, conn *websocket.Conn, log *logging.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		close(s.done)
		conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case f := <-s.send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(f); err != nil {
				log.Debug("terminal write failed", "error", err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (a *App) setupTerminalRoutes(r *gin.Engine) {
	r.GET("/terminal/ws", a.handleTerminal)
}

// handleTerminal runs one terminal session for the lifetime of the socket.
func (a *App) handleTerminal(c *gin.Context) {
	log := logging.FromContext(c.Request.Context())

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn("terminal upgrade failed", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	screen := newWSScreen()
	go screen.writePump(ctx, conn, log)

	session := terminal.NewSession(screen, a.terminal)
	session.Start(ctx)
	log.Debug("terminal session started")

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var f wsFrame
		if err := conn.ReadJSON(&f); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug("terminal read failed", "error", err)
			}
			break
		}
		switch f.Type {
		case "key":
			session.HandleKey(terminal.Key(f.Key), f.Data)
		case "click":
			session.Click()
		}
	}

	cancel()
	session.Wait()
	<-screen.done
	log.Debug("terminal session ended", "history", len(session.History()))
}
