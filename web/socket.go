package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/gophersatwork/abacus"
)

const (
	writeWait      = 5 * time.Second
	maxMessageSize = 1 << 10
)

// Frame types sent to the browser.
const (
	frameDisplay = "display"
	framePong    = "pong"
	frameError   = "error"
)

// clientMessage is a message from the browser. Which fields are set
// depends on Type.
type clientMessage struct {
	Type   string `json:"type"`
	Key    string `json:"key,omitempty"`
	Value  string `json:"value,omitempty"`
	Action string `json:"action,omitempty"`
	Index  *int   `json:"index,omitempty"`
}

// frame is a message to the browser.
type frame struct {
	Type    string          `json:"type"`
	Data    *abacus.Display `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

func displayFrame(d abacus.Display) *frame {
	return &frame{Type: frameDisplay, Data: &d}
}

func errorFrame(err error) *frame {
	return &frame{Type: frameError, Message: err.Error()}
}

// client is one websocket connection and its session.
type client struct {
	id   string
	conn *websocket.Conn
	log  *zap.Logger
	calc *abacus.Calculator

	mu     sync.Mutex // serialises writes
	closed bool
}

// generateClientID returns a short time-based connection id.
func generateClientID() string {
	return strconv.FormatInt(time.Now().UnixNano(), 36)
}

// send writes a frame. The error reset writes from its own goroutine.
func (c *client) send(f *frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return websocket.ErrCloseSent
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(f)
}

func (c *client) close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
	c.mu.Unlock()

	c.calc.Close()
	_ = c.conn.Close()
}

// handleWebSocket upgrades the connection and runs a session on it until the
// browser disconnects.
func (s *Server) handleWebSocket() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.log.Debug("websocket upgrade failed", zap.Error(err))
			return
		}

		c := &client{
			id:   generateClientID(),
			conn: conn,
		}
		c.log = s.log.With(zap.String("client", c.id))
		c.calc = s.newSession(func(d abacus.Display) {
			if err := c.send(displayFrame(d)); err != nil {
				c.log.Debug("failed to push reset", zap.Error(err))
			}
		})

		s.register(c)
		defer func() {
			s.unregister(c)
			c.close()
			c.log.Info("session closed")
		}()
		c.log.Info("session opened", zap.String("remote", r.RemoteAddr))

		if err := c.send(displayFrame(c.calc.Display())); err != nil {
			return
		}
		s.readLoop(c)
	})
}

// readLoop handles messages until the connection fails.
func (s *Server) readLoop(c *client) {
	c.conn.SetReadLimit(maxMessageSize)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("websocket read failed", zap.Error(err))
			}
			return
		}

		var msg clientMessage
		var reply *frame
		if err := json.Unmarshal(data, &msg); err != nil {
			reply = errorFrame(errors.New("invalid message"))
		} else {
			reply = handleMessage(c.calc, msg)
		}
		if reply == nil {
			continue
		}

		if err := c.send(reply); err != nil {
			c.log.Debug("websocket write failed", zap.Error(err))
			return
		}
	}
}

// handleMessage applies one browser message to calc and returns the reply,
// or nil for an unmapped key.
func handleMessage(calc *abacus.Calculator, msg clientMessage) *frame {
	switch msg.Type {
	case "key":
		d, ok := calc.PressKey(msg.Key)
		if !ok {
			return nil
		}
		return displayFrame(d)
	case "button":
		d, err := calc.PressButton(msg.Value, msg.Action)
		if err != nil {
			return errorFrame(err)
		}
		return displayFrame(d)
	case "select":
		if msg.Index == nil {
			return errorFrame(errors.New("index is required"))
		}
		d, err := calc.SelectHistory(*msg.Index)
		if err != nil {
			return errorFrame(err)
		}
		return displayFrame(d)
	case "clear_history":
		return displayFrame(calc.ClearHistory())
	case "toggle_theme":
		return displayFrame(calc.ToggleTheme())
	case "ping":
		return &frame{Type: framePong}
	}
	return errorFrame(errors.New("unknown message type: " + msg.Type))
}
