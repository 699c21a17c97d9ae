package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/Kkkiiiirran/FitFlow/internal/app"
	"github.com/Kkkiiiirran/FitFlow/internal/exercise"
	"github.com/Kkkiiiirran/FitFlow/internal/motivation"
	"github.com/Kkkiiiirran/FitFlow/internal/pose"
	"github.com/Kkkiiiirran/FitFlow/internal/rep"
	"github.com/Kkkiiiirran/FitFlow/internal/session"
)

const (
	// maxFrameBytes bounds one incoming frame message.
	maxFrameBytes = 64 << 10
	writeTimeout  = 5 * time.Second
)

// Message types sent and accepted on a session connection.
const (
	MessageSession    = "session"
	MessageResult     = "result"
	MessageMotivation = "motivation"
	MessageError      = "error"
	MessageReset      = "reset"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// SessionMessage is one server to client message.
type SessionMessage struct {
	Type      string              `json:"type"`
	SessionID string              `json:"session_id,omitempty"`
	Exercise  string              `json:"exercise,omitempty"`
	Result    *rep.Result         `json:"result,omitempty"`
	Message   *motivation.Message `json:"message,omitempty"`
	Error     string              `json:"error,omitempty"`
}

type clientMessage struct {
	Type string `json:"type"`
}

// SessionHandler runs one detection session per WebSocket connection. The
// client pushes frames in the pose wire format and receives one result per
// frame, followed by any motivation message the frame triggered. A message
// of type "reset" resets the session.
type SessionHandler struct {
	app *app.App
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(a *app.App) *SessionHandler {
	return &SessionHandler{app: a}
}

// ServeHTTP handles WebSocket upgrade requests on /api/sessions/{exercise}.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	exerciseID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/sessions/"), "/")
	if _, err := h.app.Registry().Lookup(exerciseID); err != nil {
		if errors.Is(err, exercise.ErrUnknownExercise) {
			http.Error(w, "Exercise not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to get exercise", http.StatusInternalServerError)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade error")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxFrameBytes)

	c := &sessionConn{conn: conn}
	entry := log.WithFields(log.Fields{
		"remote":   r.RemoteAddr,
		"exercise": exerciseID,
	})

	t, err := h.app.NewTracker(exerciseID, c.queue, session.WithLogger(entry))
	if err != nil {
		entry.WithError(err).Error("failed to start session")
		c.write(SessionMessage{Type: MessageError, Error: err.Error()})
		return
	}
	defer t.Close()

	s := t.Session()
	snap := s.Snapshot()
	if err := c.write(SessionMessage{Type: MessageSession, SessionID: s.ID(), Exercise: exerciseID, Result: &snap}); err != nil {
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				entry.WithError(err).Debug("session connection closed")
			}
			return
		}

		if err := c.handle(t, data); err != nil {
			entry.WithError(err).Debug("failed to write to session connection")
			return
		}
	}
}

// sessionConn serializes writes to one connection and holds the motivation
// messages queued while a frame was processed.
type sessionConn struct {
	conn *websocket.Conn

	mu      sync.Mutex
	pending []motivation.Message
}

// queue is the coach publish callback; it must not block.
func (c *sessionConn) queue(msg motivation.Message) {
	c.mu.Lock()
	c.pending = append(c.pending, msg)
	c.mu.Unlock()
}

func (c *sessionConn) handle(t *app.Tracker, data []byte) error {
	var cm clientMessage
	if err := json.Unmarshal(data, &cm); err != nil {
		return c.write(SessionMessage{Type: MessageError, Error: "invalid JSON"})
	}

	s := t.Session()
	switch cm.Type {
	case "":
		f := pose.NewFrame()
		if err := json.Unmarshal(data, f); err != nil {
			return c.write(SessionMessage{Type: MessageError, Error: "invalid frame"})
		}
		res := t.Process(f)
		if err := c.write(SessionMessage{Type: MessageResult, Result: &res}); err != nil {
			return err
		}
		return c.flush()
	case MessageReset:
		s.Reset()
		res := s.Snapshot()
		return c.write(SessionMessage{Type: MessageResult, Result: &res})
	default:
		return c.write(SessionMessage{Type: MessageError, Error: "unknown message type " + cm.Type})
	}
}

func (c *sessionConn) flush() error {
	c.mu.Lock()
	msgs := c.pending
	c.pending = nil
	c.mu.Unlock()

	for i := range msgs {
		if err := c.write(SessionMessage{Type: MessageMotivation, Message: &msgs[i]}); err != nil {
			return err
		}
	}
	return nil
}

func (c *sessionConn) write(msg SessionMessage) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(msg)
}
