package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/goliatone/go-paramconfig/pkg/control"
	"github.com/goliatone/go-paramconfig/pkg/model"
	"github.com/goliatone/go-paramconfig/pkg/render"
	"github.com/goliatone/go-paramconfig/pkg/renderers/html"
	"github.com/goliatone/go-paramconfig/pkg/store"
)

// Client message types.
const (
	MessageInput = "input"
	MessageClick = "click"
	MessageSync  = "sync"
)

// ClientMessage is what the browser runtime sends.
type ClientMessage struct {
	Type  string          `json:"type"`
	ID    string          `json:"id,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
}

type errorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

type liveSession struct {
	*session
	server  *Server
	conn    *websocket.Conn
	base    *url.URL
	writeMu sync.Mutex
	version uint64
}

func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	sess, err := s.newSession(r.URL.RawQuery)
	if err != nil {
		s.fail(w, err)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	live := &liveSession{
		session: sess,
		server:  s,
		conn:    conn,
		base:    s.shareBase(r),
		version: sess.doc.Version(),
	}
	remove := sess.store.AddListener(live.push)
	defer remove()

	for {
		var msg ClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("websocket closed", "error", err)
			}
			return
		}
		live.apply(msg)
	}
}

func (l *liveSession) apply(msg ClientMessage) {
	if msg.Type == MessageSync {
		l.store.TellListeners(true)
		return
	}
	node, ok := l.doc.Element(msg.ID)
	if !ok {
		l.write(errorMessage{Type: "error", Error: "unknown control " + msg.ID})
		return
	}
	switch msg.Type {
	case MessageClick:
		node.Click()
	case MessageInput:
		value, err := decodeValue(node.Descriptor(), msg.Value)
		if err != nil {
			l.write(errorMessage{Type: "error", Error: err.Error()})
			return
		}
		node.Input(value)
	default:
		l.write(errorMessage{Type: "error", Error: "unknown message type " + msg.Type})
	}
}

// decodeValue keeps JSON numbers, booleans and strings as they are; the
// parsers coerce and validate them.
func decodeValue(d control.Descriptor, raw json.RawMessage) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, err
	}
	if d.Kind == model.KindCheckbox {
		if s, ok := value.(string); ok {
			return s == "true" || s == "on", nil
		}
	}
	return value, nil
}

func (l *liveSession) push(state store.Snapshot, updates []string) {
	msg := StateResponse{
		Type:    "state",
		State:   state,
		Updates: updates,
		Query:   l.store.SerialiseToURLParams(l.server.serialiseOptions()...),
		Share:   l.store.ShareURL(l.base, l.server.serialiseOptions()...),
	}
	if version := l.doc.Version(); version != l.version {
		l.version = version
		renderer, err := l.server.renderers.Get(html.Name)
		if err == nil {
			fragment, err := renderer.Render(context.Background(), l.doc, render.RenderOptions{Fragment: true})
			if err != nil {
				l.server.logger.Warn("fragment render failed", "error", err)
			} else {
				msg.HTML = string(fragment)
			}
		}
	}
	l.write(msg)
}

func (l *liveSession) write(v any) {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	if err := l.conn.WriteJSON(v); err != nil {
		l.server.logger.Debug("websocket write failed", "error", err)
	}
}
