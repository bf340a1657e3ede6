package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/xhad/jaundice/internal/models"
	"github.com/xhad/jaundice/pkg/analyzer"
	"github.com/xhad/jaundice/pkg/report"
)

const (
	msgAnalyze = "analyze"
	msgArticle = "article"
	msgOutcome = "outcome"
	msgDone    = "done"
	msgError   = "error"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Message struct {
	Type    string      `json:"type"`
	Content string      `json:"content,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// wsConn serializes writes; gorilla allows one concurrent writer only.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) send(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(msg)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	// the HTTP server's read deadline must not end long lived sessions
	conn.SetReadDeadline(time.Time{})

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	c := &wsConn{conn: conn}
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("Error reading message", "error", err)
			}
			cancel()
			return
		}

		var msg Message
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.sendMessage(c, Message{Type: msgError, Content: "malformed message"})
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handleMessage(ctx, c, msg)
		}()
	}
}

func (s *Server) handleMessage(ctx context.Context, c *wsConn, msg Message) {
	switch msg.Type {
	case msgAnalyze:
		s.streamBatch(ctx, c, msg.Content)
	case msgArticle:
		s.sendArticle(ctx, c, strings.TrimSpace(msg.Content))
	default:
		s.sendMessage(c, Message{Type: msgError, Content: "unknown message type " + msg.Type})
	}
}

func (s *Server) streamBatch(ctx context.Context, c *wsConn, content string) {
	urls, err := analyzer.ParseURLs(content)
	if err != nil {
		s.sendMessage(c, Message{Type: msgError, Content: err.Error()})
		return
	}

	streaming := s.analyzer.With(analyzer.WithOutcomeHook(func(outcome models.ArticleOutcome) {
		s.sendMessage(c, Message{Type: msgOutcome, Data: report.NewItem(outcome)})
	}))

	outcomes, err := streaming.Run(ctx, urls)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error("batch failed", "urls", len(urls), "error", err)
			s.sendMessage(c, Message{Type: msgError, Content: err.Error()})
		}
		return
	}

	s.record(ctx, outcomes)
	s.sendMessage(c, Message{Type: msgDone, Data: report.JSON(outcomes)})
}

func (s *Server) sendArticle(ctx context.Context, c *wsConn, url string) {
	if url == "" {
		s.sendMessage(c, Message{Type: msgError, Content: "url not found in message"})
		return
	}

	article, err := s.analyzer.Article(ctx, url)
	if err != nil {
		s.sendMessage(c, Message{Type: msgError, Content: err.Error()})
		return
	}
	s.sendMessage(c, Message{Type: msgArticle, Content: article})
}

func (s *Server) sendMessage(c *wsConn, msg Message) {
	if err := c.send(msg); err != nil {
		s.logger.Debug("Error sending message", "type", msg.Type, "error", err)
	}
}
