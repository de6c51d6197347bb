package websocketPkg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var ErrNoBestMove = errors.New("engine service returned no move")

var bestMovePattern = regexp.MustCompile(`^([a-h][1-8])([a-h][1-8])([qrbn])?$`)

type IEngineClient interface {
	BestMove(ctx context.Context, fen string, depth int, moveTime time.Duration) (*BestMove, error)
	IsConnected() bool
	Reconnect() error
	Close()
}

type searchRequest struct {
	FEN      string `json:"fen"`
	Depth    int    `json:"depth,omitempty"`
	MoveTime int64  `json:"movetime,omitempty"`
}

type searchResponse struct {
	BestMove string `json:"bestmove"`
	Error    string `json:"error,omitempty"`
}

// BestMove is a move reported by the engine service in coordinate form.
type BestMove struct {
	From      string
	To        string
	Promotion string
}

type engineClient struct {
	url          string
	conn         *websocket.Conn
	mu           sync.Mutex
	log          *logrus.Logger
	pingInterval time.Duration
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewEngineClient dials the engine service in the background; a failed first
// dial is retried on the next request.
func NewEngineClient(url string, logger *logrus.Logger) IEngineClient {
	if url == "" {
		url = os.Getenv("ENGINE_URL")
	}
	if url == "" {
		url = "ws://localhost:8002/api/v1/engine/ws"
	}

	client := &engineClient{
		url:          url,
		log:          logger,
		pingInterval: 30 * time.Second,
		readTimeout:  10 * time.Second,
		writeTimeout: 5 * time.Second,
	}

	go client.connectInBackground()

	return client
}

func (c *engineClient) connectInBackground() {
	if err := c.Reconnect(); err != nil {
		c.log.WithFields(logrus.Fields{
			"url":   c.url,
			"error": err.Error(),
		}).Warn("Initial connection to engine service failed, will retry on demand")
		return
	}
	c.log.WithFields(logrus.Fields{
		"url": c.url,
	}).Info("Connected to engine service")
}

func (c *engineClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

func (c *engineClient) Reconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	conn, _, err := dialer.Dial(c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.url, err)
	}

	conn.SetPingHandler(func(appData string) error {
		if err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(c.writeTimeout)); err != nil {
			c.log.WithFields(logrus.Fields{"error": err.Error()}).Debug("Error sending pong")
		}
		return nil
	})

	c.conn = conn
	go c.keepAlive(conn)

	return nil
}

func (c *engineClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *engineClient) keepAlive(conn *websocket.Conn) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		if c.conn != conn {
			c.mu.Unlock()
			return
		}

		err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(c.writeTimeout))
		if err != nil {
			c.log.WithFields(logrus.Fields{
				"error": err.Error(),
			}).Warn("Ping to engine service failed, marking connection as dead")
			c.conn = nil
			conn.Close()
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()
	}
}

func (c *engineClient) getConnection() (*websocket.Conn, error) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn != nil {
		return conn, nil
	}

	if err := c.Reconnect(); err != nil {
		return nil, fmt.Errorf("cannot connect to engine service: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil, errors.New("not connected to engine service")
	}
	return c.conn, nil
}

// BestMove holds the connection for the whole request/response exchange so
// concurrent searches never interleave frames.
func (c *engineClient) BestMove(ctx context.Context, fen string, depth int, moveTime time.Duration) (*BestMove, error) {
	conn, err := c.getConnection()
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(searchRequest{FEN: fen, Depth: depth, MoveTime: moveTime.Milliseconds()})
	if err != nil {
		return nil, fmt.Errorf("error encoding search request: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != conn {
		return nil, errors.New("engine connection was replaced")
	}

	readDeadline := time.Now().Add(c.readTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(readDeadline) {
		readDeadline = d
	}

	// Unblock the read below when ctx ends before the deadline.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Now())
	})
	defer stop()

	_ = conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		c.conn = nil
		conn.Close()
		return nil, fmt.Errorf("error sending search request: %w", err)
	}

	_ = conn.SetReadDeadline(readDeadline)
	_, message, err := conn.ReadMessage()
	if err != nil {
		c.conn = nil
		conn.Close()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("error reading engine response: %w", err)
	}

	_ = conn.SetReadDeadline(time.Time{})
	_ = conn.SetWriteDeadline(time.Time{})

	move, err := ParseBestMove(message)
	if err != nil {
		return nil, err
	}

	c.log.WithFields(logrus.Fields{
		"fen":  fen,
		"move": move.From + move.To + move.Promotion,
	}).Debug("Received move from engine service")

	return move, nil
}

// ParseBestMove accepts either {"bestmove":"e7e8q"} or a raw UCI
// "bestmove e7e8q [ponder ...]" line.
func ParseBestMove(message []byte) (*BestMove, error) {
	text := strings.TrimSpace(string(message))

	var uciMove string
	if strings.HasPrefix(text, "{") {
		var resp searchResponse
		if err := json.Unmarshal([]byte(text), &resp); err != nil {
			return nil, fmt.Errorf("error unmarshaling engine response: %w", err)
		}
		if resp.Error != "" {
			return nil, fmt.Errorf("engine service: %s", resp.Error)
		}
		uciMove = resp.BestMove
	} else {
		fields := strings.Fields(text)
		if len(fields) >= 2 && fields[0] == "bestmove" {
			uciMove = fields[1]
		}
	}

	m := bestMovePattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(uciMove)))
	if m == nil {
		return nil, ErrNoBestMove
	}
	return &BestMove{From: m[1], To: m[2], Promotion: m[3]}, nil
}
