package websocketPkg

import (
	"TemanCerita/pkg/nlp"
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const defaultClassifierURL = "ws://localhost:8000/api/v1/intent/ws"

// IWebsocket is an intent classifier served by the inference server over a
// long-lived websocket.
type IWebsocket interface {
	nlp.IClassifier
	IsConnected() bool
	Reconnect() error
	CloseConnections()
}

type classifyRequest struct {
	Text string `json:"text"`
}

type classifyResponse struct {
	Tag        string  `json:"tag"`
	Confidence float64 `json:"confidence"`
	Error      string  `json:"error,omitempty"`
}

type webSocketClient struct {
	url string
	// exchange admits one request/response pair on the shared connection.
	exchange *semaphore.Weighted
	// mu guards conn only and is never held across network I/O.
	mu               sync.Mutex
	conn             *websocket.Conn
	pingInterval     time.Duration
	readTimeout      time.Duration
	writeTimeout     time.Duration
	handshakeTimeout time.Duration
}

// NewAIWebSocketClient dials CLASSIFIER_WS_URL in the background. A failed
// first dial is retried on the first Classify call.
func NewAIWebSocketClient() IWebsocket {
	url := os.Getenv("CLASSIFIER_WS_URL")
	if url == "" {
		url = defaultClassifierURL
	}

	client := newClient(url)
	go client.connectInBackground()

	return client
}

func newClient(url string) *webSocketClient {
	return &webSocketClient{
		url:              url,
		exchange:         semaphore.NewWeighted(1),
		pingInterval:     30 * time.Second,
		readTimeout:      10 * time.Second,
		writeTimeout:     5 * time.Second,
		handshakeTimeout: 10 * time.Second,
	}
}

func (c *webSocketClient) connectInBackground() {
	if err := c.Reconnect(); err != nil {
		logrus.Warnf("Initial connection to intent classifier failed: %v. Will retry on demand.", err)
		return
	}
	logrus.Info("Connected to intent classifier")
}

func (c *webSocketClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

func (c *webSocketClient) Reconnect() error {
	ctx, cancel := context.WithTimeout(context.Background(), c.handshakeTimeout)
	defer cancel()

	if err := c.exchange.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("intent classifier busy: %w", err)
	}
	defer c.exchange.Release(1)

	_, err := c.dial(ctx)
	return err
}

// dial replaces the current connection. Callers hold the exchange slot.
func (c *webSocketClient) dial(ctx context.Context) (*websocket.Conn, error) {
	c.CloseConnections()

	if c.url == "" {
		return nil, errors.New("intent classifier URL not configured")
	}

	logrus.Debugf("Connecting to intent classifier at %s", c.url)

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = c.handshakeTimeout

	conn, _, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		if ctxErr := contextError(ctx); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("failed to connect to %s: %w", c.url, err)
	}

	conn.SetPingHandler(func(appData string) error {
		if err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(c.writeTimeout)); err != nil {
			logrus.Warnf("Error sending pong: %v", err)
		}
		return nil
	})

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	go c.keepAlive(conn)

	return conn, nil
}

func (c *webSocketClient) CloseConnections() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
}

func (c *webSocketClient) current() *websocket.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

// keepAlive pings conn until it is replaced or a ping fails. WriteControl may
// run alongside an in-flight exchange.
func (c *webSocketClient) keepAlive(conn *websocket.Conn) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for range ticker.C {
		if c.current() != conn {
			return
		}

		if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(c.writeTimeout)); err != nil {
			logrus.Warnf("Ping to intent classifier failed, marking connection as dead: %v", err)
			c.drop(conn)
			return
		}
	}
}

// Classify sends one utterance and waits for its prediction. Requests share
// one connection, so exchanges are serialized. Both the wait for a turn and
// the dial stop when ctx is done.
func (c *webSocketClient) Classify(ctx context.Context, text string) (*nlp.Classification, error) {
	if err := c.exchange.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer c.exchange.Release(1)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	conn := c.current()
	if conn == nil {
		var err error
		if conn, err = c.dial(ctx); err != nil {
			if ctxErr := contextError(ctx); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("cannot connect to intent classifier: %w", err)
		}
	}

	payload, err := json.Marshal(classifyRequest{Text: text})
	if err != nil {
		return nil, err
	}

	conn.SetWriteDeadline(c.deadline(ctx, c.writeTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		c.drop(conn)
		return nil, fmt.Errorf("error sending utterance: %w", err)
	}

	// A cancelled ctx unblocks the read by expiring its deadline.
	stop := context.AfterFunc(ctx, func() {
		conn.SetReadDeadline(time.Now())
	})
	defer stop()

	conn.SetReadDeadline(c.deadline(ctx, c.readTimeout))
	_, message, err := conn.ReadMessage()
	if err != nil {
		c.drop(conn)
		if ctxErr := contextError(ctx); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("error reading prediction: %w", err)
	}

	conn.SetReadDeadline(time.Time{})
	conn.SetWriteDeadline(time.Time{})

	var result classifyResponse
	if err := json.Unmarshal(message, &result); err != nil {
		return nil, fmt.Errorf("error unmarshaling prediction: %w", err)
	}
	if result.Error != "" {
		return nil, fmt.Errorf("intent classifier: %s", result.Error)
	}

	logrus.Debugf("Intent prediction: tag=%s confidence=%.2f", result.Tag, result.Confidence)

	return &nlp.Classification{
		Tag:        result.Tag,
		Confidence: nlp.ClampConfidence(result.Confidence),
	}, nil
}

func (c *webSocketClient) drop(conn *websocket.Conn) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()
	conn.Close()
}

func (c *webSocketClient) deadline(ctx context.Context, timeout time.Duration) time.Time {
	d := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(d) {
		return ctxDeadline
	}
	return d
}

// contextError reports ctx as done once its deadline has passed, even if the
// socket deadline fired a moment before the ctx timer did.
func contextError(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d, ok := ctx.Deadline(); ok && !time.Now().Before(d) {
		return context.DeadlineExceeded
	}
	return nil
}
