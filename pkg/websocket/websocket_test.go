package websocketPkg

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newInferenceServer(t *testing.T, reply func(text string) (string, bool)) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var req classifyRequest
			if err := json.Unmarshal(msg, &req); err != nil {
				return
			}
			out, ok := reply(req.Text)
			if !ok {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(out)); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestClassify(t *testing.T) {
	srv := newInferenceServer(t, func(text string) (string, bool) {
		if text == "aku stres" {
			return `{"tag":"stress_general","confidence":0.91}`, true
		}
		return `{"tag":"greeting","confidence":1.7}`, true
	})

	client := newClient(wsURL(srv))
	defer client.CloseConnections()

	got, err := client.Classify(context.Background(), "aku stres")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Tag != "stress_general" || got.Confidence != 0.91 {
		t.Errorf("unexpected prediction %+v", got)
	}
	if !client.IsConnected() {
		t.Error("expected connection to be kept")
	}

	got, err = client.Classify(context.Background(), "halo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Confidence != 1 {
		t.Errorf("confidence not clamped: %v", got.Confidence)
	}
}

func TestClassify_ServerError(t *testing.T) {
	srv := newInferenceServer(t, func(string) (string, bool) {
		return `{"error":"model not loaded"}`, true
	})

	client := newClient(wsURL(srv))
	defer client.CloseConnections()

	_, err := client.Classify(context.Background(), "halo")
	if err == nil || !strings.Contains(err.Error(), "model not loaded") {
		t.Fatalf("expected server error, got %v", err)
	}
}

func TestClassify_RespectsContextDeadline(t *testing.T) {
	srv := newInferenceServer(t, func(string) (string, bool) {
		return "", false
	})

	client := newClient(wsURL(srv))
	defer client.CloseConnections()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.Classify(ctx, "halo")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("classify did not stop at the context deadline")
	}
	if client.IsConnected() {
		t.Error("timed out connection should be dropped")
	}
}

func TestClassify_Unreachable(t *testing.T) {
	client := newClient("ws://127.0.0.1:1/intent")

	if _, err := client.Classify(context.Background(), "halo"); err == nil {
		t.Fatal("expected connection error")
	}
}

// newSilentListener accepts TCP connections and never answers, so a websocket
// handshake against it hangs until the client gives up.
func newSilentListener(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	done := make(chan struct{})
	go func() {
		var held []net.Conn
		defer func() {
			for _, conn := range held {
				conn.Close()
			}
		}()
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			held = append(held, conn)
			select {
			case <-done:
				return
			default:
			}
		}
	}()
	t.Cleanup(func() {
		close(done)
		ln.Close()
	})

	return "ws://" + ln.Addr().String() + "/intent"
}

func TestClassify_DialRespectsContextDeadline(t *testing.T) {
	client := newClient(newSilentListener(t))
	defer client.CloseConnections()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.Classify(ctx, "halo")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("handshake outlived the context deadline: %v", elapsed)
	}
}

func TestClassify_WaitingCallerRespectsContext(t *testing.T) {
	client := newClient(newSilentListener(t))
	defer client.CloseConnections()

	firstCtx, cancelFirst := context.WithTimeout(context.Background(), time.Second)
	defer cancelFirst()

	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		client.Classify(firstCtx, "pertama")
	}()

	// Let the first call take the exchange slot and block in the handshake.
	time.Sleep(100 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.Classify(ctx, "kedua")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded while waiting, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("waiting caller blocked past its deadline: %v", elapsed)
	}

	select {
	case <-firstDone:
	case <-time.After(3 * time.Second):
		t.Error("first caller outlived its deadline")
	}
}
