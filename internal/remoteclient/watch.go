package remoteclient

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	watchPath      = "/v1/notes/watch"
	redialInterval = 5 * time.Second
)

// Subscribe opens the server's change feed and invokes onChange for
// every frame received. Frames carry no payload: they only mean "state
// changed, pull when convenient". The connection is redialed when it
// drops; the feed is best effort and the engine never depends on it
// for correctness.
//
// The returned stop function ends the feed. Subscribe itself only
// fails on a malformed base URL; dial failures are retried in the
// background.
func (c *Client) Subscribe(ctx context.Context, onChange func()) (func(), error) {
	wsURL, err := c.watchURL()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	go c.watchLoop(ctx, wsURL, onChange)
	return cancel, nil
}

func (c *Client) watchURL() (string, error) {
	base := c.BaseURL
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + watchPath, nil
}

func (c *Client) watchLoop(ctx context.Context, wsURL string, onChange func()) {
	header := http.Header{}
	if c.AuthKey != "" {
		header.Set("Authorization", "Bearer "+c.AuthKey)
	}
	if c.DeviceID != "" {
		header.Set("X-Device-ID", c.DeviceID)
	}

	for {
		if ctx.Err() != nil {
			return
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
		if err != nil {
			slog.Debug("change feed dial failed", "url", wsURL, "err", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(redialInterval):
			}
			continue
		}

		slog.Debug("change feed connected", "url", wsURL)
		c.readFrames(ctx, conn, onChange)
		conn.Close()
	}
}

// readFrames consumes frames until the connection drops or ctx ends.
func (c *Client) readFrames(ctx context.Context, conn *websocket.Conn, onChange func()) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if ctx.Err() == nil {
				slog.Debug("change feed closed", "err", err)
			}
			return
		}
		onChange()
	}
}
