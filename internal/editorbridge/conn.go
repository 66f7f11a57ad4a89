package editorbridge

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/specialistvlad/boxwire/internal/ctxlog"
)

// Conn is the part of a socket.io connection the bridge uses.
type Conn interface {
	Emit(event string, args ...any) error
	On(event string, fn func(args ...any))
	Close()
}

// DialConfig describes where the editor listens.
type DialConfig struct {
	URL       string
	Namespace string
	Timeout   time.Duration
}

type socketConn struct {
	io *socket.Socket
}

func (c *socketConn) Emit(event string, args ...any) error { return c.io.Emit(event, args...) }

func (c *socketConn) On(event string, fn func(args ...any)) {
	c.io.On(types.EventName(event), func(args ...any) { fn(args...) })
}

func (c *socketConn) Close() { c.io.Disconnect() }

// Dial connects to the editor and waits for the handshake.
func Dial(ctx context.Context, cfg DialConfig) (Conn, error) {
	logger := ctxlog.FromContext(ctx).With("url", cfg.URL)

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse editor URL: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.Namespace, opts)

	connectChan := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Connected to editor.", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		var err error = fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		connectChan <- err
	})

	logger.Debug("Connecting to editor...")
	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &socketConn{io: io}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", timeout)
	}
}
