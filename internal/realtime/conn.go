package realtime

import (
	"time"

	"github.com/fasthttp/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxFrameSize = 64 << 10

// ConnOptions controls per-connection timing.
type ConnOptions struct {
	SendBuffer   int
	PingInterval time.Duration
	WriteTimeout time.Duration
}

// Serve runs one websocket connection until the peer goes away. It blocks, and
// the connection is closed when it returns.
func Serve(conn *websocket.Conn, hub *Hub, router *Router, opts ConnOptions, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 10 * time.Second
	}

	client := NewClient(uuid.NewString(), opts.SendBuffer)
	log := logger.With(zap.String("conn_id", client.ID()))
	hub.Register(client)

	done := make(chan struct{})
	go func() {
		defer close(done)
		writeLoop(conn, client, opts)
	}()

	readLoop(conn, client, router, opts, log)
	hub.Unregister(client)
	<-done
}

func readLoop(conn *websocket.Conn, client *Client, router *Router, opts ConnOptions, log *zap.Logger) {
	conn.SetReadLimit(maxFrameSize)
	if opts.PingInterval > 0 {
		pongWait := 2 * opts.PingInterval
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
	}

	for {
		msgType, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("websocket read failed", zap.Error(err))
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		if err := router.Dispatch(client, raw); err != nil {
			log.Warn("realtime event rejected", zap.Error(err))
		}
	}
}

func writeLoop(conn *websocket.Conn, client *Client, opts ConnOptions) {
	// A failed write closes the socket so the read loop unblocks too.
	defer conn.Close()

	var tick <-chan time.Time
	if opts.PingInterval > 0 {
		ticker := time.NewTicker(opts.PingInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case frame, ok := <-client.Send():
			_ = conn.SetWriteDeadline(time.Now().Add(opts.WriteTimeout))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-tick:
			_ = conn.SetWriteDeadline(time.Now().Add(opts.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
