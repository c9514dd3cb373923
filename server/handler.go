package server

import (
	"log/slog"
	"net/http"

	"github.com/coder/websocket"

	"jutsuclash/session"
)

// AcceptHandler はWebSocket接続を受け付け、エンドポイントを起動します。
type AcceptHandler struct {
	router *Router
}

func NewAcceptHandler(router *Router) *AcceptHandler {
	return &AcceptHandler{router: router}
}

func (h *AcceptHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // 開発用: Origin チェックをスキップ
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to accept", "err", err)
		return
	}

	sess := session.New()
	transport := NewTransportFrom(conn)
	endpoint, err := NewEndpoint(sess, transport, h.router)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create endpoint", "err", err)
		_ = conn.Close(websocket.StatusInternalError, "initialization failed")
		return
	}

	h.router.Attach(endpoint)
	defer h.router.HandleDisconnect(ctx, sess)

	slog.DebugContext(ctx, "accepted new connection", "playerID", sess.PlayerID())
	if err := endpoint.Run(); err != nil {
		slog.ErrorContext(ctx, "endpoint terminated", "playerID", sess.PlayerID(), "err", err)
	}
}

// NewHealthHandler は死活監視用のハンドラを返します。
func NewHealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}
}
