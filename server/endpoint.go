package server

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"jutsuclash/session"
)

var (
	// ErrBackpressure は書き込みチャネルが満杯の場合に返されるエラーです。
	ErrBackpressure = errors.New("server: write channel is full, apply backpressure")
	// ErrInitializationFailed はエンドポイントの初期化に失敗した場合に返されるエラーです。
	ErrInitializationFailed = errors.New("server: failed to initialize endpoint")
)

// MessageHandler は受信メッセージと切断の通知先です。Routerが実装します。
type MessageHandler interface {
	HandleMessage(ctx context.Context, sess *session.Session, data []byte)
	HandleDisconnect(ctx context.Context, sess *session.Session)
}

// Endpoint は1接続の読み書きループを所有します。
// 受信データの解釈はMessageHandlerに委譲し、送信はwriteCh経由で直列化します。
type Endpoint struct {
	ctx    context.Context
	cancel context.CancelFunc

	session   *session.Session
	transport Transport
	handler   MessageHandler

	writeCh chan []byte

	closed atomic.Bool
}

func NewEndpoint(sess *session.Session, transport Transport, handler MessageHandler) (*Endpoint, error) {
	if sess == nil || transport == nil || handler == nil {
		return nil, ErrInitializationFailed
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Endpoint{
		ctx:       ctx,
		cancel:    cancel,
		session:   sess,
		transport: transport,
		handler:   handler,
		writeCh:   make(chan []byte, 256),
	}, nil
}

func (ep *Endpoint) Session() *session.Session { return ep.session }

// Run は読み書きループを起動し、接続が閉じるまでブロックします。
func (ep *Endpoint) Run() error {
	eg, ctx := errgroup.WithContext(ep.ctx)
	eg.Go(func() error {
		ep.readLoop(ctx)
		return nil
	})
	eg.Go(func() error {
		ep.writeLoop(ctx)
		return nil
	})

	// プレイヤーID通知を送信
	connected, err := EncodeEnvelope(EventConnected, ConnectedPayload{
		PlayerID: string(ep.session.PlayerID()),
	})
	if err != nil {
		return err
	}
	if err := ep.Send(connected); err != nil {
		return err
	}

	return eg.Wait()
}

// Send は書き込みチャネルに積みます。満杯ならメッセージを落とします。
// ゲーム状態は次のbattle:updateで追い付くため、遅い受信者を待ちません。
func (ep *Endpoint) Send(data []byte) error {
	select {
	case ep.writeCh <- data:
		return nil
	default:
		return ErrBackpressure
	}
}

// Close はエンドポイントを閉じます。何度呼んでも安全です。
func (ep *Endpoint) Close(reason session.CloseReason) {
	if !ep.closed.CompareAndSwap(false, true) {
		return
	}
	ep.cancel()
	ep.session.Close(reason)
	_ = ep.transport.Close(int32(websocketStatusNormalClosure), "")
}

func (ep *Endpoint) readLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			data, err := ep.transport.Read(ctx)
			if err != nil {
				ep.Close(session.CloseReasonClientGone)
				return
			}
			ep.session.TouchRead()
			ep.handler.HandleMessage(ctx, ep.session, data)
		}
	}
}

func (ep *Endpoint) writeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case data := <-ep.writeCh:
			if err := ep.transport.Write(ctx, data); err != nil {
				slog.WarnContext(ctx, "write failed", "playerID", ep.session.PlayerID(), "err", err)
				ep.Close(session.CloseReasonClientGone)
				return
			}
			ep.session.TouchWrite()
		}
	}
}

const websocketStatusNormalClosure = 1000
