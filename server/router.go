package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"jutsuclash/battle"
	"jutsuclash/domain"
	"jutsuclash/matchmaking"
	"jutsuclash/session"
)

// Router は接続中のエンドポイントを管理し、受信イベントをキューとエンジンへ
// 振り分けます。エンジンからの戦闘イベントは battle.Events として受け取り、
// 当事者双方へファンアウトします。
type Router struct {
	mu        sync.RWMutex
	endpoints map[domain.PlayerID]*Endpoint

	queue  *matchmaking.Queue
	engine *battle.Engine
}

var _ battle.Events = (*Router)(nil)
var _ MessageHandler = (*Router)(nil)

// NewRouter は未結線のルーターを返します。エンジンはEvents先として
// ルーターを要求し、キューは成立通知先としてルーターを要求するため、
// 依存は Bind で後から渡します。Run開始前に必ずBindしてください。
func NewRouter() *Router {
	return &Router{
		endpoints: make(map[domain.PlayerID]*Endpoint),
	}
}

// Bind はキューとエンジンを結線します。
func (r *Router) Bind(queue *matchmaking.Queue, engine *battle.Engine) {
	r.queue = queue
	r.engine = engine
}

// Attach はエンドポイントを登録します。
func (r *Router) Attach(ep *Endpoint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endpoints[ep.Session().PlayerID()] = ep
}

// Detach はエンドポイントの登録を外します。登録がなければ何もしません。
func (r *Router) Detach(playerID domain.PlayerID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.endpoints, playerID)
}

func (r *Router) endpoint(playerID domain.PlayerID) (*Endpoint, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ep, ok := r.endpoints[playerID]
	return ep, ok
}

// HandleMessage は1受信メッセージを解析して処理します。
// 不正なメッセージや棄却されたアクションはerrorイベントで返し、接続は切りません。
func (r *Router) HandleMessage(ctx context.Context, sess *session.Session, data []byte) {
	env, err := DecodeEnvelope(data)
	if err != nil {
		slog.WarnContext(ctx, "malformed envelope", "playerID", sess.PlayerID(), "err", err)
		r.sendError(ctx, sess.PlayerID(), "malformed message")
		return
	}

	playerID := sess.PlayerID()
	switch env.Event {
	case EventJoinMatchmaking:
		var p JoinMatchmakingPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			r.sendError(ctx, playerID, "malformed matchmaking:join payload")
			return
		}
		r.handleJoinMatchmaking(ctx, sess, p)

	case EventLeaveMatchmaking:
		r.queue.Leave(ctx, playerID)
		r.sendTo(ctx, playerID, EventMatchmakingLeft, nil)

	case EventPerformGesture:
		var p GesturePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			r.sendError(ctx, playerID, "malformed battle:gesture payload")
			return
		}
		sign := domain.HandSign(p.Gesture)
		if !domain.ValidSign(sign) {
			r.sendError(ctx, playerID, fmt.Sprintf("unknown hand sign: %s", p.Gesture))
			return
		}
		r.Dispatch(ctx, domain.GestureAction{
			PlayerID:   playerID,
			Sign:       sign,
			Confidence: p.Confidence,
			At:         time.UnixMilli(p.Timestamp),
		})

	case EventCastJutsu:
		var p CastJutsuPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			r.sendError(ctx, playerID, "malformed battle:cast_jutsu payload")
			return
		}
		r.Dispatch(ctx, domain.CastJutsuAction{
			CasterID: playerID,
			JutsuID:  p.JutsuID,
			TargetID: domain.PlayerID(p.TargetID),
			At:       time.UnixMilli(p.Timestamp),
		})

	case EventCancelSequence:
		r.Dispatch(ctx, domain.CancelAction{PlayerID: playerID})

	case EventForfeit:
		r.Dispatch(ctx, domain.ForfeitAction{PlayerID: playerID})

	default:
		slog.WarnContext(ctx, "unknown event", "playerID", playerID, "event", env.Event)
		r.sendError(ctx, playerID, fmt.Sprintf("unknown event: %s", env.Event))
	}
}

// HandleDisconnect は接続消失時の片付けです。キューから外し、
// 参加中の戦闘があれば切断理由で終了させます。
func (r *Router) HandleDisconnect(ctx context.Context, sess *session.Session) {
	playerID := sess.PlayerID()
	r.Detach(playerID)
	r.Dispatch(ctx, domain.DisconnectAction{PlayerID: playerID})
}

// Dispatch はアクションをエンジンとキューへ振り分けます。
// 種別は domain.Action に列挙されたものだけで、ここで網羅します。
func (r *Router) Dispatch(ctx context.Context, action domain.Action) {
	switch act := action.(type) {
	case domain.GestureAction:
		b, err := r.engine.RecordGesture(ctx, act.PlayerID, act.Sign, act.Confidence, act.At)
		if err != nil {
			r.sendError(ctx, act.PlayerID, err.Error())
			return
		}
		view := GestureView{
			PlayerID:   string(act.PlayerID),
			Gesture:    string(act.Sign),
			Confidence: act.Confidence,
			Timestamp:  act.At.UnixMilli(),
		}
		r.broadcast(ctx, b, EventGestureRecognized, view)

	case domain.CastJutsuAction:
		// 成功時の通知はエンジンがEvents経由で発火する。
		if _, err := r.engine.CastJutsu(ctx, act.CasterID, act.JutsuID, act.TargetID, act.At); err != nil {
			r.sendError(ctx, act.CasterID, err.Error())
		}

	case domain.CancelAction:
		r.engine.CancelSequence(ctx, act.PlayerID)

	case domain.ForfeitAction:
		if _, ok := r.engine.Forfeit(ctx, act.PlayerID); !ok {
			r.sendError(ctx, act.PlayerID, battle.ErrNotInBattle.Error())
		}

	case domain.TickAction:
		if _, err := r.engine.Tick(ctx, act.BattleID); err != nil {
			slog.WarnContext(ctx, "tick rejected", "battleID", act.BattleID, "err", err)
		}

	case domain.DisconnectAction:
		r.queue.Leave(ctx, act.PlayerID)
		r.engine.Disconnect(ctx, act.PlayerID)
	}
}

func (r *Router) handleJoinMatchmaking(ctx context.Context, sess *session.Session, p JoinMatchmakingPayload) {
	playerID := sess.PlayerID()
	if p.Username != "" {
		sess.SetUsername(p.Username)
	}

	req := matchmakingRequest(p)
	known := false
	for _, mode := range matchmaking.Modes {
		if req.Mode == mode {
			known = true
			break
		}
	}
	if !known {
		r.sendError(ctx, playerID, fmt.Sprintf("unknown mode: %s", p.Mode))
		return
	}
	// Finishedのままパージ待ちの戦闘は再エンキューを妨げない。
	if b, err := r.engine.BattleFor(playerID); err == nil && b.Status != domain.StatusFinished {
		r.sendError(ctx, playerID, battle.ErrAlreadyInBattle.Error())
		return
	}

	r.queue.Join(ctx, playerID, req)
	r.sendTo(ctx, playerID, EventMatchmakingJoined, struct {
		Mode string `json:"mode"`
	}{Mode: p.Mode})
}

// HandlePair はキューの成立通知を受けて戦闘を作ります。
// matchmaking.PairFunc に適合します。
func (r *Router) HandlePair(t1, t2 matchmaking.Ticket) {
	ctx := context.Background()

	p1 := domain.NewPlayerState(t1.PlayerID, r.username(t1.PlayerID), t1.Request.Elo)
	p2 := domain.NewPlayerState(t2.PlayerID, r.username(t2.PlayerID), t2.Request.Elo)

	b, err := r.engine.CreateBattle(ctx, p1, p2)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create battle",
			"player1", t1.PlayerID, "player2", t2.PlayerID, "err", err)
		r.sendError(ctx, t1.PlayerID, "failed to create battle")
		r.sendError(ctx, t2.PlayerID, "failed to create battle")
		return
	}

	region := t1.Request.Region
	r.sendTo(ctx, t1.PlayerID, EventMatchFound, MatchFoundPayload{
		BattleID: string(b.ID),
		Opponent: playerView(&b.Player2),
		Region:   region,
	})
	r.sendTo(ctx, t2.PlayerID, EventMatchFound, MatchFoundPayload{
		BattleID: string(b.ID),
		Opponent: playerView(&b.Player1),
		Region:   region,
	})
}

func (r *Router) username(playerID domain.PlayerID) string {
	ep, ok := r.endpoint(playerID)
	if !ok {
		return ""
	}
	return ep.Session().Username()
}

// --- battle.Events ---

func (r *Router) BattleStarted(ctx context.Context, b *domain.Battle) {
	r.broadcast(ctx, b, EventBattleStart, battleView(b))
}

func (r *Router) BattleUpdated(ctx context.Context, b *domain.Battle) {
	r.broadcast(ctx, b, EventBattleUpdate, battleView(b))
}

func (r *Router) JutsuCast(ctx context.Context, b *domain.Battle, result *domain.JutsuResult) {
	r.broadcast(ctx, b, EventJutsuCast, jutsuResultView(result))
	r.broadcast(ctx, b, EventBattleUpdate, battleView(b))
}

func (r *Router) BattleEnded(ctx context.Context, end *domain.BattleEnd) {
	payload := battleEndPayload(end)
	r.sendTo(ctx, end.Player1Result.PlayerID, EventBattleEnd, payload)
	r.sendTo(ctx, end.Player2Result.PlayerID, EventBattleEnd, payload)
}

// --- 送信 ---

func (r *Router) broadcast(ctx context.Context, b *domain.Battle, event string, payload any) {
	r.sendTo(ctx, b.Player1.ID, event, payload)
	r.sendTo(ctx, b.Player2.ID, event, payload)
}

func (r *Router) sendTo(ctx context.Context, playerID domain.PlayerID, event string, payload any) {
	ep, ok := r.endpoint(playerID)
	if !ok {
		return
	}
	data, err := EncodeEnvelope(event, payload)
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode event", "event", event, "err", err)
		return
	}
	if err := ep.Send(data); err != nil {
		slog.WarnContext(ctx, "message dropped", "playerID", playerID, "event", event, "err", err)
	}
}

func (r *Router) sendError(ctx context.Context, playerID domain.PlayerID, message string) {
	r.sendTo(ctx, playerID, EventError, ErrorPayload{Message: message})
}
