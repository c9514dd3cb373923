package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"jutsuclash/domain"
	"jutsuclash/matchmaking"
)

// クライアント → サーバーのイベント名。
const (
	EventJoinMatchmaking  = "matchmaking:join"
	EventLeaveMatchmaking = "matchmaking:leave"
	EventPerformGesture   = "battle:gesture"
	EventCastJutsu        = "battle:cast_jutsu"
	EventCancelSequence   = "battle:cancel_sequence"
	EventForfeit          = "battle:forfeit"
)

// サーバー → クライアントのイベント名。
const (
	EventConnected         = "connected"
	EventError             = "error"
	EventMatchmakingJoined = "matchmaking:joined"
	EventMatchmakingLeft   = "matchmaking:left"
	EventMatchFound        = "match:found"
	EventBattleStart       = "battle:start"
	EventBattleUpdate      = "battle:update"
	EventBattleEnd         = "battle:end"
	EventGestureRecognized = "gesture:recognized"
	EventJutsuCast         = "jutsu:cast"
)

var ErrMalformedEnvelope = errors.New("server: malformed message envelope")

// Envelope はすべてのメッセージの外枠です。
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// EncodeEnvelope はイベントとペイロードをワイヤ形式にします。
func EncodeEnvelope(event string, data any) ([]byte, error) {
	var raw json.RawMessage
	if data != nil {
		encoded, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("server: encode %s payload: %w", event, err)
		}
		raw = encoded
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}

// DecodeEnvelope はワイヤ形式の外枠を解析します。
func DecodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %s", ErrMalformedEnvelope, err)
	}
	if env.Event == "" {
		return Envelope{}, fmt.Errorf("%w: missing event", ErrMalformedEnvelope)
	}
	return env, nil
}

// --- クライアントペイロード ---

type JoinMatchmakingPayload struct {
	Username string `json:"username"`
	Mode     string `json:"mode"`
	Region   string `json:"region"`
	Elo      int    `json:"elo"`
	RoomCode string `json:"roomCode,omitempty"`
}

type GesturePayload struct {
	Gesture    string  `json:"gesture"`
	Confidence float64 `json:"confidence"`
	Timestamp  int64   `json:"timestamp"` // unix millis
}

type CastJutsuPayload struct {
	JutsuID   string `json:"jutsuId"`
	TargetID  string `json:"targetId"`
	Timestamp int64  `json:"timestamp"` // unix millis
}

// --- サーバーペイロード ---

type ConnectedPayload struct {
	PlayerID string `json:"playerId"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type MatchFoundPayload struct {
	BattleID string     `json:"battleId"`
	Opponent PlayerView `json:"opponent"`
	Region   string     `json:"region"`
}

type PlayerView struct {
	ID              string   `json:"id"`
	Username        string   `json:"username"`
	Level           int      `json:"level"`
	Rank            string   `json:"rank"`
	Elo             int      `json:"elo"`
	HP              int      `json:"hp"`
	MaxHP           int      `json:"maxHp"`
	Chakra          int      `json:"chakra"`
	MaxChakra       int      `json:"maxChakra"`
	CurrentGesture  string   `json:"currentGesture,omitempty"`
	GestureSequence []string `json:"gestureSequence"`
	IsStunned       bool     `json:"isStunned"`
	IsShielded      bool     `json:"isShielded"`
	ShieldAmount    int      `json:"shieldAmount"`
	ComboMeter      float64  `json:"comboMeter"`
}

type BattleView struct {
	BattleID  string     `json:"battleId"`
	Player1   PlayerView `json:"player1"`
	Player2   PlayerView `json:"player2"`
	Status    string     `json:"status"`
	StartTime int64      `json:"startTime"` // unix millis, InProgress遷移時刻
	Duration  int        `json:"duration"`  // seconds
	Winner    string     `json:"winner,omitempty"`
}

type JutsuResultView struct {
	JutsuID         string `json:"jutsuId"`
	CasterID        string `json:"casterId"`
	TargetID        string `json:"targetId"`
	Damage          int    `json:"damage"`
	Healing         int    `json:"healing"`
	ShieldAmount    int    `json:"shieldAmount"`
	WasCritical     bool   `json:"wasCritical"`
	WasBlocked      bool   `json:"wasBlocked"`
	ResultingHP     int    `json:"resultingHp"`
	ResultingChakra int    `json:"resultingChakra"`
}

type PlayerResultView struct {
	PlayerID         string `json:"playerId"`
	Result           string `json:"result"`
	FinalHP          int    `json:"finalHp"`
	DamageDealt      int    `json:"damageDealt"`
	DamageTaken      int    `json:"damageTaken"`
	JutsuCast        int    `json:"jutsuCast"`
	ExperienceGained int    `json:"experienceGained"`
	EloChange        int    `json:"eloChange"`
}

type BattleEndPayload struct {
	BattleID      string           `json:"battleId"`
	Winner        string           `json:"winner,omitempty"`
	Reason        string           `json:"reason"`
	Player1Result PlayerResultView `json:"player1Result"`
	Player2Result PlayerResultView `json:"player2Result"`
}

type GestureView struct {
	PlayerID   string  `json:"playerId"`
	Gesture    string  `json:"gesture"`
	Confidence float64 `json:"confidence"`
	Timestamp  int64   `json:"timestamp"`
}

// --- ビュー変換 ---

func playerView(p *domain.PlayerState) PlayerView {
	sequence := make([]string, 0, len(p.GestureSequence))
	for _, sign := range p.GestureSequence {
		sequence = append(sequence, string(sign))
	}
	return PlayerView{
		ID:              string(p.ID),
		Username:        p.Username,
		Level:           p.Level,
		Rank:            string(p.Rank),
		Elo:             p.Elo,
		HP:              p.HP,
		MaxHP:           p.MaxHP,
		Chakra:          p.Chakra,
		MaxChakra:       p.MaxChakra,
		CurrentGesture:  string(p.CurrentGesture),
		GestureSequence: sequence,
		IsStunned:       p.IsStunned,
		IsShielded:      p.IsShielded,
		ShieldAmount:    p.ShieldAmount,
		ComboMeter:      p.ComboMeter,
	}
}

func battleView(b *domain.Battle) BattleView {
	return BattleView{
		BattleID:  string(b.ID),
		Player1:   playerView(&b.Player1),
		Player2:   playerView(&b.Player2),
		Status:    string(b.Status),
		StartTime: b.StartedAt.UnixMilli(),
		Duration:  int(b.Duration / time.Second),
		Winner:    string(b.Winner),
	}
}

func jutsuResultView(r *domain.JutsuResult) JutsuResultView {
	return JutsuResultView{
		JutsuID:         r.JutsuID,
		CasterID:        string(r.CasterID),
		TargetID:        string(r.TargetID),
		Damage:          r.Damage,
		Healing:         r.Healing,
		ShieldAmount:    r.ShieldAmount,
		WasCritical:     r.WasCritical,
		WasBlocked:      r.WasBlocked,
		ResultingHP:     r.ResultingHP,
		ResultingChakra: r.ResultingChakra,
	}
}

func playerResultView(r domain.PlayerResult) PlayerResultView {
	return PlayerResultView{
		PlayerID:         string(r.PlayerID),
		Result:           string(r.Outcome),
		FinalHP:          r.FinalHP,
		DamageDealt:      r.DamageDealt,
		DamageTaken:      r.DamageTaken,
		JutsuCast:        r.JutsuCast,
		ExperienceGained: r.ExperienceGained,
		EloChange:        r.EloChange,
	}
}

func battleEndPayload(end *domain.BattleEnd) BattleEndPayload {
	return BattleEndPayload{
		BattleID:      string(end.BattleID),
		Winner:        string(end.Winner),
		Reason:        string(end.Reason),
		Player1Result: playerResultView(end.Player1Result),
		Player2Result: playerResultView(end.Player2Result),
	}
}

func matchmakingRequest(p JoinMatchmakingPayload) matchmaking.Request {
	return matchmaking.Request{
		Mode:     matchmaking.Mode(p.Mode),
		Region:   p.Region,
		Elo:      p.Elo,
		RoomCode: p.RoomCode,
	}
}
