package domain

import "time"

// PlayerID は1プレイヤーの不透明な識別子です。
type PlayerID string

func (id PlayerID) String() string { return string(id) }

// Rank はプレイヤーの段位です。
type Rank string

const (
	RankAcademyStudent Rank = "academy_student"
	RankGenin          Rank = "genin"
	RankChunin         Rank = "chunin"
	RankJonin          Rank = "jonin"
	RankKage           Rank = "kage"
)

// EffectKind は時限効果の種別です。
type EffectKind string

const (
	EffectDamageOverTime EffectKind = "damage_over_time"
	EffectHealOverTime   EffectKind = "heal_over_time"
	EffectShield         EffectKind = "shield"
	EffectStun           EffectKind = "stun"
	EffectBuff           EffectKind = "buff"
	EffectDebuff         EffectKind = "debuff"
)

// ActiveEffect はプレイヤーに付与された時限効果です。
type ActiveEffect struct {
	EffectID  string
	Kind      EffectKind
	Value     int
	Duration  time.Duration
	StartedAt time.Time
}

// Expired は効果が期限切れかどうかを返します。
func (e ActiveEffect) Expired(now time.Time) bool {
	return !now.Before(e.StartedAt.Add(e.Duration))
}

// PlayerState は戦闘中の1参加者の状態です。所有者はそのプレイヤーを含むBattleのみです。
type PlayerState struct {
	ID       PlayerID
	Username string
	Level    int
	Rank     Rank
	Elo      int

	HP        int
	MaxHP     int
	Chakra    int
	MaxChakra int

	CurrentGesture  HandSign // 空文字 = なし
	GestureSequence []HandSign

	ActiveEffects []ActiveEffect

	IsStunned    bool
	StunnedUntil time.Time

	IsShielded   bool
	ShieldAmount int

	// ComboMeter は [1,3] の攻撃倍率。キャスト成功で上昇、時間経過で1へ減衰。
	ComboMeter float64

	// JutsuCooldowns は術ごとのクールダウン期限。現状どのロジックも参照しない
	// が、前方互換のためデータモデルに残している。
	JutsuCooldowns map[string]time.Time

	// 集計カウンタ。戦闘終了時の結果レポートに使う。
	DamageDealt int
	DamageTaken int
	JutsuCast   int
}

// NewPlayerState は戦闘開始時の初期状態を生成します。
func NewPlayerState(id PlayerID, username string, elo int) PlayerState {
	if username == "" {
		short := string(id)
		if len(short) > 4 {
			short = short[:4]
		}
		username = "Player_" + short
	}
	return PlayerState{
		ID:             id,
		Username:       username,
		Level:          1,
		Rank:           RankAcademyStudent,
		Elo:            elo,
		HP:             100,
		MaxHP:          100,
		Chakra:         100,
		MaxChakra:      100,
		ComboMeter:     1,
		JutsuCooldowns: make(map[string]time.Time),
	}
}

// PushGesture は直近ジェスチャー列の末尾に追加します。上限を超えた分は古い方から捨てます。
func (p *PlayerState) PushGesture(s HandSign) {
	p.GestureSequence = append(p.GestureSequence, s)
	if len(p.GestureSequence) > GestureBufferCap {
		p.GestureSequence = p.GestureSequence[len(p.GestureSequence)-GestureBufferCap:]
	}
	p.CurrentGesture = s
}

// ClearGestures はジェスチャー列と現在の印をクリアします。
func (p *PlayerState) ClearGestures() {
	p.GestureSequence = p.GestureSequence[:0]
	p.CurrentGesture = ""
}

// StunActive は現時刻でスタンが有効かどうかを返します。
// 期限切れの掃除が走る前でも期限ベースで判定します。
func (p *PlayerState) StunActive(now time.Time) bool {
	return p.IsStunned && now.Before(p.StunnedUntil)
}

// Clone はスナップショット用の深いコピーを返します。
func (p *PlayerState) Clone() PlayerState {
	cp := *p
	cp.GestureSequence = append([]HandSign(nil), p.GestureSequence...)
	cp.ActiveEffects = append([]ActiveEffect(nil), p.ActiveEffects...)
	if p.JutsuCooldowns != nil {
		cp.JutsuCooldowns = make(map[string]time.Time, len(p.JutsuCooldowns))
		for k, v := range p.JutsuCooldowns {
			cp.JutsuCooldowns[k] = v
		}
	}
	return cp
}
