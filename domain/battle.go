package domain

import "time"

// BattleID は1戦闘の識別子です。
type BattleID string

func (id BattleID) String() string { return string(id) }

// BattleStatus は戦闘のライフサイクル状態です。
// Starting → InProgress → Finished の順でのみ遷移します。
type BattleStatus string

const (
	StatusStarting   BattleStatus = "starting"
	StatusInProgress BattleStatus = "in_progress"
	StatusFinished   BattleStatus = "finished"
)

// EndReason は戦闘終了の理由です。切断もタイムアウトもエラーではなく通常の終了理由です。
type EndReason string

const (
	ReasonHPDepleted EndReason = "hp_depleted"
	ReasonTimeout    EndReason = "timeout"
	ReasonForfeit    EndReason = "forfeit"
	ReasonDisconnect EndReason = "disconnect"
)

// BattleDuration は戦闘の制限時間です。
const BattleDuration = 180 * time.Second

// Battle は1戦闘の全状態です。所有者はbattle.Engineのみで、
// 外部へはCloneしたスナップショットだけを渡します。
//
// タイマー駆動の遷移はすべて期限フィールドで表現します。
// StartsAt(開始猶予)・PurgeAt(終了後の破棄猶予)・StunnedUntilを
// 周期スイープが冪等に評価するので、発火漏れや二重発火で状態が壊れません。
type Battle struct {
	ID      BattleID
	Player1 PlayerState
	Player2 PlayerState

	Status BattleStatus

	// StartsAt は Starting → InProgress 遷移の期限です (生成から3秒後)。
	StartsAt time.Time
	// StartedAt は InProgress 遷移した時刻。制限時間はここから数えます。
	StartedAt time.Time
	Duration  time.Duration

	Winner PlayerID // 空 = 勝者なし

	// PurgeAt は Finished 後に状態を破棄する期限です (終了から10秒後)。
	PurgeAt time.Time
}

// PlayerByID は参加者のうちidに一致する方を返します。
func (b *Battle) PlayerByID(id PlayerID) (*PlayerState, bool) {
	if b.Player1.ID == id {
		return &b.Player1, true
	}
	if b.Player2.ID == id {
		return &b.Player2, true
	}
	return nil, false
}

// OpponentOf はidの対戦相手を返します。
func (b *Battle) OpponentOf(id PlayerID) (*PlayerState, bool) {
	if b.Player1.ID == id {
		return &b.Player2, true
	}
	if b.Player2.ID == id {
		return &b.Player1, true
	}
	return nil, false
}

// Elapsed は InProgress 遷移からの経過時間を返します。
func (b *Battle) Elapsed(now time.Time) time.Duration {
	if b.Status == StatusStarting {
		return 0
	}
	return now.Sub(b.StartedAt)
}

// Clone はスナップショット用の深いコピーを返します。
func (b *Battle) Clone() *Battle {
	cp := *b
	cp.Player1 = b.Player1.Clone()
	cp.Player2 = b.Player2.Clone()
	return &cp
}
