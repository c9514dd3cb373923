package domain

// Outcome は1プレイヤーから見た勝敗です。
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
	OutcomeDraw Outcome = "draw"
)

// JutsuResult は1回の術発動の適用結果です。
type JutsuResult struct {
	JutsuID  string
	CasterID PlayerID
	TargetID PlayerID

	// Damage はシールド吸収後に実際にHPへ入ったダメージです。
	Damage       int
	Healing      int
	ShieldAmount int

	WasCritical bool
	// WasBlocked はダメージがシールドで全て吸収された場合にtrueです。
	WasBlocked bool

	// 対象の適用後のHPとチャクラ。
	ResultingHP     int
	ResultingChakra int
}

// PlayerResult は戦闘終了時の1プレイヤー分の結果レコードです。
type PlayerResult struct {
	PlayerID         PlayerID
	Outcome          Outcome
	FinalHP          int
	DamageDealt      int
	DamageTaken      int
	JutsuCast        int
	ExperienceGained int
	EloChange        int
}

// BattleEnd は戦闘終了の通知ペイロードです。
type BattleEnd struct {
	BattleID      BattleID
	Winner        PlayerID // 空 = 引き分け
	Reason        EndReason
	Player1Result PlayerResult
	Player2Result PlayerResult
}
