package domain

import "time"

// Action はルーターからエンジンへ渡すアクションの閉じたタグ付きユニオンです。
// 種別はここに列挙されたものだけで、ディスパッチは網羅的に行います。
type Action interface {
	isAction()
}

// GestureAction は認識済みジェスチャーの報告です。
// Confidence は観測者向けの参考値で、エンジン側では閾値判定しません。
type GestureAction struct {
	PlayerID   PlayerID
	Sign       HandSign
	Confidence float64
	At         time.Time
}

// CastJutsuAction は術の発動要求です。
type CastJutsuAction struct {
	CasterID PlayerID
	JutsuID  string
	TargetID PlayerID
	At       time.Time
}

// CancelAction はジェスチャー列の明示的な破棄です。
type CancelAction struct {
	PlayerID PlayerID
}

// ForfeitAction は降参です。相手の勝利で戦闘を終了させます。
type ForfeitAction struct {
	PlayerID PlayerID
}

// TickAction は1戦闘に対する周期更新です。
type TickAction struct {
	BattleID BattleID
}

// DisconnectAction は切断です。キュー離脱と、参加中の戦闘の即時終了を引き起こします。
type DisconnectAction struct {
	PlayerID PlayerID
}

func (GestureAction) isAction()    {}
func (CastJutsuAction) isAction()  {}
func (CancelAction) isAction()     {}
func (ForfeitAction) isAction()    {}
func (TickAction) isAction()       {}
func (DisconnectAction) isAction() {}
