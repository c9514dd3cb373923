package battle

import (
	"context"

	"jutsuclash/domain"
)

//go:generate go tool mockgen -destination=./mocks/events_mock.go -package=mocks . Events

// Events はエンジンが発火する戦闘イベントの通知先です。
// 呼び出しはすべてロック外・スナップショット渡しで行われるので、
// 実装側はそのまま保持・送信して構いません。
type Events interface {
	// BattleStarted は Starting → InProgress 遷移時に呼ばれます。
	BattleStarted(ctx context.Context, battle *domain.Battle)
	// BattleUpdated はtickによる状態変化時に呼ばれます。
	BattleUpdated(ctx context.Context, battle *domain.Battle)
	// JutsuCast は術の発動成功時に呼ばれます。
	JutsuCast(ctx context.Context, battle *domain.Battle, result *domain.JutsuResult)
	// BattleEnded は戦闘終了時にちょうど1回呼ばれます。
	BattleEnded(ctx context.Context, end *domain.BattleEnd)
}

// nopEvents は通知を捨てるEventsです。
type nopEvents struct{}

func (nopEvents) BattleStarted(context.Context, *domain.Battle)                  {}
func (nopEvents) BattleUpdated(context.Context, *domain.Battle)                  {}
func (nopEvents) JutsuCast(context.Context, *domain.Battle, *domain.JutsuResult) {}
func (nopEvents) BattleEnded(context.Context, *domain.BattleEnd)                 {}

// NopEvents は何もしないEventsを返します。
func NopEvents() Events { return nopEvents{} }
