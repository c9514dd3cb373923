package battle

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"jutsuclash/catalog"
	"jutsuclash/domain"
)

var (
	// ErrAlreadyInBattle はどちらかのプレイヤーが既に戦闘中の場合のエラーです。
	ErrAlreadyInBattle = errors.New("battle: player already in a battle")
	// ErrNotInBattle はプレイヤーがどの戦闘にも属していない場合のエラーです。
	ErrNotInBattle = errors.New("battle: player not in a battle")
	// ErrBattleNotFound は未知の戦闘IDに対するエラーです。破棄済みも含みます。
	ErrBattleNotFound = errors.New("battle: no such battle")
	// ErrNotInProgress は進行中でない戦闘へのアクションに対するエラーです。
	ErrNotInProgress = errors.New("battle: not in progress")
	// ErrStunned はスタン中のプレイヤーのアクションに対するエラーです。
	ErrStunned = errors.New("battle: player is stunned")
	// ErrUnknownJutsu はカタログにない術IDに対するエラーです。
	ErrUnknownJutsu = errors.New("battle: unknown jutsu")
	// ErrNotInSameBattle は対象が同じ戦闘にいない場合のエラーです。
	ErrNotInSameBattle = errors.New("battle: target not in the same battle")
	// ErrInsufficientChakra はチャクラ不足のエラーです。
	ErrInsufficientChakra = errors.New("battle: insufficient chakra")
)

// Tuning は戦闘エンジンの時間・資源パラメータです。
type Tuning struct {
	StartDelay   time.Duration // Starting → InProgress までの猶予
	Duration     time.Duration // 戦闘の制限時間
	TickInterval time.Duration // スイープの周期
	PurgeGrace   time.Duration // Finished から状態破棄までの猶予

	ChakraRegen int     // tickごとのチャクラ回復量
	ComboDecay  float64 // tickごとのコンボ減衰
	ComboGain   float64 // キャスト成功ごとのコンボ上昇
	ComboMax    float64
}

// DefaultTuning は仕様どおりの既定値を返します。
func DefaultTuning() Tuning {
	return Tuning{
		StartDelay:   3 * time.Second,
		Duration:     domain.BattleDuration,
		TickInterval: time.Second,
		PurgeGrace:   10 * time.Second,
		ChakraRegen:  10,
		ComboDecay:   0.05,
		ComboGain:    0.2,
		ComboMax:     3,
	}
}

// battleEntry は1戦闘分の排他単位です。
// レジストリのロックとは独立に、戦闘ごとのmuが全フィールド変更を直列化します。
type battleEntry struct {
	mu sync.Mutex
	b  *domain.Battle
}

// Engine は全ライブ戦闘を所有する戦闘エンジンです。
//
// レジストリ (battles / playerBattle) はエンジン起動時に生成され、
// プロセス終了まで生きます。グローバル変数ではなくEngineのフィールドとして
// 持ち、ルーター側へはこのインスタンスを注入します。
type Engine struct {
	mu           sync.RWMutex
	battles      map[domain.BattleID]*battleEntry
	playerBattle map[domain.PlayerID]domain.BattleID

	catalog *catalog.Catalog
	events  Events
	tuning  Tuning
	clock   func() time.Time
}

// NewEngine は戦闘エンジンを生成します。eventsがnilの場合は通知を捨てます。
func NewEngine(cat *catalog.Catalog, events Events, tuning Tuning) *Engine {
	if events == nil {
		events = NopEvents()
	}
	return &Engine{
		battles:      make(map[domain.BattleID]*battleEntry),
		playerBattle: make(map[domain.PlayerID]domain.BattleID),
		catalog:      cat,
		events:       events,
		tuning:       tuning,
		clock:        time.Now,
	}
}

// WithClock はテスト用に時間ソースを差し替える。
func (e *Engine) WithClock(clock func() time.Time) *Engine {
	if clock != nil {
		e.clock = clock
	}
	return e
}

// CreateBattle は2人のプレイヤーで新しい戦闘を作ります。
// どちらかが既に戦闘中の場合はエラーです (呼び出し側が防ぐべき条件)。
// 戦闘は Starting で生成され、StartDelay 経過後のスイープで InProgress へ遷移します。
func (e *Engine) CreateBattle(ctx context.Context, p1, p2 domain.PlayerState) (*domain.Battle, error) {
	now := e.clock()

	e.mu.Lock()
	if e.inLiveBattleLocked(p1.ID) || e.inLiveBattleLocked(p2.ID) {
		e.mu.Unlock()
		return nil, ErrAlreadyInBattle
	}

	b := &domain.Battle{
		ID:       domain.BattleID(uuid.NewString()),
		Player1:  p1,
		Player2:  p2,
		Status:   domain.StatusStarting,
		StartsAt: now.Add(e.tuning.StartDelay),
		Duration: e.tuning.Duration,
	}
	e.battles[b.ID] = &battleEntry{b: b}
	e.playerBattle[p1.ID] = b.ID
	e.playerBattle[p2.ID] = b.ID
	e.mu.Unlock()

	slog.InfoContext(ctx, "battle created",
		"battleID", b.ID, "player1", p1.ID, "player2", p2.ID)

	return b.Clone(), nil
}

// Battle は戦闘のスナップショットを返します。破棄済みならErrBattleNotFoundです。
func (e *Engine) Battle(battleID domain.BattleID) (*domain.Battle, error) {
	entry, err := e.entry(battleID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.b.Clone(), nil
}

// BattleFor はプレイヤーが参加中の戦闘のスナップショットを返します。
func (e *Engine) BattleFor(playerID domain.PlayerID) (*domain.Battle, error) {
	entry, err := e.entryForPlayer(playerID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.b.Clone(), nil
}

// RecordGesture は認識済みジェスチャーをプレイヤーの直近列へ追加します。
// Confidenceは観測者向けにそのまま通すだけで、閾値判定は呼び出し側の責務です。
func (e *Engine) RecordGesture(ctx context.Context, playerID domain.PlayerID, sign domain.HandSign, confidence float64, at time.Time) (*domain.Battle, error) {
	entry, err := e.entryForPlayer(playerID)
	if err != nil {
		return nil, err
	}
	now := e.clock()

	entry.mu.Lock()
	if entry.b.Status != domain.StatusInProgress {
		entry.mu.Unlock()
		return nil, ErrNotInProgress
	}
	player, ok := entry.b.PlayerByID(playerID)
	if !ok {
		entry.mu.Unlock()
		return nil, ErrNotInBattle
	}
	if player.StunActive(now) {
		entry.mu.Unlock()
		return nil, ErrStunned
	}

	player.PushGesture(sign)
	snapshot := entry.b.Clone()
	entry.mu.Unlock()

	slog.DebugContext(ctx, "gesture recorded",
		"battleID", snapshot.ID, "playerID", playerID,
		"sign", sign, "confidence", confidence, "at", at)

	return snapshot, nil
}

// CastJutsu は術を発動し、結果を適用して返します。
// 前提条件違反は部分適用なしで棄却されます。対象HPが0に達した場合は
// 同じ呼び出しの中で同期的に戦闘を終了させます。
func (e *Engine) CastJutsu(ctx context.Context, casterID domain.PlayerID, jutsuID string, targetID domain.PlayerID, at time.Time) (*domain.JutsuResult, error) {
	entry, err := e.entryForPlayer(casterID)
	if err != nil {
		return nil, err
	}
	now := e.clock()

	entry.mu.Lock()
	b := entry.b
	if b.Status != domain.StatusInProgress {
		entry.mu.Unlock()
		return nil, ErrNotInProgress
	}
	caster, ok := b.PlayerByID(casterID)
	if !ok {
		entry.mu.Unlock()
		return nil, ErrNotInBattle
	}
	target, ok := b.PlayerByID(targetID)
	if !ok {
		entry.mu.Unlock()
		return nil, ErrNotInSameBattle
	}
	if caster.StunActive(now) {
		entry.mu.Unlock()
		return nil, ErrStunned
	}
	def, ok := e.catalog.ByID(jutsuID)
	if !ok {
		entry.mu.Unlock()
		return nil, ErrUnknownJutsu
	}
	if caster.Chakra < def.ChakraCost {
		entry.mu.Unlock()
		return nil, ErrInsufficientChakra
	}

	// ここから先は失敗しない。適用は仕様の順序どおり。
	caster.Chakra -= def.ChakraCost

	damage := def.Damage
	healing := def.Healing
	wasCritical := false
	wasBlocked := false

	if caster.ComboMeter > 1 {
		damage = int(math.Floor(float64(damage) * caster.ComboMeter))
		wasCritical = true
	}

	if target.IsShielded && damage > 0 {
		absorbed := min(target.ShieldAmount, damage)
		target.ShieldAmount -= absorbed
		damage -= absorbed
		if target.ShieldAmount <= 0 {
			target.ShieldAmount = 0
			target.IsShielded = false
			target.ActiveEffects = dropKind(target.ActiveEffects, domain.EffectShield)
		}
		if damage == 0 {
			wasBlocked = true
		}
	}

	if damage > 0 {
		target.HP = max(0, target.HP-damage)
		target.DamageTaken += damage
		caster.DamageDealt += damage
	}
	if healing > 0 {
		caster.HP = min(caster.MaxHP, caster.HP+healing)
	}

	if def.ShieldAmount > 0 {
		caster.IsShielded = true
		caster.ShieldAmount += def.ShieldAmount
		caster.ActiveEffects = append(caster.ActiveEffects, domain.ActiveEffect{
			EffectID:  def.ID,
			Kind:      domain.EffectShield,
			Value:     def.ShieldAmount,
			Duration:  def.EffectDuration,
			StartedAt: now,
		})
	}

	if def.StunDuration > 0 {
		target.IsStunned = true
		target.StunnedUntil = now.Add(def.StunDuration)
		target.ActiveEffects = append(target.ActiveEffects, domain.ActiveEffect{
			EffectID:  def.ID,
			Kind:      domain.EffectStun,
			Duration:  def.StunDuration,
			StartedAt: now,
		})
	}

	caster.ComboMeter = math.Min(e.tuning.ComboMax, caster.ComboMeter+e.tuning.ComboGain)
	caster.JutsuCast++
	caster.ClearGestures()

	result := &domain.JutsuResult{
		JutsuID:         def.ID,
		CasterID:        caster.ID,
		TargetID:        target.ID,
		Damage:          damage,
		Healing:         healing,
		ShieldAmount:    def.ShieldAmount,
		WasCritical:     wasCritical,
		WasBlocked:      wasBlocked,
		ResultingHP:     target.HP,
		ResultingChakra: target.Chakra,
	}

	var end *domain.BattleEnd
	if target.HP <= 0 {
		end = e.endLocked(b, caster.ID, domain.ReasonHPDepleted, now)
	}
	snapshot := b.Clone()
	entry.mu.Unlock()

	slog.InfoContext(ctx, "jutsu cast",
		"battleID", snapshot.ID, "jutsuID", def.ID,
		"casterID", casterID, "targetID", targetID,
		"damage", result.Damage, "critical", wasCritical, "blocked", wasBlocked,
		"at", at)

	e.events.JutsuCast(ctx, snapshot, result)
	if end != nil {
		e.events.BattleEnded(ctx, end)
	}
	return result, nil
}

// CancelSequence はジェスチャー列と現在の印を破棄します。
// 参加中の戦闘がなければ何もしません。
func (e *Engine) CancelSequence(ctx context.Context, playerID domain.PlayerID) {
	entry, err := e.entryForPlayer(playerID)
	if err != nil {
		return
	}

	entry.mu.Lock()
	if entry.b.Status == domain.StatusFinished {
		entry.mu.Unlock()
		return
	}
	if player, ok := entry.b.PlayerByID(playerID); ok {
		player.ClearGestures()
	}
	entry.mu.Unlock()

	slog.DebugContext(ctx, "gesture sequence canceled", "playerID", playerID)
}

// Tick は1戦闘の周期更新です。InProgress以外ではErrNotInProgressを返します。
// チャクラ回復・コンボ減衰・期限切れ効果の掃除・制限時間の判定を行います。
func (e *Engine) Tick(ctx context.Context, battleID domain.BattleID) (*domain.Battle, error) {
	entry, err := e.entry(battleID)
	if err != nil {
		return nil, err
	}
	now := e.clock()

	entry.mu.Lock()
	if entry.b.Status != domain.StatusInProgress {
		entry.mu.Unlock()
		return nil, ErrNotInProgress
	}
	end := e.tickLocked(entry.b, now)
	snapshot := entry.b.Clone()
	entry.mu.Unlock()

	if end != nil {
		e.events.BattleEnded(ctx, end)
	} else {
		e.events.BattleUpdated(ctx, snapshot)
	}
	return snapshot, nil
}

// EndBattle は戦闘を終了させ、両プレイヤーの結果レコードを計算します。
// 既にFinishedの戦闘には何もせず (nil, false) を返します。
func (e *Engine) EndBattle(ctx context.Context, battleID domain.BattleID, winner domain.PlayerID, reason domain.EndReason) (*domain.BattleEnd, bool) {
	entry, err := e.entry(battleID)
	if err != nil {
		return nil, false
	}
	now := e.clock()

	entry.mu.Lock()
	if entry.b.Status == domain.StatusFinished {
		entry.mu.Unlock()
		return nil, false
	}
	end := e.endLocked(entry.b, winner, reason, now)
	entry.mu.Unlock()

	e.events.BattleEnded(ctx, end)
	return end, true
}

// Forfeit は降参です。相手の勝利・reason forfeit で戦闘を終了させます。
func (e *Engine) Forfeit(ctx context.Context, playerID domain.PlayerID) (*domain.BattleEnd, bool) {
	return e.endForPlayer(ctx, playerID, domain.ReasonForfeit)
}

// Disconnect は切断です。参加中の戦闘があれば即時・無条件に終了させ、
// 相手を勝者にします。戦闘に不参加なら何もしません。
func (e *Engine) Disconnect(ctx context.Context, playerID domain.PlayerID) (*domain.BattleEnd, bool) {
	return e.endForPlayer(ctx, playerID, domain.ReasonDisconnect)
}

func (e *Engine) endForPlayer(ctx context.Context, playerID domain.PlayerID, reason domain.EndReason) (*domain.BattleEnd, bool) {
	entry, err := e.entryForPlayer(playerID)
	if err != nil {
		return nil, false
	}
	now := e.clock()

	entry.mu.Lock()
	if entry.b.Status == domain.StatusFinished {
		entry.mu.Unlock()
		return nil, false
	}
	opponent, ok := entry.b.OpponentOf(playerID)
	if !ok {
		entry.mu.Unlock()
		return nil, false
	}
	end := e.endLocked(entry.b, opponent.ID, reason, now)
	entry.mu.Unlock()

	e.events.BattleEnded(ctx, end)
	return end, true
}

// Run は周期スイープを実行します。ctxのキャンセルで終了します。
//
// スイープは保留中の期限 (開始猶予・スタン期限・制限時間・破棄猶予) を
// 冪等に評価します。1周期遅れても、同じ期限を二度評価しても結果は同じです。
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.tuning.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Sweep(ctx)
		}
	}
}

// Sweep はスイープを1回実行します。
func (e *Engine) Sweep(ctx context.Context) {
	now := e.clock()

	e.mu.RLock()
	ids := make([]domain.BattleID, 0, len(e.battles))
	for id := range e.battles {
		ids = append(ids, id)
	}
	e.mu.RUnlock()

	var purgable []domain.BattleID
	for _, id := range ids {
		entry, err := e.entry(id)
		if err != nil {
			continue // 別のスイープが先に破棄した
		}

		entry.mu.Lock()
		b := entry.b
		switch b.Status {
		case domain.StatusStarting:
			if !now.Before(b.StartsAt) {
				b.Status = domain.StatusInProgress
				// 制限時間は最初のライブtickから数える。
				b.StartedAt = now
				snapshot := b.Clone()
				entry.mu.Unlock()
				slog.InfoContext(ctx, "battle started", "battleID", id)
				e.events.BattleStarted(ctx, snapshot)
				continue
			}
			entry.mu.Unlock()

		case domain.StatusInProgress:
			end := e.tickLocked(b, now)
			snapshot := b.Clone()
			entry.mu.Unlock()
			if end != nil {
				e.events.BattleEnded(ctx, end)
			} else {
				e.events.BattleUpdated(ctx, snapshot)
			}

		case domain.StatusFinished:
			due := !now.Before(b.PurgeAt)
			entry.mu.Unlock()
			if due {
				purgable = append(purgable, id)
			}
		}
	}

	if len(purgable) > 0 {
		e.purge(ctx, purgable)
	}
}

// tickLocked は1tick分の効果を適用します。呼び出し側が戦闘のmuを保持します。
// 戦闘が制限時間に達した場合は終了させ、BattleEndを返します。
func (e *Engine) tickLocked(b *domain.Battle, now time.Time) *domain.BattleEnd {
	for _, player := range []*domain.PlayerState{&b.Player1, &b.Player2} {
		player.Chakra = min(player.MaxChakra, player.Chakra+e.tuning.ChakraRegen)
		player.ComboMeter = math.Max(1, player.ComboMeter-e.tuning.ComboDecay)

		// スタン期限の評価。発火漏れがあってもここで追いつく。
		if player.IsStunned && !now.Before(player.StunnedUntil) {
			player.IsStunned = false
		}
		player.ActiveEffects = pruneExpired(player.ActiveEffects, now)
	}

	if b.Elapsed(now) >= b.Duration {
		var winner domain.PlayerID
		switch {
		case b.Player1.HP > b.Player2.HP:
			winner = b.Player1.ID
		case b.Player2.HP > b.Player1.HP:
			winner = b.Player2.ID
		}
		return e.endLocked(b, winner, domain.ReasonTimeout, now)
	}
	return nil
}

// endLocked は終了処理の本体です。呼び出し側が戦闘のmuを保持し、
// Status != Finished を確認済みであることが前提です。
func (e *Engine) endLocked(b *domain.Battle, winner domain.PlayerID, reason domain.EndReason, now time.Time) *domain.BattleEnd {
	b.Status = domain.StatusFinished
	b.Winner = winner
	b.PurgeAt = now.Add(e.tuning.PurgeGrace)

	return &domain.BattleEnd{
		BattleID:      b.ID,
		Winner:        winner,
		Reason:        reason,
		Player1Result: playerResult(&b.Player1, winner),
		Player2Result: playerResult(&b.Player2, winner),
	}
}

// playerResult は1プレイヤー分の結果レコードを作ります。
// 引き分け (winner空) は経験値・レートの扱いが敗者と同じです。
func playerResult(p *domain.PlayerState, winner domain.PlayerID) domain.PlayerResult {
	outcome := domain.OutcomeLoss
	switch {
	case winner == p.ID:
		outcome = domain.OutcomeWin
	case winner == "":
		outcome = domain.OutcomeDraw
	}

	experience, eloChange := 50, -15
	if winner == p.ID {
		experience, eloChange = 100, 25
	}

	return domain.PlayerResult{
		PlayerID:         p.ID,
		Outcome:          outcome,
		FinalHP:          p.HP,
		DamageDealt:      p.DamageDealt,
		DamageTaken:      p.DamageTaken,
		JutsuCast:        p.JutsuCast,
		ExperienceGained: experience,
		EloChange:        eloChange,
	}
}

// purge はFinishedかつ破棄期限を過ぎた戦闘をレジストリから外します。
// 以後そのIDへのアクションは「存在しない戦闘」として棄却されます。
func (e *Engine) purge(ctx context.Context, ids []domain.BattleID) {
	e.mu.Lock()
	for _, id := range ids {
		entry, ok := e.battles[id]
		if !ok {
			continue
		}
		delete(e.battles, id)
		// 破棄待ちの間にプレイヤーが新しい戦闘へ入っている場合、
		// その対応付けは消さない。
		for _, pid := range []domain.PlayerID{entry.b.Player1.ID, entry.b.Player2.ID} {
			if e.playerBattle[pid] == id {
				delete(e.playerBattle, pid)
			}
		}
	}
	e.mu.Unlock()

	slog.DebugContext(ctx, "battles purged", "count", len(ids))
}

// inLiveBattleLocked はプレイヤーが未終了の戦闘に属しているかを返します。
// Finishedだが破棄待ちの戦闘は「戦闘中」とみなしません。呼び出し側がe.muを保持します。
func (e *Engine) inLiveBattleLocked(playerID domain.PlayerID) bool {
	battleID, ok := e.playerBattle[playerID]
	if !ok {
		return false
	}
	entry, ok := e.battles[battleID]
	if !ok {
		return false
	}
	entry.mu.Lock()
	live := entry.b.Status != domain.StatusFinished
	entry.mu.Unlock()
	return live
}

func (e *Engine) entry(battleID domain.BattleID) (*battleEntry, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	entry, ok := e.battles[battleID]
	if !ok {
		return nil, ErrBattleNotFound
	}
	return entry, nil
}

func (e *Engine) entryForPlayer(playerID domain.PlayerID) (*battleEntry, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	battleID, ok := e.playerBattle[playerID]
	if !ok {
		return nil, ErrNotInBattle
	}
	entry, ok := e.battles[battleID]
	if !ok {
		return nil, ErrNotInBattle
	}
	return entry, nil
}

// dropKind は指定種別の効果をすべて取り除きます。
// シールド効果は期限ではなく残量0で消えるため、減衰スイープとは別に呼びます。
func dropKind(effects []domain.ActiveEffect, kind domain.EffectKind) []domain.ActiveEffect {
	kept := effects[:0]
	for _, effect := range effects {
		if effect.Kind == kind {
			continue
		}
		kept = append(kept, effect)
	}
	return kept
}

func pruneExpired(effects []domain.ActiveEffect, now time.Time) []domain.ActiveEffect {
	kept := effects[:0]
	for _, effect := range effects {
		if effect.Duration > 0 && effect.Expired(now) {
			continue
		}
		kept = append(kept, effect)
	}
	return kept
}
