package domain

import (
	"testing"
	"time"
)

func TestNewPlayerState_Defaults(t *testing.T) {
	p := NewPlayerState("p1", "naruto", 1200)

	if p.HP != 100 || p.MaxHP != 100 {
		t.Errorf("HP = %d/%d, want 100/100", p.HP, p.MaxHP)
	}
	if p.Chakra != 100 || p.MaxChakra != 100 {
		t.Errorf("Chakra = %d/%d, want 100/100", p.Chakra, p.MaxChakra)
	}
	if p.ComboMeter != 1 {
		t.Errorf("ComboMeter = %f, want 1", p.ComboMeter)
	}
	if p.Rank != RankAcademyStudent {
		t.Errorf("Rank = %s, want %s", p.Rank, RankAcademyStudent)
	}
	if p.Elo != 1200 {
		t.Errorf("Elo = %d, want 1200", p.Elo)
	}
}

func TestNewPlayerState_FallbackUsername(t *testing.T) {
	p := NewPlayerState("abcdef", "", 1000)
	if p.Username != "Player_abcd" {
		t.Errorf("Username = %s, want Player_abcd", p.Username)
	}
}

func TestPushGesture_BoundedAtCap(t *testing.T) {
	p := NewPlayerState("p1", "n", 1000)
	signs := []HandSign{
		SignRat, SignOx, SignTiger, SignRabbit, SignDragon, SignSnake,
		SignHorse, SignRam, SignMonkey, SignBird, SignDog, SignBoar,
	}
	for _, s := range signs {
		p.PushGesture(s)
	}

	if len(p.GestureSequence) != GestureBufferCap {
		t.Fatalf("len = %d, want %d", len(p.GestureSequence), GestureBufferCap)
	}
	// 最古の2つ (rat, ox) が落ちて tiger..boar が残る
	if p.GestureSequence[0] != SignTiger {
		t.Errorf("oldest = %s, want %s", p.GestureSequence[0], SignTiger)
	}
	if p.GestureSequence[len(p.GestureSequence)-1] != SignBoar {
		t.Errorf("newest = %s, want %s", p.GestureSequence[len(p.GestureSequence)-1], SignBoar)
	}
	if p.CurrentGesture != SignBoar {
		t.Errorf("CurrentGesture = %s, want %s", p.CurrentGesture, SignBoar)
	}
}

func TestClearGestures(t *testing.T) {
	p := NewPlayerState("p1", "n", 1000)
	p.PushGesture(SignRat)
	p.PushGesture(SignOx)
	p.ClearGestures()

	if len(p.GestureSequence) != 0 {
		t.Errorf("len = %d, want 0", len(p.GestureSequence))
	}
	if p.CurrentGesture != "" {
		t.Errorf("CurrentGesture = %q, want empty", p.CurrentGesture)
	}
}

func TestStunActive_DeadlineBased(t *testing.T) {
	now := time.Now()
	p := NewPlayerState("p1", "n", 1000)
	p.IsStunned = true
	p.StunnedUntil = now.Add(2 * time.Second)

	if !p.StunActive(now) {
		t.Error("stun should be active before deadline")
	}
	if p.StunActive(now.Add(2 * time.Second)) {
		t.Error("stun should be inactive at deadline")
	}
}

func TestPlayerStateClone_Deep(t *testing.T) {
	p := NewPlayerState("p1", "n", 1000)
	p.PushGesture(SignRat)
	p.ActiveEffects = append(p.ActiveEffects, ActiveEffect{EffectID: "e1", Kind: EffectStun})

	cp := p.Clone()
	cp.GestureSequence[0] = SignOx
	cp.ActiveEffects[0].EffectID = "e2"
	cp.JutsuCooldowns["fireball"] = time.Now()

	if p.GestureSequence[0] != SignRat {
		t.Error("clone shares GestureSequence backing array")
	}
	if p.ActiveEffects[0].EffectID != "e1" {
		t.Error("clone shares ActiveEffects backing array")
	}
	if len(p.JutsuCooldowns) != 0 {
		t.Error("clone shares JutsuCooldowns map")
	}
}

func TestBattleClone_Deep(t *testing.T) {
	b := &Battle{
		ID:      "b1",
		Player1: NewPlayerState("p1", "a", 1000),
		Player2: NewPlayerState("p2", "b", 1000),
		Status:  StatusInProgress,
	}
	b.Player1.PushGesture(SignRat)

	cp := b.Clone()
	cp.Player1.GestureSequence[0] = SignOx
	cp.Player2.HP = 1

	if b.Player1.GestureSequence[0] != SignRat {
		t.Error("clone shares player1 gesture sequence")
	}
	if b.Player2.HP != 100 {
		t.Error("clone shares player2 state")
	}
}

func TestBattlePlayerLookup(t *testing.T) {
	b := &Battle{
		Player1: NewPlayerState("p1", "a", 1000),
		Player2: NewPlayerState("p2", "b", 1000),
	}

	if p, ok := b.PlayerByID("p2"); !ok || p.ID != "p2" {
		t.Errorf("PlayerByID(p2) = %v, %v", p, ok)
	}
	if _, ok := b.PlayerByID("p3"); ok {
		t.Error("PlayerByID(p3) should miss")
	}
	if op, ok := b.OpponentOf("p1"); !ok || op.ID != "p2" {
		t.Errorf("OpponentOf(p1) = %v, %v", op, ok)
	}
}

func TestValidSign(t *testing.T) {
	if !ValidSign(SignDragon) {
		t.Error("dragon should be valid")
	}
	if ValidSign("phoenix") {
		t.Error("phoenix should be invalid")
	}
}
