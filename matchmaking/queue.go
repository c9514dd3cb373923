package matchmaking

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"jutsuclash/domain"
)

// Mode is a matchmaking game mode.
type Mode string

const (
	ModeQuick      Mode = "quick"
	ModeRanked     Mode = "ranked"
	ModePrivate    Mode = "private"
	ModeTournament Mode = "tournament"
)

// Modes lists every recognized mode. Each gets its own queue.
var Modes = []Mode{ModeQuick, ModeRanked, ModePrivate, ModeTournament}

// DefaultEloWindow is the maximum rating distance for a ranked pair.
const DefaultEloWindow = 50

// DefaultPairingInterval is how often the pairing pass runs.
const DefaultPairingInterval = 2 * time.Second

// Request is what a player asks for when joining the queue.
type Request struct {
	Mode     Mode
	Region   string
	Elo      int
	RoomCode string // private matches only
}

// Ticket is one waiting player. Owned by the queue, destroyed on dequeue.
type Ticket struct {
	PlayerID domain.PlayerID
	Request  Request
	JoinedAt time.Time
}

// PairFunc receives every successful pair. Battle creation is the consumer's
// concern; the queue only reports.
type PairFunc func(p1, p2 Ticket)

// Queue holds one FIFO waiting list per mode and periodically pairs players.
//
// All mutation goes through a single mutex: the queues are small and the
// pairing pass must observe a consistent view of every mode at once.
type Queue struct {
	mu         sync.Mutex
	queues     map[Mode][]Ticket
	playerMode map[domain.PlayerID]Mode

	onPair    PairFunc
	eloWindow int
	interval  time.Duration
	clock     func() time.Time
}

// NewQueue creates a queue for every recognized mode.
func NewQueue(onPair PairFunc) *Queue {
	q := &Queue{
		queues:     make(map[Mode][]Ticket, len(Modes)),
		playerMode: make(map[domain.PlayerID]Mode),
		onPair:     onPair,
		eloWindow:  DefaultEloWindow,
		interval:   DefaultPairingInterval,
		clock:      time.Now,
	}
	for _, mode := range Modes {
		q.queues[mode] = nil
	}
	return q
}

// WithEloWindow overrides the ranked rating window.
func (q *Queue) WithEloWindow(window int) *Queue {
	if window > 0 {
		q.eloWindow = window
	}
	return q
}

// WithInterval overrides the pairing pass interval.
func (q *Queue) WithInterval(interval time.Duration) *Queue {
	if interval > 0 {
		q.interval = interval
	}
	return q
}

// WithClock はテスト用に時間ソースを差し替える。
func (q *Queue) WithClock(clock func() time.Time) *Queue {
	if clock != nil {
		q.clock = clock
	}
	return q
}

// Join enqueues a player. A player already waiting anywhere is moved to the
// new request. Unrecognized modes are a silent no-op.
func (q *Queue) Join(ctx context.Context, playerID domain.PlayerID, req Request) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.queues[req.Mode]; !ok {
		slog.WarnContext(ctx, "matchmaking: unknown mode ignored", "playerID", playerID, "mode", req.Mode)
		return
	}

	q.removeLocked(playerID)

	q.queues[req.Mode] = append(q.queues[req.Mode], Ticket{
		PlayerID: playerID,
		Request:  req,
		JoinedAt: q.clock(),
	})
	q.playerMode[playerID] = req.Mode

	slog.InfoContext(ctx, "matchmaking: player joined queue",
		"playerID", playerID, "mode", req.Mode, "depth", len(q.queues[req.Mode]))
}

// Leave removes a player from whatever queue holds them. No-op if absent.
func (q *Queue) Leave(ctx context.Context, playerID domain.PlayerID) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.removeLocked(playerID) {
		slog.InfoContext(ctx, "matchmaking: player left queue", "playerID", playerID)
	}
}

// IsQueued reports whether the player is waiting in any mode.
func (q *Queue) IsQueued(playerID domain.PlayerID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.playerMode[playerID]
	return ok
}

// Depth returns the number of players waiting in mode.
func (q *Queue) Depth(mode Mode) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queues[mode])
}

// Run executes the pairing pass on a fixed interval until ctx is canceled.
func (q *Queue) Run(ctx context.Context) {
	ticker := time.NewTicker(q.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			q.PairAll(ctx)
		}
	}
}

// PairAll runs one pairing pass over every mode queue independently.
func (q *Queue) PairAll(ctx context.Context) {
	for _, mode := range Modes {
		q.pairMode(ctx, mode)
	}
}

// pairMode pairs as many players as possible in one mode.
//
// Quick-style modes pair head with next in pure FIFO order. Ranked pops the
// head as an anchor and scans for the first opponent within the rating
// window; an unmatchable anchor goes back to the head and the pass for this
// mode stops, so the same tail is not rescanned within one pass.
func (q *Queue) pairMode(ctx context.Context, mode Mode) {
	for {
		q.mu.Lock()
		queue := q.queues[mode]
		if len(queue) < 2 {
			q.mu.Unlock()
			return
		}

		anchor := queue[0]
		queue = queue[1:]

		var (
			opponent Ticket
			found    bool
		)
		if mode == ModeRanked {
			for i, candidate := range queue {
				if absDiff(anchor.Request.Elo, candidate.Request.Elo) <= q.eloWindow {
					opponent = candidate
					queue = append(queue[:i], queue[i+1:]...)
					found = true
					break
				}
			}
		} else {
			opponent = queue[0]
			queue = queue[1:]
			found = true
		}

		if !found {
			// 相手がいないアンカーは先頭へ戻し、このモードのパスを打ち切る。
			q.queues[mode] = append([]Ticket{anchor}, queue...)
			q.mu.Unlock()
			return
		}

		q.queues[mode] = queue
		delete(q.playerMode, anchor.PlayerID)
		delete(q.playerMode, opponent.PlayerID)
		onPair := q.onPair
		q.mu.Unlock()

		slog.InfoContext(ctx, "matchmaking: pair found",
			"mode", mode, "player1", anchor.PlayerID, "player2", opponent.PlayerID)

		if onPair != nil {
			onPair(anchor, opponent)
		}
	}
}

// removeLocked removes the player from their queue. Caller holds q.mu.
func (q *Queue) removeLocked(playerID domain.PlayerID) bool {
	mode, ok := q.playerMode[playerID]
	if !ok {
		return false
	}
	delete(q.playerMode, playerID)

	queue := q.queues[mode]
	for i, ticket := range queue {
		if ticket.PlayerID == playerID {
			q.queues[mode] = append(queue[:i], queue[i+1:]...)
			return true
		}
	}
	return false
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
