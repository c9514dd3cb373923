package session

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"jutsuclash/domain"
)

// CloseReason は切断理由のコードです。
type CloseReason uint32

const (
	CloseReasonNone CloseReason = iota
	CloseReasonClientGone
	CloseReasonServerShutdown
	CloseReasonProtocolError
)

// Session は1接続の論理状態を表します。セッションIDがそのまま
// プレイヤーIDとして使われます (認証は扱わないため)。
type Session struct {
	id       domain.PlayerID
	username atomic.Value // string

	// activity
	lastRead  atomic.Int64
	lastWrite atomic.Int64

	// lifecycle
	closed      atomic.Bool
	closeReason atomic.Uint32
}

// New は新しいセッションを生成します。
func New() *Session {
	s := &Session{
		id: domain.PlayerID(uuid.NewString()),
	}
	s.username.Store("")
	now := time.Now().UnixNano()
	s.lastRead.Store(now)
	s.lastWrite.Store(now)
	return s
}

// PlayerID はこのセッションのプレイヤーIDを返します。
func (s *Session) PlayerID() domain.PlayerID { return s.id }

// SetUsername は表示名を設定します。マッチング参加時に一度だけ届きます。
func (s *Session) SetUsername(name string) { s.username.Store(name) }

// Username は表示名を返します。未設定なら空文字です。
func (s *Session) Username() string {
	name, _ := s.username.Load().(string)
	return name
}

func (s *Session) TouchRead()  { s.lastRead.Store(time.Now().UnixNano()) }
func (s *Session) TouchWrite() { s.lastWrite.Store(time.Now().UnixNano()) }

// LastRead は最後に受信した時刻を返します。
func (s *Session) LastRead() time.Time { return time.Unix(0, s.lastRead.Load()) }

// LastWrite は最後に送信した時刻を返します。
func (s *Session) LastWrite() time.Time { return time.Unix(0, s.lastWrite.Load()) }

// Close はセッションを閉じます。最初の呼び出しだけがtrueを返します。
func (s *Session) Close(reason CloseReason) bool {
	if !s.closed.CompareAndSwap(false, true) {
		return false
	}
	s.closeReason.Store(uint32(reason))
	return true
}

// Closed はセッションが閉じられているかを返します。
func (s *Session) Closed() bool { return s.closed.Load() }

// Reason は閉じた理由を返します。未クローズならCloseReasonNoneです。
func (s *Session) Reason() CloseReason { return CloseReason(s.closeReason.Load()) }
