// room/room.go
package room

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wfunc/wordchain/game"
	"github.com/wfunc/wordchain/logger"
	"github.com/wfunc/wordchain/models"
	"github.com/wfunc/wordchain/network"
	"github.com/wfunc/wordchain/session"
)

// RoomStatus 表示房间的业务状态，例如等待、游戏中等
type RoomStatus int

const (
	StatusWaiting RoomStatus = iota
	StatusPlaying
	StatusEnding
)

var (
	ErrRoomFull   = errors.New("room is full")
	ErrRoomClosed = errors.New("room is closed")
)

// Seat binds one session to one room for the duration of a seating. The
// connection handler waits on Released to learn how the seating ended.
type Seat struct {
	sess     *session.Session
	name     string
	released chan game.Verdict
}

func (s *Seat) GetID() string {
	return s.sess.ID
}

func (s *Seat) GetName() string {
	return s.name
}

// Released delivers exactly one verdict when the room lets the player go.
func (s *Seat) Released() <-chan game.Verdict {
	return s.released
}

// Room 是游戏房间的核心结构。所有可变字段只由房间自己的goroutine修改：
// 加入、离开、提交和回合计时器都以事件的形式进入同一个select，因此
// 超时和来词之间的竞争由单一决策点裁决，恰好一条路径生效。
type Room struct {
	id          int
	capacity    int
	turnTimeout time.Duration

	seats     []*Seat // ordered: seats[0] joined first and moves first
	seatMutex sync.RWMutex

	status      RoomStatus
	statusMutex sync.RWMutex

	machine    game.StateMachine
	events     chan event
	turnTimer  *time.Timer
	timerArmed bool

	broadcaster Broadcaster
	recorder    Recorder
	stats       Stats

	closeChan chan struct{}
	closeOnce sync.Once
}

type event interface{}

type joinEvent struct {
	sess  *session.Session
	name  string
	reply chan joinResult
}

type joinResult struct {
	seat *Seat
	err  error
}

type moveEvent struct {
	sessionID string
	line      string
}

type leaveEvent struct {
	sessionID string
}

// NewRoom 创建一个新房间并启动它的goroutine
func NewRoom(id, capacity int, turnTimeout time.Duration, broadcaster Broadcaster, recorder Recorder, stats Stats) *Room {
	r := &Room{
		id:          id,
		capacity:    capacity,
		turnTimeout: turnTimeout,
		status:      StatusWaiting,
		events:      make(chan event, 16),
		broadcaster: broadcaster,
		recorder:    recorder,
		stats:       stats,
		closeChan:   make(chan struct{}),
	}

	r.turnTimer = time.NewTimer(time.Hour)
	if !r.turnTimer.Stop() {
		<-r.turnTimer.C
	}

	// 初始化状态机，将房间自身(room)作为上下文传入
	r.machine = game.NewBaseStateMachine(game.NewWaitingState(r))

	go r.loop()

	return r
}

// --- 对外操作（任意goroutine调用） ---

// Join seats a session. It blocks until the room goroutine has decided and
// returns the seat whose Released channel reports the end of the seating.
func (r *Room) Join(sess *session.Session, name string) (*Seat, error) {
	reply := make(chan joinResult, 1)
	select {
	case r.events <- joinEvent{sess: sess, name: name, reply: reply}:
	case <-r.closeChan:
		return nil, ErrRoomClosed
	}

	select {
	case res := <-reply:
		return res.seat, res.err
	case <-r.closeChan:
		return nil, ErrRoomClosed
	}
}

// Submit hands one line from a seated player to the room. Lines from
// sessions that are no longer seated are dropped.
func (r *Room) Submit(sessionID, line string) {
	select {
	case r.events <- moveEvent{sessionID: sessionID, line: line}:
	case <-r.closeChan:
	}
}

// Leave reports that a seated session's connection is gone.
func (r *Room) Leave(sessionID string) {
	select {
	case r.events <- leaveEvent{sessionID: sessionID}:
	case <-r.closeChan:
	}
}

// Sessions returns a snapshot of the seated sessions (thread-safe).
func (r *Room) Sessions() []*session.Session {
	r.seatMutex.RLock()
	defer r.seatMutex.RUnlock()

	sessions := make([]*session.Session, 0, len(r.seats))
	for _, seat := range r.seats {
		sessions = append(sessions, seat.sess)
	}
	return sessions
}

// IsFull reports whether every seat is taken.
func (r *Room) IsFull() bool {
	r.seatMutex.RLock()
	defer r.seatMutex.RUnlock()
	return len(r.seats) >= r.capacity
}

// Snapshot 返回房间概要，用于房间菜单和RPC
func (r *Room) Snapshot() models.RoomSummary {
	r.seatMutex.RLock()
	players := len(r.seats)
	r.seatMutex.RUnlock()

	return models.RoomSummary{
		ID:       r.id,
		Players:  players,
		Capacity: r.capacity,
	}
}

// GetStatus 获取房间的业务状态
func (r *Room) GetStatus() RoomStatus {
	r.statusMutex.RLock()
	defer r.statusMutex.RUnlock()
	return r.status
}

// Close 关闭房间，停止主循环
func (r *Room) Close() {
	r.closeOnce.Do(func() {
		close(r.closeChan)
	})
}

// --- 房间主循环 ---

func (r *Room) loop() {
	for {
		select {
		case ev := <-r.events:
			r.dispatch(ev)
		case <-r.turnTimer.C:
			r.timerArmed = false
			r.machine.GetCurrentState().HandleTimeout()
		case <-r.closeChan:
			r.StopTurnTimer()
			return
		}
	}
}

func (r *Room) dispatch(ev event) {
	state := r.machine.GetCurrentState()

	switch ev := ev.(type) {
	case joinEvent:
		r.seatMutex.RLock()
		full := len(r.seats) >= r.capacity
		r.seatMutex.RUnlock()
		if full {
			ev.reply <- joinResult{err: ErrRoomFull}
			return
		}

		seat := &Seat{
			sess:     ev.sess,
			name:     ev.name,
			released: make(chan game.Verdict, 1),
		}
		r.seatMutex.Lock()
		r.seats = append(r.seats, seat)
		r.seatMutex.Unlock()
		ev.sess.SetRoomID(r.id)

		logger.Log.Infof("player %s (session %s) joined room %d", ev.name, ev.sess.ID, r.id)
		ev.reply <- joinResult{seat: seat}
		state.PlayerJoined(seat)

	case moveEvent:
		if seat := r.seatByID(ev.sessionID); seat != nil {
			state.HandleMove(seat, ev.line)
		}

	case leaveEvent:
		if seat := r.seatByID(ev.sessionID); seat != nil {
			logger.Log.Infof("player %s left room %d", seat.name, r.id)
			state.PlayerLeft(seat)
		}
	}
}

func (r *Room) seatByID(sessionID string) *Seat {
	r.seatMutex.RLock()
	defer r.seatMutex.RUnlock()

	for _, seat := range r.seats {
		if seat.sess.ID == sessionID {
			return seat
		}
	}
	return nil
}

// --- 实现 game.RoomContext 接口（只在房间goroutine内调用） ---

func (r *Room) ID() int {
	return r.id
}

func (r *Room) Capacity() int {
	return r.capacity
}

func (r *Room) Seats() []game.Player {
	r.seatMutex.RLock()
	defer r.seatMutex.RUnlock()

	players := make([]game.Player, 0, len(r.seats))
	for _, seat := range r.seats {
		players = append(players, seat)
	}
	return players
}

// ChangeState 改变状态机状态并同步业务状态。转换可能级联（结算状态在
// OnEnter里直接切回等待状态），所以业务状态以状态机落定后的状态为准，
// 而不是本次传入的newState。
func (r *Room) ChangeState(newState game.State) error {
	if err := r.machine.ChangeState(newState); err != nil {
		return err
	}

	r.statusMutex.Lock()
	switch r.machine.GetCurrentState().GetID() {
	case game.StatePlaying:
		r.status = StatusPlaying
	case game.StateEnding:
		r.status = StatusEnding
	default:
		r.status = StatusWaiting
	}
	r.statusMutex.Unlock()
	return nil
}

func (r *Room) Notify(text string, except ...game.Player) {
	data, err := json.Marshal(models.Notification{Text: text})
	if err != nil {
		logger.Log.Errorf("room %d: marshal notification: %v", r.id, err)
		return
	}

	exceptIDs := make([]string, 0, len(except))
	for _, p := range except {
		exceptIDs = append(exceptIDs, p.GetID())
	}

	if err := r.broadcaster.BroadcastToRoom(r.id, network.MsgTypeNotification, data, exceptIDs...); err != nil {
		logger.Log.Warnf("room %d: broadcast: %v", r.id, err)
	}
}

func (r *Room) Reject(player game.Player, reason string) {
	if r.recorder != nil {
		r.recorder.MoveRejected()
	}

	seat := r.seatByID(player.GetID())
	if seat == nil {
		return
	}
	data, _ := json.Marshal(models.Rejection{Reason: reason})
	if err := seat.sess.Send(network.MsgTypeRejection, data); err != nil {
		logger.Log.Warnf("room %d: send rejection to %s: %v", r.id, player.GetName(), err)
	}
}

// ArmTurnTimer (re)starts the per-turn clock. Stop-and-drain keeps a timer
// that fired between events from delivering a stale timeout.
func (r *Room) ArmTurnTimer() {
	if !r.turnTimer.Stop() && r.timerArmed {
		select {
		case <-r.turnTimer.C:
		default:
		}
	}
	r.turnTimer.Reset(r.turnTimeout)
	r.timerArmed = true
}

func (r *Room) StopTurnTimer() {
	if !r.turnTimer.Stop() && r.timerArmed {
		select {
		case <-r.turnTimer.C:
		default:
		}
	}
	r.timerArmed = false
}

func (r *Room) ReleaseSeat(player game.Player, verdict game.Verdict) {
	r.seatMutex.Lock()
	var seat *Seat
	for i, s := range r.seats {
		if s.sess.ID == player.GetID() {
			seat = s
			r.seats = append(r.seats[:i], r.seats[i+1:]...)
			break
		}
	}
	r.seatMutex.Unlock()

	if seat == nil {
		return
	}

	seat.sess.SetRoomID(0)
	select {
	case seat.released <- verdict:
	default:
	}
}

func (r *Room) RecordRoundStarted() {
	if r.recorder != nil {
		r.recorder.RoundStarted()
	}
}

func (r *Room) RecordMove(player game.Player) {
	if r.recorder != nil {
		r.recorder.MoveAccepted()
	}
	if r.stats != nil {
		r.stats.RecordWord(player.GetName())
	}
}

func (r *Room) RecordTimeout() {
	if r.recorder != nil {
		r.recorder.TurnTimeout()
	}
}

func (r *Room) RecordRoundEnded(winner, loser game.Player, started time.Time) {
	if r.recorder != nil {
		r.recorder.RoundEnded(time.Since(started))
	}
	if r.stats != nil && winner != nil {
		r.stats.RecordResult(winner.GetName(), loser.GetName())
	}
}

// --- 房间管理器 ---

// Manager 管理固定的房间池。池在启动时创建，之后只读。
type Manager struct {
	rooms []*Room
}

// NewRoomManager 创建一个空的房间管理器
func NewRoomManager() *Manager {
	return &Manager{}
}

// CreatePool creates rooms numbered 1..count and starts them.
func (m *Manager) CreatePool(count, capacity int, turnTimeout time.Duration, broadcaster Broadcaster, recorder Recorder, stats Stats) {
	for i := 1; i <= count; i++ {
		m.rooms = append(m.rooms, NewRoom(i, capacity, turnTimeout, broadcaster, recorder, stats))
	}
}

// GetRoom 按编号（1起）获取房间
func (m *Manager) GetRoom(id int) (*Room, bool) {
	if id < 1 || id > len(m.rooms) {
		return nil, false
	}
	return m.rooms[id-1], true
}

func (m *Manager) Count() int {
	return len(m.rooms)
}

// Snapshot 返回全部房间概要，按编号排序
func (m *Manager) Snapshot() []models.RoomSummary {
	summaries := make([]models.RoomSummary, 0, len(m.rooms))
	for _, room := range m.rooms {
		summaries = append(summaries, room.Snapshot())
	}
	return summaries
}

// ActiveRounds counts rooms with a round in progress.
func (m *Manager) ActiveRounds() int {
	count := 0
	for _, room := range m.rooms {
		if room.GetStatus() == StatusPlaying {
			count++
		}
	}
	return count
}

// CloseAll 关闭所有房间
func (m *Manager) CloseAll() {
	for _, room := range m.rooms {
		room.Close()
	}
}

// String implements fmt.Stringer for logs.
func (s RoomStatus) String() string {
	switch s {
	case StatusPlaying:
		return "playing"
	case StatusEnding:
		return "ending"
	default:
		return "waiting"
	}
}

var _ game.RoomContext = (*Room)(nil)
var _ fmt.Stringer = RoomStatus(0)
