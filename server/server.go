package server

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/rpc"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/wfunc/wordchain/broadcast"
	"github.com/wfunc/wordchain/config"
	"github.com/wfunc/wordchain/game"
	"github.com/wfunc/wordchain/logger"
	"github.com/wfunc/wordchain/models"
	"github.com/wfunc/wordchain/monitor"
	"github.com/wfunc/wordchain/network"
	"github.com/wfunc/wordchain/room"
	wordchain_rpc "github.com/wfunc/wordchain/rpc"
	"github.com/wfunc/wordchain/services"
	"github.com/wfunc/wordchain/session"
)

// GameServer is the room directory: it owns the fixed room pool, accepts
// connections and walks each one through room selection into a room.
type GameServer struct {
	cfg            *config.Config
	listener       net.Listener
	upgrader       websocket.Upgrader
	roomManager    *room.Manager
	sessionManager *session.Manager
	broadcaster    *broadcast.RoomBroadcaster
	statsService   *services.StatsService
	mon            *monitor.Monitor
	rpcServer      *wordchain_rpc.Server
	scheduler      timerScheduler
	mutex          sync.Mutex
	shutdownChan   chan struct{}
	shutdownOnce   sync.Once
}

// timerScheduler is the slice of the scheduler the server uses; it keeps the
// concrete type out of the struct for tests.
type timerScheduler interface {
	Schedule(delay, interval time.Duration, callback func()) int64
	Stop()
}

func NewGameServer(cfg *config.Config, scheduler timerScheduler) *GameServer {
	s := &GameServer{
		cfg:            cfg,
		roomManager:    room.NewRoomManager(),
		sessionManager: session.NewManager(),
		statsService:   services.NewStatsService(),
		mon:            monitor.NewMonitor("wordchain"),
		scheduler:      scheduler,
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}

	// 初始化广播器和房间池
	s.broadcaster = broadcast.NewRoomBroadcaster(s.roomManager, s.sessionManager)
	s.roomManager.CreatePool(cfg.Game.RoomCount, 2, cfg.Game.TurnTimeout, s.broadcaster, s.mon, s.statsService)

	// 初始化RPC服务器
	rpcServer, err := wordchain_rpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	s.rpcServer = rpcServer

	// 注册RPC服务
	rpc.Register(wordchain_rpc.NewDirectoryService(s.roomManager, s.statsService))

	return s
}

// Start begins accepting connections and blocks for the server lifetime.
func (s *GameServer) Start() error {
	go s.rpcServer.Start()
	s.mon.StartServer(s.cfg.Server.MonitorAddress)

	// 周期性任务：重采样对局数、清理挂在菜单上的空闲连接
	s.scheduler.Schedule(5*time.Second, 5*time.Second, func() {
		s.mon.SetActiveRounds(s.roomManager.ActiveRounds())
	})
	s.scheduler.Schedule(30*time.Second, 30*time.Second, s.sweepIdleSessions)

	if s.cfg.Server.WSAddress != "" {
		go s.startWebSocket(s.cfg.Server.WSAddress)
	}

	listener, err := net.Listen("tcp", s.cfg.Server.TCPAddress)
	if err != nil {
		return err
	}
	s.mutex.Lock()
	s.listener = listener
	s.mutex.Unlock()

	logger.Log.Infof("Game server listening on %s", s.cfg.Server.TCPAddress)
	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-s.shutdownChan:
				return nil
			default:
			}
			logger.Log.Errorf("Accept error: %v", err)
			continue
		}
		go s.handleConnection(network.NewTCPConnection(conn, uint32(s.cfg.Game.MaxFrameSize)))
	}
}

// Addr reports the bound TCP address, or nil before Start has listened.
func (s *GameServer) Addr() net.Addr {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown stops listeners and closes every room.
func (s *GameServer) Shutdown() {
	s.shutdownOnce.Do(func() {
		close(s.shutdownChan)
		s.mutex.Lock()
		if s.listener != nil {
			s.listener.Close()
		}
		s.mutex.Unlock()
		s.rpcServer.Stop()
		s.scheduler.Stop()
		s.roomManager.CloseAll()
	})
}

func (s *GameServer) startWebSocket(addr string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	logger.Log.Infof("WebSocket endpoint listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Log.Errorf("WebSocket listener: %v", err)
	}
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(network.NewWSConnection(conn, uint32(s.cfg.Game.MaxFrameSize)))
}

// handleConnection runs one client's whole lifecycle: welcome, the room
// menu, name entry, and the seated phase, looping back to the menu whenever
// a room hands the player back.
func (s *GameServer) handleConnection(conn network.Connection) {
	sess := session.NewSession(uuid.New().String(), conn)
	s.sessionManager.Add(sess)
	s.mon.IncOnlinePlayers()

	logger.Log.Infof("New connection from %s, session ID: %s", conn.RemoteAddr(), sess.ID)

	packets := make(chan *network.Packet, 8)
	go s.readPump(sess, packets)

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", conn.RemoteAddr(), sess.ID)
		if roomID := sess.RoomID(); roomID != 0 {
			if r, ok := s.roomManager.GetRoom(roomID); ok {
				r.Leave(sess.ID)
			}
		}
		s.sessionManager.Remove(sess.ID)
		s.mon.DecOnlinePlayers()
		conn.Close()
		// Unblock the pump if it is parked on a full channel.
		go func() {
			for range packets {
			}
		}()
	}()

	s.sendText(sess, network.MsgTypeWelcome, "welcome to the word-chain server, choose a room:")

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
		}

		r, ok := s.selectRoom(sess, packets)
		if !ok {
			return
		}

		seat, ok := s.seatPlayer(sess, r, packets)
		if !ok {
			return
		}

		verdict, alive := s.runSeated(sess, r, seat, packets)
		if !alive {
			return
		}
		if verdict == game.VerdictDisconnect {
			s.disconnect(sess, "goodbye!")
			return
		}
		// Back to room selection.
	}
}

// readPump is the connection's only reader. It forwards every inbound packet
// and closes the channel when the peer goes away or breaks the protocol.
func (s *GameServer) readPump(sess *session.Session, packets chan<- *network.Packet) {
	defer close(packets)
	for {
		packet, err := sess.Conn.ReadPacket()
		if err != nil {
			return
		}
		sess.Touch()
		packets <- packet
	}
}

// nextLine waits for the next Move packet and returns its normalized text.
// ok is false when the connection is gone or the payload is not valid JSON
// (a protocol violation that closes the connection).
func (s *GameServer) nextLine(packets <-chan *network.Packet) (string, bool) {
	for packet := range packets {
		if packet.MsgID != network.MsgTypeMove {
			continue
		}
		var move models.Move
		if err := json.Unmarshal(packet.Data, &move); err != nil {
			logger.Log.Warnf("undecodable move payload: %v", err)
			return "", false
		}
		return strings.TrimSpace(move.Word), true
	}
	return "", false
}

// selectRoom runs the menu loop until the client picks a joinable room or
// leaves. ok is false when the connection should be torn down.
func (s *GameServer) selectRoom(sess *session.Session, packets <-chan *network.Packet) (*room.Room, bool) {
	for {
		s.sendRoomList(sess)

		line, ok := s.nextLine(packets)
		if !ok {
			return nil, false
		}

		if line == game.ExitCommand {
			s.disconnect(sess, "goodbye!")
			return nil, false
		}

		id, err := strconv.Atoi(line)
		if err != nil || id < 1 || id > s.roomManager.Count() {
			s.sendText(sess, network.MsgTypeError, fmt.Sprintf("choose a room 1-%d", s.roomManager.Count()))
			continue
		}

		r, _ := s.roomManager.GetRoom(id)
		if r.IsFull() {
			s.sendText(sess, network.MsgTypeError, fmt.Sprintf("room %d is full, choose another", id))
			continue
		}

		return r, true
	}
}

// seatPlayer asks for a name and joins the room. ok is false when the
// connection is gone.
func (s *GameServer) seatPlayer(sess *session.Session, r *room.Room, packets <-chan *network.Packet) (*room.Seat, bool) {
	var name string
	for name == "" {
		s.sendText(sess, network.MsgTypePrompt, "enter your name")
		line, ok := s.nextLine(packets)
		if !ok {
			return nil, false
		}
		name = line
	}

	seat, err := r.Join(sess, name)
	if err != nil {
		// Lost the race for the last seat.
		s.sendText(sess, network.MsgTypeError, fmt.Sprintf("room %d is full, choose another", r.ID()))
		return nil, true
	}
	sess.SetName(name)

	s.sendText(sess, network.MsgTypeNotification, fmt.Sprintf("you joined room %d", r.ID()))
	return seat, true
}

// runSeated pumps the player's lines into the room until the room releases
// the seat or the connection drops. alive is false when the connection is
// gone and the handler must exit.
func (s *GameServer) runSeated(sess *session.Session, r *room.Room, seat *room.Seat, packets <-chan *network.Packet) (game.Verdict, bool) {
	if seat == nil {
		// Join was refused; go back to the menu.
		return game.VerdictToSelection, true
	}

	for {
		select {
		case verdict := <-seat.Released():
			return verdict, true
		case packet, ok := <-packets:
			if !ok {
				r.Leave(sess.ID)
				return game.VerdictDisconnect, false
			}
			if packet.MsgID != network.MsgTypeMove {
				continue
			}
			var move models.Move
			if err := json.Unmarshal(packet.Data, &move); err != nil {
				logger.Log.Warnf("undecodable move payload from %s: %v", sess.ID, err)
				r.Leave(sess.ID)
				return game.VerdictDisconnect, false
			}
			r.Submit(sess.ID, move.Word)
		}
	}
}

func (s *GameServer) sendRoomList(sess *session.Session) {
	data, err := json.Marshal(models.RoomList{Rooms: s.roomManager.Snapshot()})
	if err != nil {
		logger.Log.Errorf("marshal room list: %v", err)
		return
	}
	if err := sess.Send(network.MsgTypeRoomList, data); err != nil {
		logger.Log.Warnf("send room list to %s: %v", sess.ID, err)
	}
}

func (s *GameServer) sendText(sess *session.Session, msgID uint16, text string) {
	data, _ := json.Marshal(models.Notification{Text: text})
	if err := sess.Send(msgID, data); err != nil {
		logger.Log.Warnf("send to %s: %v", sess.ID, err)
	}
}

// disconnect sends a farewell; the deferred cleanup closes the socket.
func (s *GameServer) disconnect(sess *session.Session, reason string) {
	s.sendText(sess, network.MsgTypeFarewell, "you have been disconnected: "+reason)
}

// sweepIdleSessions drops connections that sat at the menu past the idle
// timeout. Seated players are exempt: the turn timer polices them.
func (s *GameServer) sweepIdleSessions() {
	for _, sess := range s.sessionManager.IdleSince(s.cfg.Game.IdleTimeout) {
		logger.Log.Infof("Dropping idle session %s", sess.ID)
		s.disconnect(sess, "idle for too long")
		sess.Close()
	}
}
