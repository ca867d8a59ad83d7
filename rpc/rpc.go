package rpc

import (
	"net"
	"net/rpc"

	"github.com/wfunc/wordchain/logger"
	"github.com/wfunc/wordchain/models"
	"github.com/wfunc/wordchain/room"
	"github.com/wfunc/wordchain/services"
)

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	address  string
}

// NewServer creates a new RPC server.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			// Check if the error is due to the listener being closed.
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// DirectoryService exposes read-only directory and stats queries over
// net/rpc, for operators poking at a running server.
type DirectoryService struct {
	rooms *room.Manager
	stats *services.StatsService
}

// NewDirectoryService creates a new DirectoryService.
func NewDirectoryService(rooms *room.Manager, stats *services.StatsService) *DirectoryService {
	return &DirectoryService{rooms: rooms, stats: stats}
}

// Methods follow the net/rpc signature: exported method, exported arguments,
// second argument is a pointer, return type is error.

type RoomStatsArgs struct{}

type RoomStatsReply struct {
	Rooms        []models.RoomSummary
	ActiveRounds int
}

func (ds *DirectoryService) RoomStats(args *RoomStatsArgs, reply *RoomStatsReply) error {
	reply.Rooms = ds.rooms.Snapshot()
	reply.ActiveRounds = ds.rooms.ActiveRounds()
	return nil
}

type PlayerRecordArgs struct {
	Name string
}

type PlayerRecordReply struct {
	Record models.PlayerRecord
	Found  bool
}

func (ds *DirectoryService) PlayerRecord(args *PlayerRecordArgs, reply *PlayerRecordReply) error {
	reply.Record, reply.Found = ds.stats.Record(args.Name)
	return nil
}

type AllRecordsArgs struct{}

type AllRecordsReply struct {
	Records []models.PlayerRecord
}

func (ds *DirectoryService) AllRecords(args *AllRecordsArgs, reply *AllRecordsReply) error {
	reply.Records = ds.stats.All()
	return nil
}
