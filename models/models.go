// models/models.go
package models

import "fmt"

// Notification 服务器推送的文本消息
type Notification struct {
	Text string `json:"text"`
}

// Move 玩家提交的一步（一个词或命令）
type Move struct {
	Word string `json:"word"`
}

// Rejection 无效步的拒绝原因，只发给提交者
type Rejection struct {
	Reason string `json:"reason"`
}

// RoomSummary 房间概要（用于房间菜单和RPC）
type RoomSummary struct {
	ID       int `json:"id"`
	Players  int `json:"players"`
	Capacity int `json:"capacity"`
}

// String renders the summary as one menu line.
func (r RoomSummary) String() string {
	return fmt.Sprintf("%d. Room %d; players: %d", r.ID, r.ID, r.Players)
}

// RoomList 房间菜单
type RoomList struct {
	Rooms []RoomSummary `json:"rooms"`
}

// PlayerRecord 玩家战绩（仅进程内，不持久化）
type PlayerRecord struct {
	Name   string `json:"name"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
	Words  int    `json:"words"`
}
