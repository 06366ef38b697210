// Package models defines the data structures used for API requests and database persistence.
package models

import "time"

// RegisterRequest is the payload of a request to start tracking a server.
type RegisterRequest struct {
	IP   string `json:"ip"`
	Port int    `json:"port"`
}

// Server is a tracked game server with its last A2S_INFO snapshot.
type Server struct {
	FirstSeen   time.Time `json:"first_seen"`
	LastSeen    time.Time `json:"last_seen"`
	IP          string    `json:"ip"`
	Name        string    `json:"name"`
	Map         string    `json:"map"`
	Folder      string    `json:"folder"`
	Game        string    `json:"game"`
	Version     string    `json:"version"`
	Keywords    string    `json:"keywords,omitempty"`
	ServerType  string    `json:"server_type"`
	Environment string    `json:"environment"`
	Visibility  string    `json:"visibility"`
	VAC         string    `json:"vac"`
	CountryCode string    `json:"country_code"`
	Players     []Player  `json:"player_list,omitempty"`
	Port        int       `json:"port"`
	Count       int64     `json:"count"`
	AppID       uint16    `json:"app_id"`
	NumPlayers  byte      `json:"players"`
	MaxPlayers  byte      `json:"max_players"`
	Bots        byte      `json:"bots"`
}

// Player is one player of a stored roster snapshot.
type Player struct {
	SeenAt   time.Time `json:"seen_at"`
	Name     string    `json:"name"`
	Score    int32     `json:"score"`
	Duration float32   `json:"duration"`
}
