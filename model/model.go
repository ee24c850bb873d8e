package model

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username     string `gorm:"type:varchar(80);uniqueIndex;not null"`
	Email        string `gorm:"type:varchar(120);uniqueIndex;not null"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
	Level        int    `gorm:"default:1"`
	Experience   int    `gorm:"default:0"`
}

type PlayerStats struct {
	gorm.Model
	UserID        uint `gorm:"uniqueIndex;not null"`
	MatchesPlayed int
	GoalsScored   int
	Wins          int
	Losses        int
}

// Match is the lobby-side record of a match; completed when the final
// result arrives off the queue.
type Match struct {
	gorm.Model
	MatchID    string `gorm:"type:varchar(64);uniqueIndex;not null"`
	Player1ID  uint   `gorm:"index;not null"`
	Player2ID  uint   `gorm:"index"`
	StartTime  time.Time
	EndTime    *time.Time
	ScoreTeam1 int
	ScoreTeam2 int
	WinnerID   uint
	Status     string `gorm:"type:varchar(16);default:'WAITING'"`
}

type MatchHistory struct {
	gorm.Model
	UserID       uint   `gorm:"index;not null"`
	MatchID      string `gorm:"type:varchar(64);index"`
	IsWinner     bool
	GoalsFor     int
	GoalsAgainst int
	Duration     float64
	Timestamp    int64
}
