package models

import (
	"time"
)

// Highscore is an append-only leaderboard entry. PlayerName is picked at
// random and is not the owner's username.
type Highscore struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	UserID     uint      `gorm:"index;not null" json:"-"`
	PlayerName string    `gorm:"size:100;not null" json:"player_name"`
	Score      int       `gorm:"not null;index" json:"score"`
	Date       time.Time `gorm:"not null" json:"date"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for Highscore model
func (Highscore) TableName() string {
	return "highscores"
}
