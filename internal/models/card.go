package models

import (
	"time"
)

// Card is a single vocabulary flashcard. Cards are never deleted; hiding
// removes them from study and games until restored.
type Card struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           uint      `gorm:"index;not null" json:"user_id"`
	EnglishWord      string    `gorm:"size:200;not null" json:"english_word"`
	RussianWord      string    `gorm:"size:200;not null" json:"russian_word"`
	Description      string    `gorm:"type:text" json:"description"`
	Transcription    string    `gorm:"size:200" json:"transcription"`
	PronunciationURL string    `gorm:"size:500" json:"pronunciation_url"`
	ImagePath        *string   `gorm:"size:500" json:"image_path"`
	IsHidden         bool      `gorm:"not null;default:false;index" json:"is_hidden"`
	CreatedAt        time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for Card model
func (Card) TableName() string {
	return "cards"
}

// Pair returns the card's term pair
func (c Card) Pair() WordPair {
	return WordPair{EnglishWord: c.EnglishWord, RussianWord: c.RussianWord}
}

// WordPair is the (english, russian) projection used by games and duplicate checks
type WordPair struct {
	EnglishWord string `json:"english_word"`
	RussianWord string `json:"russian_word"`
}

// CardDescription is the response structure for /get_card_description
type CardDescription struct {
	EnglishWord      string  `json:"english_word"`
	RussianWord      string  `json:"russian_word"`
	Description      string  `json:"description"`
	Transcription    string  `json:"transcription"`
	PronunciationURL string  `json:"pronunciation_url"`
	ImagePath        *string `json:"image_path"`
}

// Describe builds the description payload for a card
func (c Card) Describe() CardDescription {
	return CardDescription{
		EnglishWord:      c.EnglishWord,
		RussianWord:      c.RussianWord,
		Description:      c.Description,
		Transcription:    c.Transcription,
		PronunciationURL: c.PronunciationURL,
		ImagePath:        c.ImagePath,
	}
}
