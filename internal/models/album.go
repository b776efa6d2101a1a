package models

import "time"

// Album groups media. Exactly one album, with a fixed configured ID, has
// IsFavorite set; it is created at startup and can never be deleted.
type Album struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"size:1000" json:"description"`
	IsFavorite  bool   `gorm:"not null;default:false" json:"is_favorite"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Album) TableName() string {
	return "albums"
}

// AlbumMedia links one asset to one album with a manual display position.
// Position defaults to max(position)+1 within the album on append.
type AlbumMedia struct {
	AlbumID  uint      `gorm:"primaryKey;autoIncrement:false" json:"album_id"`
	MediaID  uint      `gorm:"primaryKey;autoIncrement:false" json:"media_id"`
	Position int       `gorm:"not null" json:"position"`
	AddedAt  time.Time `json:"added_at"`

	Album *Album `gorm:"foreignKey:AlbumID;constraint:OnDelete:CASCADE" json:"-"`
	Media *Media `gorm:"foreignKey:MediaID;constraint:OnDelete:CASCADE" json:"-"`
}

func (AlbumMedia) TableName() string {
	return "album_media"
}
