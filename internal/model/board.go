package model

import "time"

type Board struct {
	ID        uint    `gorm:"primaryKey"`
	Title     string  `gorm:"size:200;not null"`
	Content   string  `gorm:"type:text;not null"`
	Author    string  `gorm:"size:100;not null;index"`
	ImageName *string `gorm:"size:255"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsOwnedBy reports whether identity authored the board.
func (b *Board) IsOwnedBy(identity string) bool {
	return identity != "" && b.Author == identity
}

// HasImage reports whether an image is attached.
func (b *Board) HasImage() bool {
	return b.ImageName != nil && *b.ImageName != ""
}
