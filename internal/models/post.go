package models

import "time"

// postPreviewLength is how many characters of text a post renders as.
const postPreviewLength = 15

// Post represents a post in the Yatube application.
type Post struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Text     string    `gorm:"type:text;not null" json:"text"`
	PubDate  time.Time `gorm:"autoCreateTime;index" json:"pub_date"`
	AuthorID uint      `gorm:"not null;index" json:"author_id"`
	Author   User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	GroupID  *uint     `gorm:"index" json:"group_id,omitempty"`
	Group    *Group    `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL" json:"group,omitempty"`
	// Image is the storage key of the original upload, empty when the post has none.
	Image          string    `gorm:"size:255" json:"image"`
	ImageThumb     string    `gorm:"size:255" json:"image_thumb"`
	ImageThumbWebP string    `gorm:"column:image_thumb_webp;size:255" json:"image_thumb_webp"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// HasImage reports whether an image is attached.
func (p Post) HasImage() bool {
	return p.Image != ""
}

func (p Post) String() string {
	r := []rune(p.Text)
	if len(r) > postPreviewLength {
		return string(r[:postPreviewLength])
	}
	return p.Text
}
