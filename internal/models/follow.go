package models

// Follow is a directed edge: UserID receives AuthorID's posts in their feed.
// The pair is unique; self-follows are rejected by the follow service, not here.
type Follow struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	UserID   uint `gorm:"not null;uniqueIndex:unique_follow" json:"user_id"`
	AuthorID uint `gorm:"not null;uniqueIndex:unique_follow;index" json:"author_id"`

	User   User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Author User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (Follow) TableName() string {
	return "follows"
}
