package main

type User struct {
	ID           uint      `gorm:"primaryKey"`
	Email        string    `gorm:"size:100;uniqueIndex;not null"`
	Password     string    `gorm:"size:100;not null"`
	Name         string    `gorm:"size:100;not null"`
	IsAdmin      bool      `gorm:"not null"`
	SessionNonce string    `gorm:"size:36;not null"`
	Posts        []Post    `gorm:"foreignKey:AuthorID"`
	Comments     []Comment `gorm:"foreignKey:AuthorID"`
}

func (User) TableName() string { return "users" }

// Post.Date is a display string, not a timestamp.
type Post struct {
	ID       uint      `gorm:"primaryKey"`
	Title    string    `gorm:"size:250;uniqueIndex;not null"`
	Subtitle string    `gorm:"size:250;not null"`
	Date     string    `gorm:"size:250;not null"`
	Body     string    `gorm:"type:text;not null"`
	ImgURL   string    `gorm:"column:img_url;size:250;not null"`
	AuthorID uint      `gorm:"not null"`
	Author   User      `gorm:"foreignKey:AuthorID"`
	Comments []Comment `gorm:"foreignKey:PostID"`
}

func (Post) TableName() string { return "blog_posts" }

type Comment struct {
	ID       uint   `gorm:"primaryKey"`
	Text     string `gorm:"type:text;not null"`
	AuthorID uint   `gorm:"not null"`
	Author   User   `gorm:"foreignKey:AuthorID"`
	PostID   uint   `gorm:"not null"`
}

func (Comment) TableName() string { return "comments" }
