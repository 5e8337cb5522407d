package model

// Post 唯一的资源；ID 由存储分配（SQLite AUTOINCREMENT，删除后不复用）
type Post struct {
	ID    int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Title string `json:"title" gorm:"type:text;not null"`
	Body  string `json:"body" gorm:"type:text;not null"`
}

func (Post) TableName() string { return "posts" }
