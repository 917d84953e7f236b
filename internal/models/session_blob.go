package models

import "time"

// SessionBlob 会话级快照（购物车、结帐草稿各一份）
type SessionBlob struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                                         // 主键
	SessionID string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_session_blob_key" json:"session_id"` // 会话ID
	BlobKey   string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_session_blob_key" json:"blob_key"`   // 快照键
	Payload   string    `gorm:"type:text;not null" json:"payload"`                                            // 序列化内容
	CreatedAt time.Time `gorm:"index" json:"created_at"`                                                      // 创建时间
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`                                                      // 更新时间
}

// TableName 指定表名
func (SessionBlob) TableName() string {
	return "session_blobs"
}
