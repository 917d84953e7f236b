package repository

import (
	"context"
	"errors"
	"time"

	"github.com/neighborwang/roastery/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BlobRepository 会话快照存取接口
type BlobRepository interface {
	Get(ctx context.Context, sessionID, key string) ([]byte, bool, error)
	Put(ctx context.Context, sessionID, key string, payload []byte) error
	Delete(ctx context.Context, sessionID, key string) error
}

// GormBlobRepository GORM 实现
type GormBlobRepository struct {
	db *gorm.DB
}

// NewBlobRepository 创建会话快照仓库
func NewBlobRepository(db *gorm.DB) *GormBlobRepository {
	return &GormBlobRepository{db: db}
}

// Get 读取快照
func (r *GormBlobRepository) Get(ctx context.Context, sessionID, key string) ([]byte, bool, error) {
	var blob models.SessionBlob
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND blob_key = ?", sessionID, key).
		First(&blob).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(blob.Payload), true, nil
}

// Put 写入或覆盖快照
func (r *GormBlobRepository) Put(ctx context.Context, sessionID, key string, payload []byte) error {
	now := time.Now()
	blob := &models.SessionBlob{
		SessionID: sessionID,
		BlobKey:   key,
		Payload:   string(payload),
		CreatedAt: now,
		UpdatedAt: now,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "blob_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(blob).Error
}

// Delete 删除快照
func (r *GormBlobRepository) Delete(ctx context.Context, sessionID, key string) error {
	return r.db.WithContext(ctx).
		Where("session_id = ? AND blob_key = ?", sessionID, key).
		Delete(&models.SessionBlob{}).Error
}

// PurgeBefore 清理长期未更新的快照，返回删除行数
func (r *GormBlobRepository) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("updated_at < ?", cutoff).
		Delete(&models.SessionBlob{})
	return result.RowsAffected, result.Error
}
