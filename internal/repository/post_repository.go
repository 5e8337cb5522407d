package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/d60-Lab/gin-posts/internal/model"
	"github.com/d60-Lab/gin-posts/pkg/database"
)

// StorageError 读写语句在运行期失败（区别于启动期的建表失败）。
// Error() 保持底层驱动的原始错误文本。
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return e.Err.Error() }
func (e *StorageError) Unwrap() error { return e.Err }

// IsStorageError 判断 err 链中是否有 StorageError
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// PostRepository 帖子仓储接口；所有调用都经过同一个 Guard 串行执行
type PostRepository interface {
	// InitSchema 建表（幂等）
	InitSchema(ctx context.Context) error

	// List 返回全部帖子（按 id 升序），没有数据时返回空切片
	List(ctx context.Context) ([]*model.Post, error)

	// Create 插入帖子并返回存储分配的 id
	Create(ctx context.Context, title, body string) (*model.Post, error)

	// Delete 按 id 删除，返回受影响行数（0 或 1）
	Delete(ctx context.Context, id int64) (int64, error)

	// Ping 在 Guard 内检查连接可用
	Ping(ctx context.Context) error

	// Close 关闭数据库连接
	Close() error
}

type postRepository struct {
	db    *gorm.DB
	guard *database.Guard
}

func NewPostRepository(db *gorm.DB, guard *database.Guard) PostRepository {
	if guard == nil {
		guard = database.NewGuard()
	}
	return &postRepository{db: db, guard: guard}
}

func (r *postRepository) InitSchema(ctx context.Context) error {
	return r.guard.Do(ctx, "init_schema", func(ctx context.Context) error {
		if err := r.db.WithContext(ctx).AutoMigrate(&model.Post{}); err != nil {
			return fmt.Errorf("failed to migrate posts table: %w", err)
		}
		return nil
	})
}

func (r *postRepository) List(ctx context.Context) ([]*model.Post, error) {
	posts := make([]*model.Post, 0)
	err := r.guard.Do(ctx, "list", func(ctx context.Context) error {
		return r.db.WithContext(ctx).Order("id ASC").Find(&posts).Error
	})
	if err != nil {
		return nil, storageErr("list posts", err)
	}
	return posts, nil
}

func (r *postRepository) Create(ctx context.Context, title, body string) (*model.Post, error) {
	post := &model.Post{Title: title, Body: body}
	err := r.guard.Do(ctx, "create", func(ctx context.Context) error {
		return r.db.WithContext(ctx).Create(post).Error
	})
	if err != nil {
		return nil, storageErr("insert post", err)
	}
	return post, nil
}

func (r *postRepository) Delete(ctx context.Context, id int64) (int64, error) {
	var affected int64
	err := r.guard.Do(ctx, "delete", func(ctx context.Context) error {
		res := r.db.WithContext(ctx).Delete(&model.Post{}, id)
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, storageErr("delete post", err)
	}
	return affected, nil
}

func (r *postRepository) Ping(ctx context.Context) error {
	return r.guard.Do(ctx, "ping", func(ctx context.Context) error {
		sqlDB, err := r.db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
}

func (r *postRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
