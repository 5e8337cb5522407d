package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/gin-posts/internal/model"
	"github.com/d60-Lab/gin-posts/internal/repository"
)

type mockPostRepository struct {
	mock.Mock
}

func (m *mockPostRepository) InitSchema(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockPostRepository) List(ctx context.Context) ([]*model.Post, error) {
	args := m.Called(ctx)
	posts, _ := args.Get(0).([]*model.Post)
	return posts, args.Error(1)
}

func (m *mockPostRepository) Create(ctx context.Context, title, body string) (*model.Post, error) {
	args := m.Called(ctx, title, body)
	post, _ := args.Get(0).(*model.Post)
	return post, args.Error(1)
}

func (m *mockPostRepository) Delete(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockPostRepository) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockPostRepository) Close() error {
	return m.Called().Error(0)
}

var _ repository.PostRepository = (*mockPostRepository)(nil)

func TestPostServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("ok", func(t *testing.T) {
		repo := new(mockPostRepository)
		repo.On("Create", ctx, "A", "B").Return(&model.Post{ID: 1, Title: "A", Body: "B"}, nil)

		post, err := NewPostService(repo).Create(ctx, "A", "B")
		require.NoError(t, err)
		assert.Equal(t, int64(1), post.ID)
		repo.AssertExpectations(t)
	})

	t.Run("empty fields rejected before storage", func(t *testing.T) {
		repo := new(mockPostRepository)
		svc := NewPostService(repo)

		_, err := svc.Create(ctx, "", "B")
		require.ErrorIs(t, err, ErrInvalidPost)
		_, err = svc.Create(ctx, "A", "   ")
		require.ErrorIs(t, err, ErrInvalidPost)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("storage error propagates", func(t *testing.T) {
		repo := new(mockPostRepository)
		storageErr := &repository.StorageError{Op: "insert post", Err: errors.New("disk I/O error")}
		repo.On("Create", ctx, "A", "B").Return(nil, storageErr)

		_, err := NewPostService(repo).Create(ctx, "A", "B")
		require.True(t, repository.IsStorageError(err))
		assert.EqualError(t, err, "disk I/O error")
	})
}

func TestPostServiceDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("removed", func(t *testing.T) {
		repo := new(mockPostRepository)
		repo.On("Delete", ctx, int64(3)).Return(int64(1), nil)
		require.NoError(t, NewPostService(repo).Delete(ctx, 3))
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(mockPostRepository)
		repo.On("Delete", ctx, int64(3)).Return(int64(0), nil)
		err := NewPostService(repo).Delete(ctx, 3)
		require.ErrorIs(t, err, ErrPostNotFound)
		assert.Equal(t, "post not found", err.Error())
	})

	t.Run("storage error", func(t *testing.T) {
		repo := new(mockPostRepository)
		storageErr := &repository.StorageError{Op: "delete post", Err: errors.New("database is locked")}
		repo.On("Delete", ctx, int64(3)).Return(int64(0), storageErr)
		err := NewPostService(repo).Delete(ctx, 3)
		require.NotErrorIs(t, err, ErrPostNotFound)
		assert.EqualError(t, err, "database is locked")
	})
}

func TestPostServiceList(t *testing.T) {
	ctx := context.Background()
	repo := new(mockPostRepository)
	repo.On("List", ctx).Return([]*model.Post{{ID: 1, Title: "A", Body: "B"}}, nil)

	posts, err := NewPostService(repo).List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "A", posts[0].Title)
}
