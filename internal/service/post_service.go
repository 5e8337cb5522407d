package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/d60-Lab/gin-posts/internal/model"
	"github.com/d60-Lab/gin-posts/internal/repository"
	"github.com/d60-Lab/gin-posts/pkg/logger"
)

var (
	ErrPostNotFound = errors.New("post not found")
	ErrInvalidPost  = errors.New("title and body must not be empty")
)

// PostService 帖子服务
type PostService interface {
	List(ctx context.Context) ([]*model.Post, error)
	Create(ctx context.Context, title, body string) (*model.Post, error)
	Delete(ctx context.Context, id int64) error
}

type postService struct {
	repo repository.PostRepository
}

func NewPostService(repo repository.PostRepository) PostService {
	return &postService{repo: repo}
}

func (s *postService) List(ctx context.Context) ([]*model.Post, error) {
	return s.repo.List(ctx)
}

func (s *postService) Create(ctx context.Context, title, body string) (*model.Post, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(body) == "" {
		return nil, ErrInvalidPost
	}
	post, err := s.repo.Create(ctx, title, body)
	if err != nil {
		return nil, err
	}
	logger.Debug("post created", zap.Int64("id", post.ID))
	return post, nil
}

// Delete 没有匹配行时返回 ErrPostNotFound
func (s *postService) Delete(ctx context.Context, id int64) error {
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrPostNotFound
	}
	logger.Debug("post deleted", zap.Int64("id", id))
	return nil
}
