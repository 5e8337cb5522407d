package handler

import (
	"github.com/d60-Lab/gin-posts/internal/repository"
	"github.com/d60-Lab/gin-posts/internal/service"
)

// Handler 聚合各 HTTP 处理器的依赖
type Handler struct {
	postService service.PostService
	health      repository.PostRepository
}

func NewHandler(postService service.PostService, health repository.PostRepository) *Handler {
	return &Handler{postService: postService, health: health}
}
