package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/d60-Lab/gin-posts/internal/service"
	"github.com/d60-Lab/gin-posts/pkg/response"
)

const msgPostNotFound = "Post not found"

type createPostRequest struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body" binding:"required"`
}

// ListPosts 查询全部帖子
// @Summary 帖子列表
// @Tags 帖子
// @Produce json
// @Success 200 {array} model.Post
// @Failure 500 {string} string "存储错误"
// @Router /posts [get]
func (h *Handler) ListPosts(c *gin.Context) {
	posts, err := h.postService.List(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, posts)
}

// CreatePost 创建帖子；响应不返回新 id
// @Summary 创建帖子
// @Tags 帖子
// @Accept json
// @Param request body createPostRequest true "帖子内容"
// @Success 201
// @Failure 400 {string} string "请求体错误"
// @Failure 500 {string} string "存储错误"
// @Router /posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindingMessage(err))
		return
	}
	if _, err := h.postService.Create(c.Request.Context(), req.Title, req.Body); err != nil {
		if errors.Is(err, service.ErrInvalidPost) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c)
}

// DeletePost 按 id 删除帖子
// @Summary 删除帖子
// @Tags 帖子
// @Param id path int true "帖子ID"
// @Success 200
// @Failure 400 {string} string "id 非整数"
// @Failure 404 {string} string "Post not found"
// @Failure 500 {string} string "存储错误"
// @Router /posts/{id} [delete]
func (h *Handler) DeletePost(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, fmt.Sprintf("invalid post id %q", c.Param("id")))
		return
	}
	if err := h.postService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			response.NotFound(c, msgPostNotFound)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c)
}

// Health 存活检查（经过 Guard 的 ping）
// @Summary 健康检查
// @Tags 运维
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {string} string "数据库不可用"
// @Router /healthz [get]
func (h *Handler) Health(c *gin.Context) {
	if err := h.health.Ping(c.Request.Context()); err != nil {
		response.ServiceUnavailable(c, err)
		return
	}
	response.Success(c, gin.H{"status": "ok"})
}

// bindingMessage 把 validator 的字段错误转成简短文本
func bindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request body: " + err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s is %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}
