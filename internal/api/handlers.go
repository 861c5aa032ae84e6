package api

import (
	"ai-news-posts/config"
	"ai-news-posts/internal/automation"
	"ai-news-posts/internal/crawler"
	"ai-news-posts/internal/feeds"
	"ai-news-posts/internal/models"
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

// Pipeline 管理接口需要的运行器能力
type Pipeline interface {
	RunOnce(ctx context.Context) (models.RunReport, error)
	Candidates(ctx context.Context) ([]models.Article, error)
	GenerateFor(ctx context.Context, article models.Article) (models.GeneratedPost, error)
}

// FeedProber 检查订阅源是否可用
type FeedProber interface {
	Probe(ctx context.Context, feedURL string) (crawler.FeedInfo, error)
}

// Server 是API服务器结构
type Server struct {
	config   *config.Config
	router   *gin.Engine
	pipeline Pipeline
	prober   FeedProber
	registry *feeds.Registry
	logger   *log.Logger

	mu            sync.Mutex
	isProcessing  bool
	lastProcessed time.Time
	lastReport    *models.RunReport
	lastError     string
}

// NewServer 创建一个新的API服务器
func NewServer(cfg *config.Config, pipeline Pipeline, prober FeedProber, registry *feeds.Registry, logger *log.Logger) *Server {
	// 创建Gin路由
	router := gin.Default()

	// 启用CORS
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	server := &Server{
		config:   cfg,
		router:   router,
		pipeline: pipeline,
		prober:   prober,
		registry: registry,
		logger:   logger,
	}

	// 注册路由
	server.registerRoutes()

	return server
}

// registerRoutes 注册API路由
func (s *Server) registerRoutes() {
	// 健康检查
	s.router.GET("/health", s.healthHandler)

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		// 订阅源管理
		v1.GET("/feeds", s.listFeedsHandler)
		v1.POST("/feeds", s.addFeedHandler)
		v1.DELETE("/feeds", s.removeFeedHandler)
		v1.POST("/feeds/test", s.testFeedHandler)

		// 运行一次自动化任务
		v1.POST("/run", s.runHandler)

		// 获取处理状态
		v1.GET("/status", s.getStatusHandler)

		// 手动选择文章
		v1.GET("/candidates", s.candidatesHandler)
		v1.POST("/posts", s.generatePostHandler)

		// 自动化配置
		v1.GET("/config", s.getConfigHandler)
		v1.POST("/config/reset", s.resetConfigHandler)
	}
}

// Handler 返回HTTP处理器
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run 启动API服务器
func (s *Server) Run() error {
	return s.router.Run(":" + s.config.Server.Port)
}

// StartRun 在后台启动一次运行，已有运行时返回 false
func (s *Server) StartRun() bool {
	s.mu.Lock()
	if s.isProcessing {
		s.mu.Unlock()
		return false
	}
	s.isProcessing = true
	s.mu.Unlock()

	go s.runOnce()
	return true
}

func (s *Server) runOnce() {
	report, err := s.pipeline.RunOnce(context.Background())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.isProcessing = false
	s.lastProcessed = time.Now()
	if err != nil {
		s.logger.Error("自动化运行失败", "err", err)
		s.lastError = err.Error()
		return
	}
	s.lastError = ""
	s.lastReport = &report
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) listFeedsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"feeds": s.registry.List()})
}

type feedRequest struct {
	URL string `json:"url" binding:"required"`
}

func (s *Server) addFeedHandler(c *gin.Context) {
	var req feedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求参数"})
		return
	}

	if err := s.registry.Add(req.URL); err != nil {
		c.JSON(feedErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"feeds": s.registry.List()})
}

func (s *Server) removeFeedHandler(c *gin.Context) {
	feedURL := strings.TrimSpace(c.Query("url"))
	if feedURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少url参数"})
		return
	}

	if err := s.registry.Remove(feedURL); err != nil {
		c.JSON(feedErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"feeds": s.registry.List()})
}

func (s *Server) testFeedHandler(c *gin.Context) {
	var req feedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求参数"})
		return
	}
	feedURL, err := feeds.Validate(req.URL)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	info, err := s.prober.Probe(ctx, feedURL)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"ok": false, "url": feedURL, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "url": feedURL, "title": info.Title, "entries": info.Entries})
}

func (s *Server) runHandler(c *gin.Context) {
	if !s.StartRun() {
		c.JSON(http.StatusConflict, gin.H{"error": automation.ErrRunInProgress.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "处理已开始"})
}

func (s *Server) getStatusHandler(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := gin.H{
		"isProcessing": s.isProcessing,
		"lastReport":   s.lastReport,
		"lastError":    s.lastError,
	}
	if !s.lastProcessed.IsZero() {
		resp["lastProcessed"] = s.lastProcessed.Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) candidatesHandler(c *gin.Context) {
	articles, err := s.pipeline.Candidates(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"articles": articles})
}

func (s *Server) generatePostHandler(c *gin.Context) {
	var req struct {
		Title   string `json:"title" binding:"required"`
		Link    string `json:"link" binding:"required"`
		Summary string `json:"summary"`
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求参数"})
		return
	}

	post, err := s.pipeline.GenerateFor(c.Request.Context(), models.Article{
		Title:   req.Title,
		Link:    req.Link,
		Summary: req.Summary,
		Content: req.Content,
	})
	if errors.Is(err, automation.ErrRunInProgress) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (s *Server) getConfigHandler(c *gin.Context) {
	cfg, err := config.LoadAutomation(s.config.Paths.AutomationConfig)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (s *Server) resetConfigHandler(c *gin.Context) {
	cfg := config.DefaultAutomation()
	if err := config.SaveAutomation(s.config.Paths.AutomationConfig, cfg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.logger.Info("自动化配置已重置为默认值", "path", s.config.Paths.AutomationConfig)
	c.JSON(http.StatusOK, cfg)
}

func feedErrorStatus(err error) int {
	switch {
	case errors.Is(err, feeds.ErrInvalidURL):
		return http.StatusBadRequest
	case errors.Is(err, feeds.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, feeds.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
