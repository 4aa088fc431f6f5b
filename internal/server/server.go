package server

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/iceymoss/weibo-trend/internal/conf"
	"github.com/iceymoss/weibo-trend/internal/engine"
	"github.com/iceymoss/weibo-trend/internal/repo"
	"github.com/iceymoss/weibo-trend/internal/tasks"
	"github.com/iceymoss/weibo-trend/pkg/constants"
	"github.com/iceymoss/weibo-trend/pkg/db/objects"
	"github.com/iceymoss/weibo-trend/pkg/errors"
	"github.com/iceymoss/weibo-trend/pkg/logger"
	"github.com/iceymoss/weibo-trend/pkg/xerr"
)

type Server struct {
	engine    *gin.Engine
	scheduler *engine.Scheduler
	live      *repo.Store
}

// NewServer 注册调度任务并挂载看板只读接口，live 只读不写
func NewServer(cfg *conf.Config, scheduler *engine.Scheduler, live *repo.Store) *Server {
	tasks.ApplyAutoJobs(scheduler)

	// 注册所有配置型任务
	for _, job := range cfg.Jobs {
		if !job.Enable {
			continue
		}
		err := scheduler.AddJob(job.Cron, job.Name, job.Name, job.Params, string(constants.TaskTypeYAML))
		if err != nil {
			logger.Warn("failed to schedule job", zap.String("job", job.Name), zap.Error(err))
		} else {
			logger.Info("job scheduled", zap.String("job", job.Name), zap.String("cron", job.Cron))
		}
	}

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	s := &Server{scheduler: scheduler, live: live}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")
	{
		api.GET("/topics", s.listTopics)
		api.GET("/topics/:uuid", s.getTopic)
		api.GET("/keywords", s.keywords)
		api.GET("/runs", s.runs)

		api.GET("/tasks", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"data": s.scheduler.Stats.GetAll()})
		})

		api.POST("/tasks/:name/run", func(c *gin.Context) {
			name := c.Param("name")
			if err := s.scheduler.ManualRun(name); err != nil {
				fail(c, errors.Wrap(xerr.ErrTaskNotFound, "task not found: "+name, err))
				return
			}
			c.JSON(http.StatusOK, gin.H{"message": "Triggered"})
		})
	}

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			fail(c, errors.New(xerr.ErrNotFound, "API not found"))
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"msg": "not found"})
	})
	return router
}

// Handler 供测试直接调用
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Run(addr string) error {
	// 启动任务调度器
	s.scheduler.Start()

	// 启动 web server
	return s.engine.Run(addr)
}

func (s *Server) listTopics(c *gin.Context) {
	limit, err := queryLimit(c, 50, 500)
	if err != nil {
		fail(c, err)
		return
	}
	stage := objects.StageUnset
	if name := c.Query("stage"); name != "" {
		var ok bool
		if stage, ok = objects.ParseStage(name); !ok {
			fail(c, errors.New(xerr.ErrInvalidInput, "unknown stage: "+name))
			return
		}
	}
	list, err := s.live.Topics.Hottest(c.Request.Context(), stage, limit)
	if err != nil {
		fail(c, errors.Wrap(xerr.DB_ERROR, "load topics failed", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (s *Server) getTopic(c *gin.Context) {
	ctx := c.Request.Context()
	topic, err := s.live.Topics.Get(ctx, c.Param("uuid"))
	if repo.IsNotFound(err) {
		fail(c, errors.New(xerr.ErrResourceNotFound, "topic not found"))
		return
	}
	if err != nil {
		fail(c, errors.Wrap(xerr.DB_ERROR, "load topic failed", err))
		return
	}
	posts, err := s.live.Posts.FindByIDs(ctx, topic.PostRefs)
	if err != nil {
		fail(c, errors.Wrap(xerr.DB_ERROR, "load posts failed", err))
		return
	}
	if posts == nil {
		posts = []objects.Post{}
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"topic": topic, "posts": posts}})
}

type keywordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// keywords 全库博文关键词词频，用于首页词云
func (s *Server) keywords(c *gin.Context) {
	limit, err := queryLimit(c, 100, 1000)
	if err != nil {
		fail(c, err)
		return
	}
	freq, err := s.live.Posts.KeywordFrequencies(c.Request.Context())
	if err != nil {
		fail(c, errors.Wrap(xerr.DB_ERROR, "load keywords failed", err))
		return
	}
	list := make([]keywordCount, 0, len(freq))
	for w, n := range freq {
		list = append(list, keywordCount{Word: w, Count: n})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Count != list[j].Count {
			return list[i].Count > list[j].Count
		}
		return list[i].Word < list[j].Word
	})
	if len(list) > limit {
		list = list[:limit]
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (s *Server) runs(c *gin.Context) {
	limit, err := queryLimit(c, 20, 200)
	if err != nil {
		fail(c, err)
		return
	}
	list, err := s.live.Runs.Recent(c.Request.Context(), limit)
	if err != nil {
		fail(c, errors.Wrap(xerr.DB_ERROR, "load runs failed", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func queryLimit(c *gin.Context, def, upper int) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, errors.New(xerr.REQUEST_PARAM_ERROR, "invalid limit: "+raw)
	}
	return min(n, upper), nil
}

func fail(c *gin.Context, err error) {
	cm := errors.From(err)
	status := cm.HTTPStatus()
	if status >= http.StatusInternalServerError {
		logger.Error("api error", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"code": cm.Code, "msg": cm.Msg})
}
