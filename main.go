package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/MuhammedFaaik/f66/internal/core"
	"github.com/MuhammedFaaik/f66/internal/dao"
	"github.com/MuhammedFaaik/f66/internal/handler"
	"github.com/MuhammedFaaik/f66/internal/middleware"
	"github.com/MuhammedFaaik/f66/internal/mq"
	"github.com/MuhammedFaaik/f66/internal/physics"
	"github.com/MuhammedFaaik/f66/internal/service"
	"github.com/MuhammedFaaik/f66/pkg/config"

	"github.com/gin-gonic/gin"
)

func main() {
	config.InitConfig()

	mysqlCfg := config.AppConfig.MySQL
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		mysqlCfg.Username, mysqlCfg.Password, mysqlCfg.Host, mysqlCfg.Port, mysqlCfg.Database)
	dao.InitMySQL(dsn)
	dao.InitRedis()

	mq.InitMQ()
	go mq.StartConsumer()

	manager := core.NewManager(tuningFromConfig())
	manager.OnResult = func(rec core.FinalRecord) {
		go mq.PublishMatchResult(rec)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := dao.RemoveRoom(ctx, rec.MatchID); err != nil {
			log.Printf("room directory cleanup for %s: %v", rec.MatchID, err)
		}
	}
	go manager.StartCleanupTask(30 * time.Second)

	if config.AppConfig.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(middleware.Cors())

	auth := r.Group("/auth")
	{
		auth.POST("/register", handler.HandleRegister)
		auth.POST("/login", handler.HandleLogin)
		auth.GET("/profile", middleware.AuthMiddleware(), handler.HandleProfile)
	}

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware())
	{
		user := api.Group("/user")
		{
			user.GET("/history", handler.HandleGetHistory)
		}

		match := api.Group("/match")
		{
			match.POST("/create", handler.HandleCreateMatch(manager))
			match.POST("/join", handler.HandleJoinMatch(manager))
			match.GET("/rooms", handler.HandleListMatches)
			match.POST("/start", handler.HandleStartMatch(manager))
		}
	}

	r.GET("/ws", core.HandleWebSocket(manager, func(token string) (int64, error) {
		uid, _, err := service.ParseToken(token)
		return uid, err
	}))

	addr := fmt.Sprintf(":%d", config.AppConfig.Server.Port)
	fmt.Printf("F66 match server running on %s\n", addr)
	r.Run(addr)
}

func tuningFromConfig() core.Tuning {
	g := config.AppConfig.Game
	return core.Tuning{
		TickRate:         g.TickRate,
		SnapshotEvery:    int64(g.SnapshotEvery),
		MaxSpeed:         g.MaxSpeed,
		MaxKickForce:     g.MaxKickForce,
		KickRange:        g.KickRange,
		PossessionRadius: g.PossessionRadius,
		Friction:         g.Friction,
		Field: physics.Field{
			HalfWidth:     g.FieldHalfWidth,
			HalfLength:    g.FieldHalfLength,
			GoalHalfWidth: g.GoalHalfWidth,
			GoalDepth:     g.GoalDepth,
		},
		IdleTimeout:    time.Duration(g.IdleTimeout) * time.Second,
		InputQueueSize: g.InputQueueSize,
		SendQueueSize:  g.SendQueueSize,
	}
}
