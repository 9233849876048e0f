package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"mingle_chat_server/internal/config"
	"mingle_chat_server/internal/dao/mongodb"
	myredis "mingle_chat_server/internal/dao/redis"
	"mingle_chat_server/internal/handler"
	"mingle_chat_server/internal/httpserver"
	"mingle_chat_server/internal/infrastructure/filestore"
	"mingle_chat_server/internal/infrastructure/logger"
	"mingle_chat_server/internal/infrastructure/mq"
	"mingle_chat_server/internal/service"
	"mingle_chat_server/pkg/util/jwt"

	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	conf := config.GetConfig()

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, "dev"); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	zap.L().Info("日志初始化成功")

	// 3. 初始化 MongoDB
	repos, err := mongodb.Init()
	if err != nil {
		zap.L().Fatal("MongoDB 初始化失败", zap.Error(err))
	}
	defer mongodb.Close()
	zap.L().Info("MongoDB 初始化成功")

	// 4. 初始化 Redis
	myredis.Init()
	defer myredis.Close()
	zap.L().Info("Redis 初始化成功")

	// 5. 初始化 JWT
	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.AccessTokenExpiry, conf.JWTConfig.RefreshTokenExpiry)
	zap.L().Info("JWT 初始化成功")

	// 6. 初始化媒体文件存储
	store, err := filestore.NewStore(conf.StaticSrcConfig.UploadPath)
	if err != nil {
		zap.L().Fatal("文件存储初始化失败", zap.Error(err))
	}
	zap.L().Info("文件存储初始化成功")

	// 7. 初始化通知队列（按配置选择 channel 或 kafka 后端）
	var queue mq.NotificationQueue
	if conf.KafkaConfig.MessageMode == "kafka" {
		queue, err = mq.NewKafkaQueue()
		if err != nil {
			zap.L().Fatal("Kafka 通知队列初始化失败", zap.Error(err))
		}
	} else {
		queue = mq.NewChannelQueue()
	}
	zap.L().Info("通知队列初始化成功", zap.String("mode", conf.KafkaConfig.MessageMode))

	// 8. 初始化 Service 层 (依赖注入)
	service.InitServices(repos, myredis.GetCacheService(), queue, store)
	zap.L().Info("Service 层初始化成功")

	// 9. 启动通知分发器
	dispatcher := mq.NewDispatcher(queue, repos.Notification)
	dispatcher.Start()
	defer dispatcher.Stop()

	// 10. 初始化参数校验翻译器
	if err := handler.InitTrans("zh"); err != nil {
		zap.L().Fatal("翻译器初始化失败", zap.Error(err))
	}

	// 11. 初始化 HTTP 服务器
	handlers := handler.NewHandlers(service.Svc)
	engine := httpserver.Init(handlers, service.Svc)
	zap.L().Info("HTTP 服务器初始化成功")

	// 12. 启动服务
	host := conf.MainConfig.Host
	port := conf.MainConfig.Port
	go func() {
		if err := engine.Run(fmt.Sprintf("%s:%d", host, port)); err != nil {
			zap.L().Fatal("server running fault", zap.Error(err))
		}
	}()
	zap.L().Info("服务启动", zap.String("addr", fmt.Sprintf("%s:%d", host, port)))

	// 设置信号监听，等待退出
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zap.L().Info("关闭服务器...")
	zap.L().Info("服务器已关闭")
}
