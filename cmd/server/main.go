package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"k8s.io/klog/v2"

	"github.com/agenticrag/backend/config"
	"github.com/agenticrag/backend/internal/eventbus"
	"github.com/agenticrag/backend/internal/handler"
	"github.com/agenticrag/backend/internal/pkg/agents"
	"github.com/agenticrag/backend/internal/pkg/llm"
	"github.com/agenticrag/backend/internal/router"
	"github.com/agenticrag/backend/internal/service/crew"
	"github.com/agenticrag/backend/internal/subscriber"
)

func main() {
	// .env 不存在时忽略
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to config.yaml (overrides CONFIG_PATH)")

	// 初始化 klog
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	klog.V(6).Info("服务启动中...")

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
	} else {
		cfg, err = config.GetConfig()
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	// 加载 Agent 和任务定义
	manager, err := agents.NewManager(&agents.Config{Dir: cfg.Crew.Dir})
	if err != nil {
		log.Fatalf("Failed to load crew definitions: %v", err)
	}

	provider := llm.NewProvider(cfg.LLM)
	klog.V(6).Infof("LLM 配置: apiURL=%s, model=%s, timeout=%s", cfg.LLM.APIURL, provider.DefaultModel(), cfg.LLM.Timeout)

	bus := eventbus.NewRunEventBus()
	stats := subscriber.NewRunEventSubscriber()
	stats.Register(bus)

	crewService, err := crew.NewService(ctx, manager, crew.ChatAgentFactory(provider), crew.Options{
		ResearchTask: cfg.Crew.ResearchTask,
		WriteTask:    cfg.Crew.WriteTask,
		Bus:          bus,
		Callbacks:    crew.NewLoggingCallbacks(),
	})
	if err != nil {
		log.Fatalf("Failed to build crew: %v", err)
	}

	predictHandler := handler.NewPredictHandler(crewService)
	r := router.Setup(cfg, predictHandler)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Print(startupBanner(cfg, provider.DefaultModel()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	klog.V(6).Info("服务关闭中...")
	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		klog.Errorf("服务关闭失败: %v", err)
	}

	s := stats.Stats()
	klog.V(6).Infof("服务已关闭: completed=%d, failed=%d", s.Completed, s.Failed)
}

// startupBanner 启动日志，默认日志级别下也会输出
func startupBanner(cfg *config.Config, model string) string {
	return fmt.Sprintf("Server starting on %s (model %s at %s)...", cfg.Addr(), model, cfg.LLM.APIURL)
}
