package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/palemoky/reversi/internal/config"
	"github.com/palemoky/reversi/internal/server"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	envFile := flag.String("env", ".env", "环境变量文件（不存在时忽略）")
	flag.Parse()

	if err := run(*configPath, *envFile); err != nil {
		log.Fatalf("❌ %v", err)
	}
	log.Println("服务器已关闭")
}

func run(configPath, envFile string) error {
	// .env 中的值不覆盖已有环境变量
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("加载 %s 失败: %v", envFile, err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("配置文件不可用，改用默认配置: %v", err)
		if cfg, err = config.Load(""); err != nil {
			return fmt.Errorf("配置无效: %w", err)
		}
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("创建服务器失败: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		log.Println("正在关闭服务器...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeoutDuration())
		defer cancel()
		stopped <- srv.Shutdown(shutdownCtx)
	}()

	log.Println("🎮 黑白棋服务器启动中...")
	if err := srv.Start(); err != nil {
		return fmt.Errorf("服务器启动失败: %w", err)
	}
	return <-stopped
}
