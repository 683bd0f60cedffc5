package main

import (
	"flag"
	"fmt"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/reversi/internal/logger"
	"github.com/palemoky/reversi/internal/sound"
	"github.com/palemoky/reversi/internal/transport"
	"github.com/palemoky/reversi/internal/ui"
)

func main() {
	serverAddr := flag.String("server", "localhost:1780", "服务器地址，为空时只能本地对局")
	soundDir := flag.String("sounds", sound.DefaultDir, "音效目录")
	mute := flag.Bool("mute", false, "关闭音效")
	flag.Parse()

	// 界面占用终端，日志写入文件
	if err := logger.Init(); err != nil {
		log.Printf("初始化日志失败: %v", err)
	}
	defer logger.Close()

	var player sound.Player
	if !*mute {
		bank := sound.NewBank(*soundDir)
		if err := bank.Open(); err != nil {
			logger.LogError("初始化音效失败: %v", err)
		} else {
			defer bank.Close()
			player = bank
		}
	}

	var client *transport.Client
	if *serverAddr != "" {
		client = transport.NewClient(fmt.Sprintf("ws://%s/ws", *serverAddr))
		client.StartHeartbeat()
	}

	model := ui.NewModel(client, player)

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("启动客户端时出错: %v", err)
	}
}
