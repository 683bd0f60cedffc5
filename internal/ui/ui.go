// Package ui provides the main entry point for the UI.
package ui

import (
	"github.com/palemoky/reversi/internal/sound"
	"github.com/palemoky/reversi/internal/transport"
	"github.com/palemoky/reversi/internal/ui/input"
	"github.com/palemoky/reversi/internal/ui/model"
	"github.com/palemoky/reversi/internal/ui/view"
)

// NewModel 创建终端客户端。client 为 nil 时只提供本地对局
func NewModel(client *transport.Client, player sound.Player) *model.AppModel {
	var remote model.Remote
	if client != nil {
		remote = client
	}
	m := model.NewAppModel(remote, player)
	m.SetViewRenderer(view.CreateViewRenderer())
	m.SetKeyHandler(input.HandleKeyPress)

	if client != nil {
		client.OnReconnecting = func(attempt, maxTries int) {
			m.Notify(model.ReconnectingMsg{Attempt: attempt, MaxTries: maxTries})
		}
		client.OnReconnect = func() {
			m.Notify(model.ReconnectSuccessMsg{})
		}
		client.OnError = func(err error) {
			m.Notify(model.ServerErrorMsg{Err: err})
		}
		client.OnClose = func() {
			m.Notify(model.ConnectionClosedMsg{})
		}
	}
	return m
}
