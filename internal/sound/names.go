// Package sound 客户端音效，ci 构建下为空实现
package sound

// 音效名称，对应 assets/sounds 下同名的 mp3 或 wav 文件
const (
	Place    = "place"
	Pass     = "pass"
	Invalid  = "invalid"
	GameOver = "gameover"
)

// DefaultDir 默认音效目录
const DefaultDir = "assets/sounds"

// Player 播放音效
type Player interface {
	Play(name string)
}
