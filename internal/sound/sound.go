//go:build !ci

package sound

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
)

// 所有音效统一转为 44.1kHz 立体声
var clipFormat = beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 4}

type decodeFunc func(f *os.File) (beep.StreamSeekCloser, beep.Format, error)

var decoders = map[string]decodeFunc{
	".mp3": func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return mp3.Decode(f) },
	".wav": func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return wav.Decode(f) },
}

// Bank 预解码到内存的音效集合
type Bank struct {
	dir   string
	clips map[string]*beep.Buffer
	live  bool // 扬声器已初始化
}

// NewBank 创建音效集合，dir 为空时使用 DefaultDir
func NewBank(dir string) *Bank {
	if dir == "" {
		dir = DefaultDir
	}
	return &Bank{dir: dir, clips: make(map[string]*beep.Buffer)}
}

// Open 初始化扬声器并加载目录下的音效
func (b *Bank) Open() error {
	// 100ms 缓冲，落子音效不能有明显延迟
	if err := speaker.Init(clipFormat.SampleRate, clipFormat.SampleRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	b.live = true
	return b.load()
}

// load 以文件名（不含扩展名）为音效名加载 mp3/wav，单个文件失败只记日志。
// 目录不存在时静音运行
func (b *Bank) load() error {
	entries, err := os.ReadDir(b.dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read sound dir: %w", err)
	}

	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		decode, ok := decoders[ext]
		if e.IsDir() || !ok {
			continue
		}

		clip, err := decodeClip(filepath.Join(b.dir, e.Name()), decode)
		if err != nil {
			log.Printf("音效 %s 加载失败: %v", e.Name(), err)
			continue
		}
		b.clips[strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))] = clip
	}
	return nil
}

func decodeClip(path string, decode decodeFunc) (*beep.Buffer, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stream, format, err := decode(f)
	if err != nil {
		return nil, err
	}
	defer func() { _ = stream.Close() }()

	var src beep.Streamer = stream
	if format.SampleRate != clipFormat.SampleRate {
		src = beep.Resample(4, format.SampleRate, clipFormat.SampleRate, stream)
	}

	clip := beep.NewBuffer(clipFormat)
	clip.Append(src)
	return clip, nil
}

// Play 播放音效，未加载的名称忽略
func (b *Bank) Play(name string) {
	clip, ok := b.clips[name]
	if !b.live || !ok {
		return
	}
	speaker.Play(clip.Streamer(0, clip.Len()))
}

// Len 已加载的音效数量
func (b *Bank) Len() int {
	return len(b.clips)
}

// Close 停止正在播放的音效
func (b *Bank) Close() {
	if b.live {
		speaker.Clear()
	}
	b.live = false
}
