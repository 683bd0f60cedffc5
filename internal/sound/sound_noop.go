//go:build ci

package sound

// Bank ci 构建没有音频设备，所有操作为空
type Bank struct{}

func NewBank(string) *Bank { return &Bank{} }

func (*Bank) Open() error { return nil }
func (*Bank) Play(string) {}
func (*Bank) Len() int    { return 0 }
func (*Bank) Close()      {}
