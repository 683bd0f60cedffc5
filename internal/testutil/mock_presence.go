//go:build !production

package testutil

import (
	"github.com/stretchr/testify/mock"

	"github.com/palemoky/reversi/internal/types"
)

// MockPresence 可设定在线人数的 types.Presence
type MockPresence struct {
	mock.Mock
}

var _ types.Presence = (*MockPresence)(nil)

func (m *MockPresence) OnlineCount() int {
	return m.Called().Int(0)
}
