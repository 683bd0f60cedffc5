//go:build !production

package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/reversi/internal/game/room"
	"github.com/palemoky/reversi/internal/server/storage"
)

// MockStore 实现 storage.Backend 的 mock
type MockStore struct {
	mock.Mock
}

var _ storage.Backend = (*MockStore)(nil)

func (m *MockStore) ReadRoom(ctx context.Context, id string) (*room.Record, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*room.Record), args.Error(1)
}

func (m *MockStore) WriteRoom(ctx context.Context, id string, rec *room.Record) error {
	args := m.Called(ctx, id, rec)
	return args.Error(0)
}

func (m *MockStore) Subscribe(ctx context.Context, id string) (<-chan *room.Record, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan *room.Record), args.Error(1)
}

func (m *MockStore) SaveMember(ctx context.Context, data *storage.MemberData) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}

func (m *MockStore) LoadMember(ctx context.Context, identity string) (*storage.MemberData, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.MemberData), args.Error(1)
}
