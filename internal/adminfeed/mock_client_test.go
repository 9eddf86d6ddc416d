package adminfeed_test

import (
	"attorneyhub/backend/internal/adminfeed"
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
)

type MockClient struct {
	id          string
	userID      string
	RecvChannel chan adminfeed.Message
	closed      chan struct{}
	once        sync.Once
}

func newMockClient(id string, buffer int) *MockClient {
	return &MockClient{
		id:          id,
		userID:      "admin-" + id,
		RecvChannel: make(chan adminfeed.Message, buffer),
		closed:      make(chan struct{}),
	}
}

func (c *MockClient) GetID() string                            { return c.id }
func (c *MockClient) GetUserID() string                        { return c.userID }
func (c *MockClient) GetSendChannel() chan<- adminfeed.Message { return c.RecvChannel }

func (c *MockClient) Run() {
	// Not needed for testing
}

func (c *MockClient) Close() {
	c.once.Do(func() { close(c.closed) })
}

type MockRelay struct {
	mock.Mock
}

func (m *MockRelay) Publish(ctx context.Context, channel string, payload []byte) error {
	args := m.Called(ctx, channel, payload)
	return args.Error(0)
}

func (m *MockRelay) Subscribe(ctx context.Context, channel string) *redis.PubSub {
	args := m.Called(ctx, channel)
	ps, _ := args.Get(0).(*redis.PubSub)
	return ps
}
