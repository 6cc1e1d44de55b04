package order

import (
	"context"
	"sync"

	"github.com/appetiteclub/apt/events"
)

// MockFeed is a mock implementation of Feed for testing. It records every
// submitted write and hands the test the onSnapshot callback so it can play
// the role of the remote push source.
type MockFeed struct {
	mu            sync.Mutex
	SubscribeFunc func(ctx context.Context, onSnapshot func([]Order)) (Unsubscribe, error)
	CreateFunc    func(ctx context.Context, o Order) error
	UpdateFunc    func(ctx context.Context, id string, patch Patch) error

	onSnapshot       func([]Order)
	CreateCalls      []Order
	UpdateCalls      []UpdateCall
	UnsubscribeCalls int
}

type UpdateCall struct {
	ID    string
	Patch Patch
}

func NewMockFeed() *MockFeed {
	return &MockFeed{}
}

func (m *MockFeed) Subscribe(ctx context.Context, onSnapshot func([]Order)) (Unsubscribe, error) {
	if m.SubscribeFunc != nil {
		return m.SubscribeFunc(ctx, onSnapshot)
	}
	m.mu.Lock()
	m.onSnapshot = onSnapshot
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		m.UnsubscribeCalls++
		m.mu.Unlock()
	}, nil
}

func (m *MockFeed) Create(ctx context.Context, o Order) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, o)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls = append(m.CreateCalls, o)
	return nil
}

func (m *MockFeed) Update(ctx context.Context, id string, patch Patch) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, patch)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCalls = append(m.UpdateCalls, UpdateCall{ID: id, Patch: patch})
	return nil
}

// Push simulates a remote delivery to whatever subscriber is attached.
func (m *MockFeed) Push(orders []Order) {
	m.mu.Lock()
	onSnapshot := m.onSnapshot
	m.mu.Unlock()
	if onSnapshot != nil {
		onSnapshot(orders)
	}
}

func (m *MockFeed) Calls() (creates []Order, updates []UpdateCall) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Order(nil), m.CreateCalls...), append([]UpdateCall(nil), m.UpdateCalls...)
}

// MockSnapshotStore is a mock implementation of SnapshotStore for testing.
type MockSnapshotStore struct {
	mu        sync.Mutex
	LoadFunc  func(ctx context.Context) []Order
	SaveFunc  func(ctx context.Context, orders []Order) error
	stored    []Order
	SaveCalls [][]Order
}

func NewMockSnapshotStore(orders []Order) *MockSnapshotStore {
	return &MockSnapshotStore{stored: orders}
}

func (m *MockSnapshotStore) Load(ctx context.Context) []Order {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Order(nil), m.stored...)
}

func (m *MockSnapshotStore) Save(ctx context.Context, orders []Order) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, orders)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored = append([]Order(nil), orders...)
	m.SaveCalls = append(m.SaveCalls, append([]Order(nil), orders...))
	return nil
}

func (m *MockSnapshotStore) Stored() []Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Order(nil), m.stored...)
}

// MockSubscriber is a mock implementation of events.Subscriber for testing.
type MockSubscriber struct {
	SubscribeFunc func(ctx context.Context, topic string, handler events.HandlerFunc) error

	Topic   string
	Handler events.HandlerFunc
}

func NewMockSubscriber() *MockSubscriber {
	return &MockSubscriber{}
}

func (m *MockSubscriber) Subscribe(ctx context.Context, topic string, handler events.HandlerFunc) error {
	if m.SubscribeFunc != nil {
		return m.SubscribeFunc(ctx, topic, handler)
	}
	m.Topic = topic
	m.Handler = handler
	return nil
}

// MockPublisher is a mock implementation of events.Publisher for testing.
type MockPublisher struct {
	mu          sync.Mutex
	PublishFunc func(ctx context.Context, topic string, msg []byte) error
	Published   [][]byte
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, msg []byte) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topic, msg)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Published = append(m.Published, msg)
	return nil
}
