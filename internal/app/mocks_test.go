package app

import (
	"context"
	"errors"
	"sync"

	"github.com/Rrens/routine-advisor/internal/domain"
	"github.com/Rrens/routine-advisor/internal/relayclient"
	"github.com/stretchr/testify/mock"
)

// MockExchanger mocks the Exchanger interface
type MockExchanger struct {
	mock.Mock
}

func (m *MockExchanger) Exchange(ctx context.Context, req relayclient.Request) (*relayclient.Reply, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*relayclient.Reply), args.Error(1)
}

// recordingView keeps the last state handed to each render call
type recordingView struct {
	mu        sync.Mutex
	products  []domain.Product
	marks     map[domain.ProductID]bool
	selection []domain.Product
	marked    map[domain.ProductID]bool
	chat      []domain.Message
	notices   []string
	typing    []bool
}

func newRecordingView() *recordingView {
	return &recordingView{marked: map[domain.ProductID]bool{}}
}

func (v *recordingView) RenderProducts(products []domain.Product, selected map[domain.ProductID]bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.products, v.marks = products, selected
}

func (v *recordingView) RenderSelection(selected []domain.Product) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selection = selected
}

func (v *recordingView) MarkProduct(id domain.ProductID, selected bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.marked[id] = selected
}

func (v *recordingView) RenderChat(messages []domain.Message) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.chat = messages
}

func (v *recordingView) ShowNotice(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notices = append(v.notices, text)
}

func (v *recordingView) ShowTyping(on bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.typing = append(v.typing, on)
}

func (v *recordingView) Notices() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.notices...)
}

// failingStore rejects every operation
type failingStore struct{}

var errStoreDown = errors.New("disk full")

func (failingStore) Get(context.Context, string) ([]byte, error)  { return nil, errStoreDown }
func (failingStore) Set(context.Context, string, []byte) error    { return errStoreDown }
func (failingStore) Close() error                                 { return nil }
