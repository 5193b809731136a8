// Package notification - 프로세스 단위 인메모리 알림 목록과 구독(pub/sub)
//
// 목록은 최신순으로 유지되며 capacity를 넘으면 가장 오래된 항목부터 버린다.
// 모든 변경(생성, 읽음 처리, 전체 삭제) 후 구독자에게 변경분이 아닌 전체 목록을 전달한다.
package notification

import (
	"sync"
	"time"

	"github.com/credibilitycrm/gateway/internal/model"
	"github.com/google/uuid"
)

const DefaultCapacity = 50

// Listener - 변경 후 전체 목록 스냅샷을 받는 콜백
type Listener func([]model.Notification)

type registration struct {
	id uint64
	fn Listener
}

type Store struct {
	// 스냅샷 생성부터 구독자 호출까지 잡아 변경 순서대로 전달되게 한다.
	// 구독자 안에서 Create/MarkAsRead/Clear를 동기 호출하면 교착된다.
	deliverMu sync.Mutex
	mu        sync.Mutex
	capacity  int
	items     []model.Notification
	listeners []registration
	nextID    uint64

	// 테스트에서 시간 고정용
	now func() time.Time
}

func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		capacity: capacity,
		items:    make([]model.Notification, 0, capacity),
		now:      time.Now,
	}
}

// Create - 맨 앞에 추가하고 capacity 초과분을 잘라낸 뒤 구독자 호출
func (s *Store) Create(typ model.NotificationType, title, message, actionURL string) model.Notification {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mu.Lock()
	n := model.Notification{
		ID:        newID(),
		Type:      typ,
		Title:     title,
		Message:   message,
		Timestamp: s.now(),
		ActionURL: actionURL,
	}

	items := make([]model.Notification, 0, s.capacity)
	items = append(items, n)
	items = append(items, s.items...)
	if len(items) > s.capacity {
		items = items[:s.capacity]
	}
	s.items = items
	snapshot, listeners := s.snapshotLocked()
	s.mu.Unlock()

	notify(listeners, snapshot)
	return n
}

// MarkAsRead - 처음 일치하는 항목만 read=true. 없는 id는 아무 일도 하지 않는다.
func (s *Store) MarkAsRead(id string) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mu.Lock()
	found := false
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Read = true
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return
	}
	snapshot, listeners := s.snapshotLocked()
	s.mu.Unlock()

	notify(listeners, snapshot)
}

// List - 호출 시점의 목록 (최신순)
func (s *Store) List() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.items)
}

func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, n := range s.items {
		if !n.Read {
			count++
		}
	}
	return count
}

// Clear - 목록을 비우고 빈 목록으로 구독자 호출
func (s *Store) Clear() {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mu.Lock()
	s.items = make([]model.Notification, 0, s.capacity)
	snapshot, listeners := s.snapshotLocked()
	s.mu.Unlock()

	notify(listeners, snapshot)
}

// Subscribe - 반환된 함수는 정확히 이 등록만 해제한다 (여러 번 호출해도 안전)
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, registration{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, reg := range s.listeners {
			if reg.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) snapshotLocked() ([]model.Notification, []registration) {
	listeners := make([]registration, len(s.listeners))
	copy(listeners, s.listeners)
	return cloneItems(s.items), listeners
}

// mu를 놓은 상태에서 호출하므로 구독자가 List/UnreadCount를 호출해도 된다
func notify(listeners []registration, snapshot []model.Notification) {
	for _, reg := range listeners {
		reg.fn(snapshot)
	}
}

func cloneItems(items []model.Notification) []model.Notification {
	out := make([]model.Notification, len(items))
	copy(out, items)
	return out
}

// UUIDv7 - 시간 순서가 보장되는 고유 ID
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
