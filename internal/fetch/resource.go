// Package fetch - 비동기 조회 함수를 감싸 {data, loading, error, refetch} 상태를 제공
//
// 재조회 트리거는 fetcher 함수의 동일성에 의존하지 않고 SetDeps로 명시한다.
// fetcher는 조회 시작 시점의 deps를 인자로 받고, 더 나중에 시작된 조회가 있으면
// 먼저 시작된 조회의 결과는 버린다.
package fetch

import (
	"context"
	"reflect"
	"sync"
	"time"

	"github.com/credibilitycrm/gateway/internal/model"
)

const DefaultErrorMessage = "Failed to fetch data"

type Fetcher[T any] func(ctx context.Context, deps []any) (model.APIResponse[T], error)

type State[T any] struct {
	Data      *T
	Loading   bool
	Error     string
	UpdatedAt time.Time
}

type Option func(*options)

type options struct {
	immediate bool
	deps      []any
}

// WithDeps - 초기 의존성. SetDeps는 이 값과 비교한다
func WithDeps(deps ...any) Option {
	return func(o *options) { o.deps = deps }
}

// WithImmediate - false면 Activate에서 자동 조회하지 않는다 (기본 true)
func WithImmediate(immediate bool) Option {
	return func(o *options) { o.immediate = immediate }
}

type Resource[T any] struct {
	fetcher   Fetcher[T]
	immediate bool

	mu        sync.Mutex
	state     State[T]
	inflight  int
	activated bool
	deps      []any
	// Refetch마다 증가. 결과 반영 시 자신이 최신 조회인지 확인
	gen uint64
}

func NewResource[T any](fetcher Fetcher[T], opts ...Option) *Resource[T] {
	o := options{immediate: true}
	for _, opt := range opts {
		opt(&o)
	}
	return &Resource[T]{fetcher: fetcher, immediate: o.immediate, deps: o.deps}
}

func (r *Resource[T]) State() State[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Refetch - 실패 시 이전 data는 유지하고 error만 갱신
func (r *Resource[T]) Refetch(ctx context.Context) {
	r.mu.Lock()
	r.refetchLocked(ctx)
}

// refetchLocked - r.mu를 잡은 상태로 호출하며, 반환 전에 해제한다
func (r *Resource[T]) refetchLocked(ctx context.Context) {
	r.inflight++
	r.gen++
	gen := r.gen
	deps := r.deps
	r.state.Loading = true
	r.state.Error = ""
	r.mu.Unlock()

	// panic을 포함한 모든 종료 경로에서 loading 해제
	defer func() {
		r.mu.Lock()
		r.inflight--
		r.state.Loading = r.inflight > 0
		r.mu.Unlock()
	}()

	resp, err := r.fetcher(ctx, deps)

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen {
		// 이후에 시작된 조회가 있으므로 결과를 버린다
		return
	}
	if err == nil && resp.Success && resp.Data != nil {
		r.state.Data = resp.Data
		r.state.Error = ""
		r.state.UpdatedAt = time.Now()
		return
	}

	msg := resp.Error
	if msg == "" && err != nil {
		msg = err.Error()
	}
	if msg == "" {
		msg = DefaultErrorMessage
	}
	r.state.Error = msg
}

// Activate - immediate이면 최초 한 번만 Refetch. 실제로 조회했으면 true
func (r *Resource[T]) Activate(ctx context.Context) bool {
	r.mu.Lock()
	if !r.immediate || r.activated {
		r.mu.Unlock()
		return false
	}
	r.activated = true
	r.mu.Unlock()

	r.Refetch(ctx)
	return true
}

// SetDeps - 현재 의존성 목록과 다르면 기록 후 Refetch
func (r *Resource[T]) SetDeps(ctx context.Context, deps ...any) bool {
	r.mu.Lock()
	if reflect.DeepEqual(r.deps, deps) {
		r.mu.Unlock()
		return false
	}
	// 기록과 조회 시작을 한 임계 구역에서 처리해 deps와 조회 대상이 어긋나지 않게 한다
	r.deps = deps
	r.refetchLocked(ctx)
	return true
}
