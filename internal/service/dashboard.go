package service

import (
	"context"
	"sync"
	"time"

	"github.com/credibilitycrm/gateway/internal/fetch"
	"github.com/credibilitycrm/gateway/internal/model"
	"go.uber.org/zap"
)

// statsFetcher - analytics 조회 인터페이스 (client.APIClient)
type statsFetcher interface {
	TenantStats(ctx context.Context, rangeKey string) (model.APIResponse[model.Stats], error)
	TicketStats(ctx context.Context, rangeKey string) (model.APIResponse[model.Stats], error)
}

// DashboardService - 대시보드 개요용 tenant/ticket 통계를 캐시하고 주기적으로 갱신
type DashboardService struct {
	tenant *fetch.Resource[model.Stats]
	ticket *fetch.Resource[model.Stats]
	log    *zap.Logger
}

func NewDashboardService(stats statsFetcher, log *zap.Logger) *DashboardService {
	s := &DashboardService{log: log}
	// range는 조회를 시작시킨 deps에서 읽는다 (기본 "": 전체 기간)
	s.tenant = fetch.NewResource(func(ctx context.Context, deps []any) (model.APIResponse[model.Stats], error) {
		return stats.TenantStats(ctx, rangeFromDeps(deps))
	}, fetch.WithDeps(""))
	s.ticket = fetch.NewResource(func(ctx context.Context, deps []any) (model.APIResponse[model.Stats], error) {
		return stats.TicketStats(ctx, rangeFromDeps(deps))
	}, fetch.WithDeps(""))
	return s
}

// Start - 최초 조회 후 interval마다 갱신. ctx가 끝나면 반환
func (s *DashboardService) Start(ctx context.Context, interval time.Duration) {
	var wg sync.WaitGroup
	for _, r := range []*fetch.Resource[model.Stats]{s.tenant, s.ticket} {
		wg.Add(1)
		go func(r *fetch.Resource[model.Stats]) {
			defer wg.Done()
			r.Activate(ctx)
		}(r)
	}
	wg.Wait()

	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}

// Overview - rangeKey가 이전과 다르면 두 통계를 다시 조회한 뒤 현재 상태를 반환
func (s *DashboardService) Overview(ctx context.Context, rangeKey string) model.DashboardOverview {
	var wg sync.WaitGroup
	for _, r := range []*fetch.Resource[model.Stats]{s.tenant, s.ticket} {
		wg.Add(1)
		go func(r *fetch.Resource[model.Stats]) {
			defer wg.Done()
			r.SetDeps(ctx, rangeKey)
		}(r)
	}
	wg.Wait()
	return s.snapshot()
}

// Refresh - 두 통계를 동시에 재조회
func (s *DashboardService) Refresh(ctx context.Context) model.DashboardOverview {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); s.tenant.Refetch(ctx) }()
	go func() { defer wg.Done(); s.ticket.Refetch(ctx) }()
	wg.Wait()

	overview := s.snapshot()
	if !overview.Success {
		s.log.Warn("Dashboard refresh incomplete",
			zap.String("tenant_error", overview.TenantStats.Error),
			zap.String("ticket_error", overview.TicketStats.Error),
		)
	}
	return overview
}

func rangeFromDeps(deps []any) string {
	if len(deps) == 0 {
		return ""
	}
	rangeKey, _ := deps[0].(string)
	return rangeKey
}

func (s *DashboardService) snapshot() model.DashboardOverview {
	tenant := toResourceState(s.tenant.State())
	ticket := toResourceState(s.ticket.State())
	return model.DashboardOverview{
		Success:     tenant.Error == "" && ticket.Error == "",
		TenantStats: tenant,
		TicketStats: ticket,
	}
}

func toResourceState(st fetch.State[model.Stats]) model.ResourceState {
	out := model.ResourceState{Loading: st.Loading, Error: st.Error}
	if st.Data != nil {
		out.Data = *st.Data
	}
	if !st.UpdatedAt.IsZero() {
		updated := st.UpdatedAt
		out.UpdatedAt = &updated
	}
	return out
}
