package api

import (
	"sync"
	"time"

	"timesheet/internal/model"
)

type cachedReport struct {
	report    *model.WorkbookReport
	expiresAt time.Time
}

// reportStore 内存中的分析结果缓存，按报告 ID 索引，过期自动清理
type reportStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]cachedReport
	now   func() time.Time
}

func newReportStore(ttl time.Duration) *reportStore {
	return &reportStore{
		ttl:   ttl,
		items: make(map[string]cachedReport),
		now:   time.Now,
	}
}

func (s *reportStore) put(report *model.WorkbookReport) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.purgeExpiredLocked(now)
	s.items[report.ID] = cachedReport{report: report, expiresAt: now.Add(s.ttl)}
}

func (s *reportStore) get(id string) (*model.WorkbookReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.purgeExpiredLocked(now)

	v, ok := s.items[id]
	if !ok {
		return nil, false
	}
	return v.report, true
}

func (s *reportStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeExpiredLocked(s.now())
	return len(s.items)
}

func (s *reportStore) purgeExpiredLocked(now time.Time) {
	for k, v := range s.items {
		if now.After(v.expiresAt) {
			delete(s.items, k)
		}
	}
}
