package recommend

import (
	"context"
	"sync"
	"time"

	"DailyFM/logger"
)

// Scheduler 每天跨零点后预计算当日歌单，让清晨的第一个请求直接命中缓存。
// 预计算和请求触发的计算走同一条合并路径，不会重复刷新同一天。
type Scheduler struct {
	svc      *Service
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewScheduler 创建零点预热调度器
func NewScheduler(svc *Service) *Scheduler {
	return &Scheduler{
		svc:      svc,
		stopChan: make(chan struct{}),
	}
}

// Start 启动后台调度
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.run()
	logger.Info("Daily playlist scheduler started")
}

// Stop 停止调度并等待后台协程退出
func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()
	logger.Info("Daily playlist scheduler stopped")
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	for {
		now := s.svc.clock.Now().In(s.svc.loc)
		timer := time.NewTimer(nextComputeTime(now).Sub(now))

		select {
		case <-timer.C:
			if _, err := s.svc.GetDaily(context.Background()); err != nil {
				logger.Warn("Scheduled daily playlist precompute failed", logger.ErrorField(err))
			}
		case <-s.stopChan:
			timer.Stop()
			return
		}
	}
}

// nextComputeTime 计算下一次预热时间：次日 00:01，留出整点附近的时钟抖动
func nextComputeTime(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 1, 0, 0, now.Location())
}
