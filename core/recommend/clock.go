package recommend

import "time"

// Clock 统一提供"现在"，跨天行为靠注入假时钟测试
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}
