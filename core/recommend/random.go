package recommend

import (
	"math/rand"

	"DailyFM/model"
)

// PickRandom 从候选集中均匀随机挑一首不在历史窗口内的歌曲。
// 没有可选歌曲时返回 false，调用方应把它当作明确的"无结果"而不是错误。
func PickRandom(songs []model.Song, historyIDs map[string]struct{}, rng *rand.Rand) (model.Song, bool) {
	eligible := make([]model.Song, 0, len(songs))
	for _, s := range songs {
		if _, played := historyIDs[s.ID]; played {
			continue
		}
		eligible = append(eligible, s)
	}
	if len(eligible) == 0 {
		return model.Song{}, false
	}
	return eligible[rng.Intn(len(eligible))], true
}
