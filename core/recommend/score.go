package recommend

import "DailyFM/model"

// 各评分维度的权重：流派/年份欠曝光各占 0.3，曲库热度占 0.3，新近度占 0.1
const (
	genreScoreWeight      = 0.3
	yearScoreWeight       = 0.3
	popularityScoreWeight = 0.3
	recencyScoreWeight    = 0.1

	// 一周内推送过的歌曲打五折，降低但不禁止再次出现
	recencyPenalty = 0.5
)

// ScoreSongs 计算每首候选歌曲的选取得分，纯函数，无副作用。
// 流派和发行年份分别统计历史播放次数并归一化：
// weight = 1 - timesPlayed/maxTimesPlayed，从未出现的分组取最大偏好 1。
func ScoreSongs(songs []model.Song, historyIDs map[string]struct{}) map[string]float64 {
	genreCounts := make(map[string]int)
	yearCounts := make(map[int]int)
	for _, s := range songs {
		if _, played := historyIDs[s.ID]; played {
			genreCounts[s.Genre]++
			yearCounts[s.ReleaseYear]++
		}
	}

	genreWeights := normalizeGenreCounts(genreCounts)
	yearWeights := normalizeYearCounts(yearCounts)

	scores := make(map[string]float64, len(songs))
	for _, s := range songs {
		genreScore := 1.0
		if w, ok := genreWeights[s.Genre]; ok {
			genreScore = w
		}
		yearScore := 1.0
		if w, ok := yearWeights[s.ReleaseYear]; ok {
			yearScore = w
		}
		popularity := float64(s.PopularityScore) / 100.0
		recency := 1.0
		if _, played := historyIDs[s.ID]; played {
			recency = recencyPenalty
		}

		scores[s.ID] = genreScoreWeight*genreScore +
			yearScoreWeight*yearScore +
			popularityScoreWeight*popularity +
			recencyScoreWeight*recency
	}
	return scores
}

// normalizeGenreCounts 把播放次数归一化为 [0,1] 权重，播放最多的流派权重为 0。
// 所有分组都是 0 次时以 1 作分母，避免除零。
func normalizeGenreCounts(counts map[string]int) map[string]float64 {
	max := 0
	for _, c := range counts {
		if c > max {
			max = c
		}
	}
	if max == 0 {
		max = 1
	}

	weights := make(map[string]float64, len(counts))
	for g, c := range counts {
		weights[g] = 1.0 - float64(c)/float64(max)
	}
	return weights
}

// normalizeYearCounts 同 normalizeGenreCounts，按发行年份维度归一化
func normalizeYearCounts(counts map[int]int) map[int]float64 {
	max := 0
	for _, c := range counts {
		if c > max {
			max = c
		}
	}
	if max == 0 {
		max = 1
	}

	weights := make(map[int]float64, len(counts))
	for y, c := range counts {
		weights[y] = 1.0 - float64(c)/float64(max)
	}
	return weights
}
