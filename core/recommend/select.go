package recommend

import (
	"fmt"
	"sort"

	"DailyFM/model"
)

// DefaultTargetSize 每日歌单的默认目标长度
const DefaultTargetSize = 50

// SelectDaily 生成当日歌单：按得分稳定降序排序取前 targetSize 首，
// 再做流派均衡。同分歌曲保持输入顺序，保证相同输入产生相同输出。
func SelectDaily(songs []model.Song, historyIDs map[string]struct{}, targetSize int) ([]model.Song, error) {
	if targetSize <= 0 {
		return nil, fmt.Errorf("invalid target size: %d", targetSize)
	}

	scores := ScoreSongs(songs, historyIDs)

	ranked := make([]model.Song, len(songs))
	copy(ranked, songs)
	sort.SliceStable(ranked, func(i, j int) bool {
		return scores[ranked[i].ID] > scores[ranked[j].ID]
	})

	n := targetSize
	if len(ranked) < n {
		n = len(ranked)
	}
	selection := make([]model.Song, n)
	copy(selection, ranked[:n])

	rebalanceGenres(selection, ranked, historyIDs, targetSize)
	return selection, nil
}

// rebalanceGenres 把单一流派在歌单中的数量压到 cap = ceil(targetSize/流派数) 以内。
// 超出的低分歌曲换成得分最高的异流派候选；找不到候选时保留原歌曲，
// cap 是尽力而为的目标，曲库缺乏多样性时不强求。
func rebalanceGenres(selection, ranked []model.Song, historyIDs map[string]struct{}, targetSize int) {
	genreCounts := make(map[string]int)
	genreOrder := make([]string, 0)
	for _, s := range selection {
		if genreCounts[s.Genre] == 0 {
			genreOrder = append(genreOrder, s.Genre)
		}
		genreCounts[s.Genre]++
	}
	if len(genreCounts) == 0 {
		return
	}

	genreCap := (targetSize + len(genreCounts) - 1) / len(genreCounts)

	selected := make(map[string]struct{}, len(selection))
	for _, s := range selection {
		selected[s.ID] = struct{}{}
	}

	// 按流派在歌单中首次出现的顺序处理，避免 map 遍历顺序引入不确定性
	for _, genre := range genreOrder {
		excess := genreCounts[genre] - genreCap
		if excess <= 0 {
			continue
		}

		// 歌单按得分降序，从尾部向前找该流派的最低分歌曲逐一替换
		for i := len(selection) - 1; i >= 0 && excess > 0; i-- {
			if selection[i].Genre != genre {
				continue
			}

			replacement := findReplacement(ranked, genre, selected, historyIDs)
			if replacement == nil {
				// 曲库里没有可用的异流派候选，保留剩余的超额歌曲
				break
			}

			delete(selected, selection[i].ID)
			selection[i] = *replacement
			selected[replacement.ID] = struct{}{}
			excess--
		}
	}
}

// findReplacement 在全量排序列表中找得分最高、流派不同、未入选且不在历史窗口内的候选
func findReplacement(ranked []model.Song, genre string, selected map[string]struct{}, historyIDs map[string]struct{}) *model.Song {
	for i := range ranked {
		c := ranked[i]
		if c.Genre == genre {
			continue
		}
		if _, ok := selected[c.ID]; ok {
			continue
		}
		if _, ok := historyIDs[c.ID]; ok {
			continue
		}
		return &c
	}
	return nil
}
