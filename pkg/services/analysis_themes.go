package services

import (
	"sort"

	"feedback-insights-api/pkg/models"
)

// DefaultTopThemes 抽出するテーマ数の既定値
const DefaultTopThemes = 5

// ExtractThemes 全テキストの単語頻度から上位 topN のテーマを返す
// ノイズ語は頻度に関わらず除外し、同数の場合は初出順を維持する。
func (l Lexicon) ExtractThemes(texts []string, topN int) []models.Theme {
	if topN <= 0 {
		topN = DefaultTopThemes
	}

	counts := make(map[string]int)
	order := make([]string, 0)
	for _, text := range texts {
		for _, tok := range l.Normalize(text) {
			if l.NoiseWords.has(tok) {
				continue
			}
			if _, seen := counts[tok]; !seen {
				order = append(order, tok)
			}
			counts[tok]++
		}
	}

	themes := make([]models.Theme, 0, len(order))
	for _, word := range order {
		themes = append(themes, models.Theme{Word: word, Count: counts[word]})
	}
	sort.SliceStable(themes, func(i, j int) bool {
		return themes[i].Count > themes[j].Count
	})

	if len(themes) > topN {
		themes = themes[:topN]
	}
	return themes
}
