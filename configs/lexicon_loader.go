package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LexiconConfig は lexicon.yaml の構造を定義
// 省略したリストは既定の語彙を使用します。
type LexiconConfig struct {
	StopWords     []string `yaml:"stop_words"`
	PositiveWords []string `yaml:"positive_words"`
	NegativeWords []string `yaml:"negative_words"`
	NoiseWords    []string `yaml:"noise_words"`

	Metadata struct {
		Version     string `yaml:"version"`
		LastUpdated string `yaml:"last_updated"`
	} `yaml:"metadata"`
}

// LoadLexicon はYAMLファイルから語彙設定を読み込む
func LoadLexicon(path string) (*LexiconConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon file %s: %w", path, err)
	}
	return ParseLexicon(data)
}

// ParseLexicon はYAMLの内容を語彙設定に変換する
func ParseLexicon(data []byte) (*LexiconConfig, error) {
	var cfg LexiconConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon YAML: %w", err)
	}
	return &cfg, nil
}

// Merge 省略されたリストを既定値で補う
func (c *LexiconConfig) Merge(stopWords, positiveWords, negativeWords, noiseWords []string) (stop, positive, negative, noise []string) {
	pick := func(override, fallback []string) []string {
		if len(override) > 0 {
			return override
		}
		return fallback
	}
	return pick(c.StopWords, stopWords),
		pick(c.PositiveWords, positiveWords),
		pick(c.NegativeWords, negativeWords),
		pick(c.NoiseWords, noiseWords)
}
