package services

import (
	"strings"
	"unicode"
)

// wordSet 単語の集合
type wordSet map[string]struct{}

func newWordSet(words ...string) wordSet {
	set := make(wordSet, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}

func (s wordSet) has(word string) bool {
	_, ok := s[word]
	return ok
}

// Len 集合の要素数
func (s wordSet) Len() int {
	return len(s)
}

// Lexicon 分析で使う固定の語彙セット
// 構築後は読み取り専用で、リクエスト間で共有されます。
type Lexicon struct {
	StopWords     wordSet
	PositiveWords wordSet
	NegativeWords wordSet
	NoiseWords    wordSet
}

var defaultStopWords = []string{
	"i", "me", "my", "myself", "we", "our", "ours", "ourselves", "you", "your",
	"yours", "yourself", "yourselves", "he", "him", "his", "himself", "she", "her", "hers",
	"herself", "it", "its", "itself", "they", "them", "their", "theirs", "themselves", "what",
	"which", "who", "whom", "this", "that", "these", "those", "am", "is", "are",
	"was", "were", "be", "been", "being", "have", "has", "had", "having", "do",
	"does", "did", "doing", "a", "an", "the", "and", "but", "if", "or",
	"because", "as", "until", "while", "of", "at", "by", "for", "with", "about",
	"against", "between", "into", "through", "during", "before", "after", "above", "below", "to",
	"from", "up", "down", "in", "out", "on", "off", "over", "under", "again",
	"further", "then", "once", "here", "there", "when", "where", "why", "how", "all",
	"any", "both", "each", "few", "more", "most", "other", "some", "such", "no",
	"nor", "not", "only", "own", "same", "so", "than", "too", "very", "can",
	"will", "just", "should", "now", "also", "really", "much", "even", "could", "still",
}

var defaultPositiveWords = []string{
	"good", "great", "excellent", "amazing", "awesome", "love", "happy", "best", "fantastic", "helpful",
	"easy", "satisfied", "wonderful", "perfect", "fast", "friendly", "recommend", "pleased", "reliable", "nice",
}

var defaultNegativeWords = []string{
	"bad", "poor", "terrible", "awful", "hate", "slow", "difficult", "worst", "disappointed", "broken",
	"expensive", "frustrating", "confusing", "useless", "horrible", "problem", "issue", "unhappy", "rude", "bug",
}

var defaultNoiseWords = []string{
	"good", "bad", "service", "product", "use", "like", "would", "get",
}

// DefaultLexicon 既定の語彙セットを返す
func DefaultLexicon() Lexicon {
	return NewLexicon(defaultStopWords, defaultPositiveWords, defaultNegativeWords, defaultNoiseWords)
}

// NewLexicon 単語リストから語彙セットを構築
func NewLexicon(stopWords, positiveWords, negativeWords, noiseWords []string) Lexicon {
	return Lexicon{
		StopWords:     newWordSet(stopWords...),
		PositiveWords: newWordSet(positiveWords...),
		NegativeWords: newWordSet(negativeWords...),
		NoiseWords:    newWordSet(noiseWords...),
	}
}

// Normalize テキストを小文字化し、英字と空白以外を除去してトークンに分割、ストップワードを除外する
// "top-notch" は "topnotch" の1トークンになる（単語境界を考慮しない除去）。
func (l Lexicon) Normalize(text string) []string {
	tokens := make([]string, 0)
	if text == "" {
		return tokens
	}

	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if (r >= 'a' && r <= 'z') || unicode.IsSpace(r) {
			sb.WriteRune(r)
		}
	}

	for _, tok := range strings.Fields(sb.String()) {
		if l.StopWords.has(tok) {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}
