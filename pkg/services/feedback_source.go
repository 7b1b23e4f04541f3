package services

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"feedback-insights-api/pkg/models"

	"github.com/xuri/excelize/v2"
)

// FeedbackSource フィードバックデータの読み込み元
// 読み込み中にデータが変更されないことは実装側が保証する。
type FeedbackSource interface {
	Load(ctx context.Context) ([]models.FeedbackRecord, error)
}

// FileFeedbackSource ローカルファイル（.json / .csv / .xlsx）から読み込むデータソース
// リクエストごとにファイルを読み直す。
type FileFeedbackSource struct {
	path string
}

// NewFileFeedbackSource 新しい FileFeedbackSource を作成
func NewFileFeedbackSource(path string) *FileFeedbackSource {
	return &FileFeedbackSource{path: path}
}

// Path 読み込み対象のファイルパス
func (s *FileFeedbackSource) Path() string {
	return s.path
}

// Load ファイルを読み込んでレコードに変換
func (s *FileFeedbackSource) Load(ctx context.Context) ([]models.FeedbackRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open feedback data %s: %w", s.path, err)
	}
	defer f.Close()

	return DecodeFeedback(filepath.Base(s.path), f)
}

// DecodeFeedback ファイル名の拡張子に応じてフィードバックをデコード
func DecodeFeedback(fileName string, r io.Reader) ([]models.FeedbackRecord, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".json":
		return ParseFeedbackJSON(r)
	case ".csv":
		return ParseFeedbackCSV(r)
	case ".xlsx":
		return ParseFeedbackXLSX(r)
	default:
		return nil, fmt.Errorf("%w: unsupported file type %q (use .json, .csv or .xlsx)", ErrMalformedInput, filepath.Ext(fileName))
	}
}

// ParseFeedbackJSON JSON配列をデコード
func ParseFeedbackJSON(r io.Reader) ([]models.FeedbackRecord, error) {
	var records []models.FeedbackRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON feedback: %v", ErrMalformedInput, err)
	}
	if records == nil {
		records = []models.FeedbackRecord{}
	}
	return records, nil
}

// ParseFeedbackCSV ヘッダー行付きCSVをデコード
func ParseFeedbackCSV(r io.Reader) ([]models.FeedbackRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse CSV feedback: %v", ErrMalformedInput, err)
	}
	return ParseFeedbackRows(rows)
}

// ParseFeedbackXLSX Excelファイルの先頭シートをデコード
func ParseFeedbackXLSX(r io.Reader) ([]models.FeedbackRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open Excel file: %v", ErrMalformedInput, err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read Excel rows: %v", ErrMalformedInput, err)
	}
	return ParseFeedbackRows(rows)
}

// ParseFeedbackRows 1行目をヘッダーとして行データをレコードに変換
// Date と FeedbackText 列は必須、Rating と Category 列は任意。
func ParseFeedbackRows(rows [][]string) ([]models.FeedbackRecord, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: file has no header row", ErrMalformedInput)
	}

	header := rows[0]
	dateColIdx := findIndex(header, "Date", "date")
	textColIdx := findIndex(header, "FeedbackText", "feedback_text", "feedback", "text", "comment")
	ratingColIdx := findIndex(header, "Rating", "rating", "score")
	categoryColIdx := findIndex(header, "Category", "category")

	var missingCols []string
	if dateColIdx == -1 {
		missingCols = append(missingCols, "Date")
	}
	if textColIdx == -1 {
		missingCols = append(missingCols, "FeedbackText")
	}
	if len(missingCols) > 0 {
		return nil, fmt.Errorf("%w: required columns not found: %s (header: %v)", ErrMalformedInput, strings.Join(missingCols, ", "), header)
	}

	records := make([]models.FeedbackRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		rec := models.FeedbackRecord{
			Date:         strings.TrimSpace(cell(row, dateColIdx)),
			FeedbackText: cell(row, textColIdx),
		}

		if raw := strings.TrimSpace(cell(row, ratingColIdx)); raw != "" {
			rating, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid rating %q on row %d", ErrMalformedInput, raw, i+2)
			}
			rec.Rating = &rating
		}
		if category := strings.TrimSpace(cell(row, categoryColIdx)); category != "" {
			rec.Category = &category
		}
		records = append(records, rec)
	}
	return records, nil
}

// findIndex ヘッダーから候補名のいずれかに一致する列番号を返す（大文字小文字は区別しない）
func findIndex(header []string, candidates ...string) int {
	for _, candidate := range candidates {
		for i, item := range header {
			if strings.EqualFold(strings.TrimSpace(item), candidate) {
				return i
			}
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
