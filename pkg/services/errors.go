package services

import "errors"

// 分析パイプラインのエラー分類
// ハンドラー側で errors.Is により判定し、ステータスコードに変換します。
var (
	// ErrEmptyResultSet 日付フィルタ後にフィードバックが0件
	ErrEmptyResultSet = errors.New("no feedback found for the selected date range")
	// ErrMalformedInput 日付文字列などの入力が不正
	ErrMalformedInput = errors.New("malformed input")
	// ErrInternalComputation 集計中の予期しない失敗
	ErrInternalComputation = errors.New("internal computation failure")

	// ErrGeneratorUnavailable テキスト生成サービスが未設定
	ErrGeneratorUnavailable = errors.New("text generator is not configured")
	// ErrMalformedCompletion 生成サービスの応答が空または解析不能
	ErrMalformedCompletion = errors.New("text generator returned an empty completion")
)
