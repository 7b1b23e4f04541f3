package services

import (
	"feedback-insights-api/pkg/models"

	"github.com/invopop/jsonschema"
)

// AnalysisResultSchema 分析結果のJSON Schemaを生成
func AnalysisResultSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schema := reflector.Reflect(&models.AnalysisResult{})
	schema.Title = "AnalysisResult"
	schema.Description = "Customer feedback analysis returned by POST /api/analyze-feedback"
	return schema
}
