package services

import (
	"bytes"
	"fmt"
	"html"
	"sort"
	"strconv"

	"feedback-insights-api/pkg/models"

	"github.com/russross/blackfriday/v2"
)

// RenderSummaryHTML 分析結果を印刷用のHTMLドキュメントに変換
// サマリー（Markdown）は生HTMLを除去してレンダリングする。
func RenderSummaryHTML(result *models.AnalysisResult) []byte {
	renderer := blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
		Flags: blackfriday.CommonHTMLFlags | blackfriday.SkipHTML,
	})
	body := blackfriday.Run([]byte(result.Summary),
		blackfriday.WithExtensions(blackfriday.CommonExtensions),
		blackfriday.WithRenderer(renderer),
	)

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	buf.WriteString("<title>Feedback Analysis Document</title>\n</head>\n<body>\n")
	buf.WriteString("<h1>Feedback Analysis Document</h1>\n")
	buf.WriteString(fmt.Sprintf("<p class=\"period\">Period: %s</p>\n", html.EscapeString(describePeriod(result))))

	buf.WriteString("<table class=\"metrics\">\n")
	writeRow(&buf, "Total feedback", strconv.Itoa(result.TotalFeedback))
	writeRow(&buf, "Average rating", formatAverageRating(result.AverageRating))
	writeRow(&buf, "Average sentiment", fmt.Sprintf("%.2f", result.AvgSentiment))
	d := result.SentimentDistribution
	writeRow(&buf, "Sentiment", fmt.Sprintf("%d positive / %d neutral / %d negative", d.Positive, d.Neutral, d.Negative))
	buf.WriteString("</table>\n")

	if len(result.CategoryDistribution) > 0 {
		names := make([]string, 0, len(result.CategoryDistribution))
		for name := range result.CategoryDistribution {
			names = append(names, name)
		}
		sort.Strings(names)
		buf.WriteString("<h2>Categories</h2>\n<ul>\n")
		for _, name := range names {
			buf.WriteString(fmt.Sprintf("<li>%s: %d</li>\n", html.EscapeString(name), result.CategoryDistribution[name]))
		}
		buf.WriteString("</ul>\n")
	}

	buf.WriteString("<section class=\"summary\">\n")
	buf.Write(body)
	buf.WriteString("</section>\n</body>\n</html>\n")
	return buf.Bytes()
}

func writeRow(buf *bytes.Buffer, label, value string) {
	buf.WriteString(fmt.Sprintf("<tr><th>%s</th><td>%s</td></tr>\n", html.EscapeString(label), html.EscapeString(value)))
}

func describePeriod(result *models.AnalysisResult) string {
	start, end := "beginning", "latest"
	if result.StartDate != nil {
		start = *result.StartDate
	}
	if result.EndDate != nil {
		end = *result.EndDate
	}
	if result.StartDate == nil && result.EndDate == nil {
		return "all feedback"
	}
	return start + " to " + end
}
