package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"aqar-chatbot/config"
	"aqar-chatbot/models"
)

// unavailableKeywords is the fail-safe row filter. Even if the generated SQL
// misses the status condition, rows carrying any of these never reach users.
var unavailableKeywords = []string{
	"reserved", "sold", "locked", "blocked", "hold", "unavailable",
	"محجوز", "محجوزة", "مباع", "مباعة", "مغلق", "مغلقة", "غير متاح", "غير متاحة",
}

var (
	selectPattern    = regexp.MustCompile(`(?is)^\s*select\s`)
	forbiddenPattern = regexp.MustCompile(`(?is)\b(insert|update|delete|drop|alter|create|truncate|grant|revoke|exec|execute)\b`)
	limitPattern     = regexp.MustCompile(`(?is)\blimit\s+\d+`)
	tablePattern     = regexp.MustCompile(`(?is)\bfrom\s+unit_search_sorting\b`)
	wherePairPattern = regexp.MustCompile(`(?i)(\w+)\s*(=|>=|<=|>|<|like)\s*('[^']*'|"[^"]*"|[\d.]+)`)
)

// SQLSearchResult is what the SQL path hands back to the orchestrator.
type SQLSearchResult struct {
	SQL               string
	Rows              []map[string]interface{}
	AlternativeSearch bool
	FuzzyField        string
	OriginalValue     string
	Logs              []string
}

// LangID maps a detected language to the inventory's language dimension.
// Franco users get the Arabic rows; the carousel transliterates the values.
func LangID(language string) int {
	if language == "ar" || language == "franco" {
		return 2
	}
	return 1
}

// GenerateSQL asks the model for a query and hard-validates the result.
func GenerateSQL(ctx context.Context, userRequest string, langID int) (string, error) {
	raw, err := GetLLMResponse(ctx, config.BuildSQLGenerationPrompt(userRequest, langID))
	if err != nil {
		return "", err
	}
	sql := StripCodeFences(raw)
	if err := ValidateSQL(sql); err != nil {
		return "", err
	}
	return sql, nil
}

// ValidateSQL enforces the read-only contract: a single SELECT on
// unit_search_sorting with a LIMIT.
func ValidateSQL(sql string) error {
	trimmed := strings.TrimSpace(sql)
	if trimmed == "" {
		return fmt.Errorf("empty SQL")
	}
	if !selectPattern.MatchString(trimmed) {
		return fmt.Errorf("only SELECT queries are allowed")
	}
	if forbiddenPattern.MatchString(trimmed) {
		return fmt.Errorf("forbidden SQL keyword in query")
	}
	if strings.Count(trimmed, ";") > 1 || (strings.Contains(trimmed, ";") && !strings.HasSuffix(strings.TrimRight(trimmed, " \n\t"), ";")) {
		return fmt.Errorf("multiple statements are not allowed")
	}
	if !tablePattern.MatchString(trimmed) {
		return fmt.Errorf("query must read from unit_search_sorting")
	}
	if !limitPattern.MatchString(trimmed) {
		return fmt.Errorf("query must carry a LIMIT clause")
	}
	return nil
}

// FilterUnavailableRows drops rows whose status text marks them reserved,
// sold or locked, regardless of what the SQL filtered.
func FilterUnavailableRows(rows []map[string]interface{}) []map[string]interface{} {
	filtered := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		status := strings.ToLower(rowString(row, "status_text") + " " + rowString(row, "unit_search_status"))
		unavailable := false
		for _, kw := range unavailableKeywords {
			if strings.Contains(status, kw) {
				unavailable = true
				break
			}
		}
		if !unavailable {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

// SearchProperties runs the full SQL path: generate, execute, fail-safe
// filter, and a single fuzzy retry when the exact search comes up empty.
func SearchProperties(ctx context.Context, userRequest, language string) (*SQLSearchResult, error) {
	langID := LangID(language)
	result := &SQLSearchResult{}

	sql, err := GenerateSQL(ctx, userRequest, langID)
	if err != nil {
		return nil, fmt.Errorf("SQL generation failed: %w", err)
	}
	result.SQL = sql
	result.Logs = append(result.Logs, "SQL: "+sql)

	rows, err := ExecuteQuery(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("SQL execution failed: %w", err)
	}
	rows = FilterUnavailableRows(rows)
	result.Logs = append(result.Logs, fmt.Sprintf("Exact search returned %d rows", len(rows)))

	if len(rows) > 0 {
		fixRowImages(rows)
		result.Rows = rows
		return result, nil
	}

	// Fuzzy retry with relaxed filters.
	slog.Info("Exact search returned 0 rows, trying fuzzy search", "language", language)
	fuzzyRaw, err := GetLLMResponse(ctx, config.BuildFuzzySQLPrompt(sql, userRequest))
	if err != nil {
		return result, nil
	}
	fuzzySQL := StripCodeFences(fuzzyRaw)
	if err := ValidateSQL(fuzzySQL); err != nil {
		slog.Warn("Fuzzy SQL failed validation", "error", err)
		return result, nil
	}

	fuzzyRows, err := ExecuteQuery(ctx, fuzzySQL)
	if err != nil {
		slog.Warn("Fuzzy SQL execution failed", "error", err)
		return result, nil
	}
	fuzzyRows = FilterUnavailableRows(fuzzyRows)
	result.Logs = append(result.Logs, "Fuzzy SQL: "+fuzzySQL)
	result.Logs = append(result.Logs, fmt.Sprintf("Fuzzy search returned %d rows", len(fuzzyRows)))

	if len(fuzzyRows) > 0 {
		fixRowImages(fuzzyRows)
		result.SQL = fuzzySQL
		result.Rows = fuzzyRows
		result.AlternativeSearch = true
		result.FuzzyField, result.OriginalValue = diffWhereClauses(sql, fuzzySQL)
	}
	return result, nil
}

// diffWhereClauses finds the first condition whose value the fuzzy query
// changed, returning the column and the user's original value.
func diffWhereClauses(originalSQL, fuzzySQL string) (field, originalValue string) {
	original := whereConditions(originalSQL)
	fuzzy := whereConditions(fuzzySQL)
	for col, val := range original {
		if fv, ok := fuzzy[col]; ok && fv != val {
			return col, strings.Trim(val, `'"`)
		}
	}
	for col, val := range original {
		if _, ok := fuzzy[col]; !ok {
			return col, strings.Trim(val, `'"`)
		}
	}
	return "", ""
}

func whereConditions(sql string) map[string]string {
	conditions := make(map[string]string)
	for _, m := range wherePairPattern.FindAllStringSubmatch(sql, -1) {
		col := strings.ToLower(m[1])
		if col == "lang_id" || col == "status_text" {
			continue
		}
		conditions[col] = m[3]
	}
	return conditions
}

// fixRowImages repairs image URLs in place across the image columns.
func fixRowImages(rows []map[string]interface{}) {
	imageColumns := []string{"unit_image", "sm_unit_image", "unit_image2", "developer_logo", "sm_developer_logo", "md_developer_logo", "compound_image"}
	for _, row := range rows {
		for _, col := range imageColumns {
			if v, ok := row[col]; ok && v != nil {
				row[col] = FixImageURL(fmt.Sprint(v))
			}
		}
	}
}

// EvaluateSQLResults asks the model to judge a finished SQL turn. Fuzzy
// results always pass; evaluation failures degrade to a passing verdict so
// the turn is never blocked on the evaluator.
func EvaluateSQLResults(ctx context.Context, userRequest string, result *SQLSearchResult) models.SQLEvaluation {
	passing := models.SQLEvaluation{
		OrchestratorCorrect: true,
		SQLValid:            true,
		DataQuality:         true,
		NeedRework:          false,
	}
	if result.AlternativeSearch {
		passing.Note = "fuzzy search result, accepted as-is"
		return passing
	}

	firstRow := "{}"
	if len(result.Rows) > 0 {
		if b, err := json.Marshal(result.Rows[0]); err == nil {
			firstRow = truncate(string(b), 1500)
		}
	}

	var eval models.SQLEvaluation
	prompt := config.BuildSQLEvaluationPrompt(userRequest, result.SQL, firstRow, len(result.Rows), result.AlternativeSearch)
	if err := GetLLMJSONResponse(ctx, prompt, &eval); err != nil {
		slog.Warn("SQL evaluation failed, accepting results", "error", err)
		return passing
	}
	return eval
}

// rowString reads a row value as a string, tolerating nil.
func rowString(row map[string]interface{}, key string) string {
	if v, ok := row[key]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return ""
}
