package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"aqar-chatbot/config"
	"aqar-chatbot/models"
)

var (
	chatConfig    *config.Config
	responseCache *ResponseCache
)

// InitChat wires the orchestrator's dependencies.
func InitChat(cfg *config.Config) {
	chatConfig = cfg
	responseCache = NewResponseCache(cfg.CacheMaxSize, cfg.CacheTTL)
}

// GetResponseCache exposes the cache for the stats endpoint and tests.
func GetResponseCache() *ResponseCache {
	return responseCache
}

const historyPlaceholder = "[structured results shown]"

// ProcessMessage runs one conversational turn end to end and returns the
// payload the frontend renders.
func ProcessMessage(ctx context.Context, message, sessionID string) (*models.ChatResponse, error) {
	start := time.Now()
	session := sessionStore.Get(sessionID)

	// Concurrent requests for the same session run one turn at a time.
	session.BeginTurn()
	defer session.EndTurn()

	session.ResetTurnFlags()

	// 1. Cache lookup against the session's current language.
	if cached, route, ok := responseCache.Get(message, session.DetectedLanguage); ok {
		slog.Info("Serving cached response", "sessionID", sessionID, "route", route)
		historyCopy := StripStructuredPayloads(cached)
		if historyCopy == "" {
			historyCopy = historyPlaceholder
		}
		logTurn(ctx, session, message, historyCopy, route, "", 0, start, true)
		return &models.ChatResponse{
			Response:         cached,
			SessionID:        sessionID,
			DetectedLanguage: session.DetectedLanguage,
			Route:            route,
			FromCache:        true,
		}, nil
	}

	// 2. Safety guard before anything else touches the query.
	if chatConfig.EnableSafetyGuard {
		if safe, refusal := CheckQuerySafety(ctx, message); !safe {
			logTurn(ctx, session, message, refusal, "blocked", "", 0, start, false)
			return &models.ChatResponse{
				Response:         refusal,
				SessionID:        sessionID,
				DetectedLanguage: session.DetectedLanguage,
				Route:            "blocked",
			}, nil
		}
	}

	// 3. Language detection.
	language, confidence := DetectLanguage(ctx, message, chatConfig.UseLLMLanguageDetection)
	session.DetectedLanguage = language
	session.LanguageConfidence = confidence
	cleanMessage := StripLanguageHint(message)

	// 4. Routing: payment fast path, then LLM classification.
	route := "chat"
	if IsPaymentQuery(cleanMessage) {
		route = "sql"
	} else {
		route = ClassifyRoute(ctx, cleanMessage)
	}

	// 5. Dispatch.
	var response string
	var sqlLogs []string
	var lastSQL string
	var rowCount int
	var err error

	switch route {
	case "sql":
		response, sqlLogs, err = handleSQLRoute(ctx, cleanMessage, language, session)
		lastSQL = session.LastSQL
		rowCount = len(session.LastResults)
	case "rag":
		response, err = AnswerFromKnowledge(ctx, cleanMessage, language, session)
	default:
		route = "chat"
		session.ChatAgentUsed = true
		history := historyMessages(session, chatConfig.MaxHistoryMessages)
		response, err = GetLLMResponseWithHistory(ctx, config.BuildChatPrompt(cleanMessage, language), history)
	}
	if err != nil {
		slog.Error("Dispatch failed", "route", route, "error", err, "sessionID", sessionID)
		return nil, fmt.Errorf("failed to process message: %w", err)
	}

	// 6. Post-processing.
	response = postProcess(ctx, response, language, session)

	// 7. History + turn log.
	session.AppendHistory("user", cleanMessage)
	historyCopy := StripStructuredPayloads(response)
	if historyCopy == "" {
		historyCopy = historyPlaceholder
	}
	session.AppendHistory("assistant", historyCopy)
	logTurn(ctx, session, message, historyCopy, route, lastSQL, rowCount, start, false)

	// 8. Cache the final payload.
	responseCache.Set(message, language, route, response)

	return &models.ChatResponse{
		Response:         response,
		SessionID:        sessionID,
		DetectedLanguage: language,
		Route:            route,
		SQLLogs:          sqlLogs,
	}, nil
}

// ClassifyRoute asks the model for an intent verdict, defaulting to chat on
// any parse or transport failure.
func ClassifyRoute(ctx context.Context, query string) string {
	var decision models.RouteDecision
	if err := GetLLMJSONResponse(ctx, config.BuildRouteClassificationPrompt(query), &decision); err != nil {
		slog.Warn("Route classification failed, defaulting to chat", "error", err)
		return "chat"
	}
	switch decision.Route {
	case "sql", "rag", "chat":
		slog.Info("Route classified",
			"route", decision.Route,
			"confidence", decision.Confidence,
			"reasoning", decision.Reasoning,
		)
		return decision.Route
	default:
		return "chat"
	}
}

// handleSQLRoute covers both the payment sub-path and the search sub-path.
func handleSQLRoute(ctx context.Context, query, language string, session *SessionMemory) (string, []string, error) {
	session.SQLAgentUsed = true

	if IsPaymentQuery(query) {
		response, err := HandlePaymentQuery(ctx, query, language, session)
		return response, nil, err
	}

	// A detail request about a known unit renders the detail card without a
	// fresh search.
	if IsDetailRequest(query) {
		if unitID := ExtractUnitID(query, session); unitID != "" {
			if row := findUnitRow(session, unitID); row != nil {
				session.LastUnitID = unitID
				detail, err := BuildUnitDetail(row, language)
				return detail, nil, err
			}
		}
	}

	result, err := SearchProperties(ctx, query, language)
	if err != nil {
		return "", nil, err
	}

	if len(result.Rows) == 0 {
		return config.NoResultsApology[language], result.Logs, nil
	}

	session.LastResults = result.Rows
	session.LastSQL = result.SQL
	session.NewResultsFetched = true
	session.AlternativeSearch = result.AlternativeSearch
	session.FuzzyField = result.FuzzyField
	session.OriginalValue = result.OriginalValue
	if len(result.Rows) == 1 {
		session.LastUnitID = rowString(result.Rows[0], "unit_id")
	}

	eval := EvaluateSQLResults(ctx, query, result)
	session.LastEval = map[string]interface{}{
		"orchestrator_correct": eval.OrchestratorCorrect,
		"sql_valid":            eval.SQLValid,
		"data_quality":         eval.DataQuality,
		"need_rework":          eval.NeedRework,
		"note":                 eval.Note,
	}
	result.Logs = append(result.Logs, fmt.Sprintf("Evaluation: valid=%t quality=%t rework=%t", eval.SQLValid, eval.DataQuality, eval.NeedRework))

	carousel, err := BuildCarousel(result.Rows, language, result.AlternativeSearch)
	if err != nil {
		return "", result.Logs, err
	}
	return carousel, result.Logs, nil
}

// historyMessages converts the session's recent turns to the LLM wire form.
func historyMessages(session *SessionMemory, n int) []OpenAIMessage {
	recent := session.RecentHistory(n)
	messages := make([]OpenAIMessage, 0, len(recent))
	for _, h := range recent {
		role := h.Role
		if role != "user" && role != "assistant" {
			role = "user"
		}
		messages = append(messages, OpenAIMessage{Role: role, Content: h.Content})
	}
	return messages
}

// postProcess strips hallucinated media, applies the alternative-search
// preamble, and runs the final Franco sweep over plain-text segments.
func postProcess(ctx context.Context, response, language string, session *SessionMemory) string {
	if !HasStructuredMarker(response) {
		response = StripMediaMarkdown(response)
	}

	if session.AlternativeSearch && !HasStructuredMarker(response) && response != "" {
		if preamble, ok := config.AlternativeSearchPreamble[language]; ok {
			if !strings.Contains(response, preamble) {
				response = preamble + "\n\n" + response
			}
		}
	}

	// Franco users never see Arabic script or French leakage in plain text.
	// Structured payloads are built from the fixed label tables and stay
	// untouched.
	if language == "franco" && !HasStructuredMarker(response) {
		if arabicCharRatio(response) > 0.3 {
			if translated, err := TranslateText(ctx, response, "ar", "franco"); err == nil {
				response = translated
			}
		}
		response = ScrubFrenchWords(response)
	}

	return response
}

// logTurn writes the slog line and the Mongo audit document.
func logTurn(ctx context.Context, session *SessionMemory, message, response, route, sql string, rowCount int, start time.Time, fromCache bool) {
	duration := time.Since(start)
	slog.Info("Turn completed",
		"sessionID", session.SessionID,
		"route", route,
		"language", session.DetectedLanguage,
		"rows", rowCount,
		"fromCache", fromCache,
		"durationMS", duration.Milliseconds(),
	)

	turn := &models.ChatTurn{
		SessionID:   session.SessionID,
		UserMessage: message,
		Response:    truncate(response, 4000),
		Language:    session.DetectedLanguage,
		Route:       route,
		SQL:         sql,
		RowCount:    rowCount,
		FromCache:   fromCache,
		DurationMS:  duration.Milliseconds(),
		CreatedAt:   time.Now(),
	}

	logCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	go func() {
		defer cancel()
		SaveChatTurn(logCtx, turn)
	}()
}
