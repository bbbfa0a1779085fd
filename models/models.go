package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// ChatResponse is what the frontend renders. Response may start with a
// structured marker (<<PROPERTY_CAROUSEL_DATA>>, <<PAYMENT_PLAN_DATA>> or
// ###UNIT_DETAIL###) followed by JSON.
type ChatResponse struct {
	Response         string   `json:"response"`
	SessionID        string   `json:"session_id"`
	DetectedLanguage string   `json:"detected_language"`
	Route            string   `json:"route"`
	FromCache        bool     `json:"from_cache"`
	SQLLogs          []string `json:"sql_logs,omitempty"`
}

// ChatTurn is the audit record persisted to Mongo for every handled turn.
type ChatTurn struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID   string             `bson:"session_id" json:"session_id"`
	UserMessage string             `bson:"user_message" json:"user_message"`
	Response    string             `bson:"response" json:"response"`
	Language    string             `bson:"language" json:"language"`
	Route       string             `bson:"route" json:"route"`
	SQL         string             `bson:"sql,omitempty" json:"sql,omitempty"`
	RowCount    int                `bson:"row_count" json:"row_count"`
	FromCache   bool               `bson:"from_cache" json:"from_cache"`
	DurationMS  int64              `bson:"duration_ms" json:"duration_ms"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// KnowledgeDocument is a chunk of the RAG knowledge base with its embedding.
type KnowledgeDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Source    string             `bson:"source" json:"source"`
	ChunkID   int                `bson:"chunk_id" json:"chunk_id"`
	Content   string             `bson:"content" json:"content"`
	Embedding []float64          `bson:"embedding" json:"-"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// KnowledgeUploadRequest is the admin body for adding knowledge documents.
type KnowledgeUploadRequest struct {
	Source  string `json:"source"`
	Content string `json:"content"`
}

// RouteDecision is the parsed output of the intent classifier.
type RouteDecision struct {
	Route      string  `json:"route"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// LanguageDetection is the parsed output of the LLM language detector.
type LanguageDetection struct {
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// SQLEvaluation is the evaluator's verdict on a finished SQL turn.
type SQLEvaluation struct {
	OrchestratorCorrect bool   `json:"orchestrator_correct"`
	SQLValid            bool   `json:"sql_valid"`
	DataQuality         bool   `json:"data_quality"`
	NeedRework          bool   `json:"need_rework"`
	Note                string `json:"note"`
}

// RAGEvaluation is the evaluator's verdict on retrieved knowledge chunks.
type RAGEvaluation struct {
	OrchestratorCorrect bool    `json:"orchestrator_correct"`
	ResultsRelevant     bool    `json:"results_relevant"`
	ContentQuality      bool    `json:"content_quality"`
	InformationExists   bool    `json:"information_exists"`
	Confidence          float64 `json:"confidence"`
	Note                string  `json:"note"`
}

// PropertyCard is one entry of the carousel JSON payload.
type PropertyCard struct {
	Option     int               `json:"option"`
	UnitID     string            `json:"unit_id"`
	Title      string            `json:"title"`
	Image      string            `json:"image"`
	Fields     map[string]string `json:"fields"`
	FieldOrder []string          `json:"field_order"`
	Price      string            `json:"price"`
	Status     string            `json:"status"`
	Discount   *CardDiscount     `json:"discount,omitempty"`
}

// CardDiscount summarizes an active promo on a carousel card.
type CardDiscount struct {
	Percent         float64 `json:"percent"`
	DiscountedPrice string  `json:"discounted_price"`
	PromoText       string  `json:"promo_text,omitempty"`
}

// CarouselData is the payload behind <<PROPERTY_CAROUSEL_DATA>>.
type CarouselData struct {
	Type              string         `json:"type"`
	Language          string         `json:"language"`
	AlternativeSearch bool           `json:"alternative_search"`
	Preamble          string         `json:"preamble,omitempty"`
	Properties        []PropertyCard `json:"properties"`
}

// UnitDetailData is the payload between ###UNIT_DETAIL### markers.
type UnitDetailData struct {
	Type     string            `json:"type"`
	Language string            `json:"language"`
	UnitID   string            `json:"unit_id"`
	Title    string            `json:"title"`
	Image    string            `json:"image"`
	Fields   map[string]string `json:"fields"`
	Order    []string          `json:"field_order"`
}

// PaymentPlanBreakdown is one computed plan inside the payment payload.
type PaymentPlanBreakdown struct {
	Years              int     `json:"years"`
	Months             int     `json:"months"`
	OriginalPrice      float64 `json:"original_price"`
	DiscountPercent    float64 `json:"discount_percent"`
	DiscountSource     string  `json:"discount_source,omitempty"`
	DiscountedPrice    float64 `json:"discounted_price"`
	DownPayment        float64 `json:"down_payment"`
	Deposit            float64 `json:"deposit"`
	MonthlyInstallment float64 `json:"monthly_installment"`
}

// PaymentPlanData is the payload behind <<PAYMENT_PLAN_DATA>>.
type PaymentPlanData struct {
	Type     string                 `json:"type"`
	Language string                 `json:"language"`
	UnitID   string                 `json:"unit_id"`
	Title    string                 `json:"title"`
	Plans    []PaymentPlanBreakdown `json:"plans"`
}
