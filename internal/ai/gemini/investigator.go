package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/faridlogistics/freightcrm/internal/ai"
	"github.com/faridlogistics/freightcrm/internal/freight"
	"github.com/faridlogistics/freightcrm/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// cachedContentGenerator is satisfied by generators that can pin the
// carrier profile in a server-side content cache, so repeated runs over
// the same lead do not resend the profile payload.
type cachedContentGenerator interface {
	contentGenerator
	EnsureProfileCache(ctx context.Context, leadID, displayName, profilePayload string) (string, error)
	GenerateContentWithCache(ctx context.Context, prompt, cacheName string) (string, error)
}

var _ cachedContentGenerator = (*Generator)(nil)

// Investigator asks the model to assess a carrier's public footprint
// and intent signals from its profile.
type Investigator struct {
	generator contentGenerator
	minScore  float64
	logger    *zap.Logger
	maxLogLen int
}

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

func NewInvestigator(generator contentGenerator, logger *zap.Logger, minScore float64, maxLogLength int) *Investigator {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Investigator{
		generator: generator,
		minScore:  minScore,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (m *Investigator) Investigate(ctx context.Context, lead *freight.Lead) (*ai.VerificationAssessment, error) {
	if lead == nil {
		return nil, fmt.Errorf("lead is required")
	}

	profile := map[string]any{
		"id":         lead.ID,
		"company":    lead.CompanyName,
		"dba":        lead.DBAName,
		"mc_number":  lead.Authority.MCNumber,
		"dot_number": lead.Authority.DOTNumber,
		"summary":    lead.EmbeddingText(),
	}

	profileJSON, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal carrier profile: %w", err)
	}

	raw, err := m.generate(ctx, lead, string(profileJSON))
	if err != nil {
		return nil, err
	}

	m.logger.Debug("gemini generate content response",
		zap.String("lead_id", lead.ID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, m.maxLogLen)),
	)

	assessment, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	if m.minScore > 0 && !math.IsNaN(assessment.Score) && assessment.Score < m.minScore {
		m.logger.Debug("cleared verification flags by score threshold",
			zap.String("lead_id", lead.ID),
			zap.Float64("score", assessment.Score),
			zap.Float64("threshold", m.minScore),
		)
		assessment.SocialVerified = false
		assessment.HighIntent = false
	}

	assessment.Raw = raw
	return assessment, nil
}

// cachedProfileNote replaces the inline profile when the payload is
// delivered as cached content instead.
const cachedProfileNote = "(the carrier profile is provided as cached content)"

// generate prefers the cached-profile path when the generator supports
// it and falls back to sending the profile inline.
func (m *Investigator) generate(ctx context.Context, lead *freight.Lead, profileJSON string) (string, error) {
	cached, ok := m.generator.(cachedContentGenerator)
	if !ok {
		return m.generateInline(ctx, lead, profileJSON)
	}

	displayName := fmt.Sprintf("carrier-%s", lead.Authority.MCNumber)
	cacheName, err := cached.EnsureProfileCache(ctx, lead.ID, displayName, profileJSON)
	if err != nil {
		m.logger.Warn("profile cache unavailable, sending profile inline",
			zap.String("lead_id", lead.ID),
			zap.Error(err),
		)
		return m.generateInline(ctx, lead, profileJSON)
	}

	prompt := buildPrompt(cachedProfileNote)
	m.logger.Debug("gemini generate content request",
		zap.String("lead_id", lead.ID),
		zap.String("company", lead.CompanyName),
		zap.String("cache_name", cacheName),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, m.maxLogLen)),
	)

	return cached.GenerateContentWithCache(ctx, prompt, cacheName)
}

func (m *Investigator) generateInline(ctx context.Context, lead *freight.Lead, profileJSON string) (string, error) {
	prompt := buildPrompt(profileJSON)
	m.logger.Debug("gemini generate content request",
		zap.String("lead_id", lead.ID),
		zap.String("company", lead.CompanyName),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, m.maxLogLen)),
	)
	return m.generator.GenerateContent(ctx, prompt)
}

func buildPrompt(profileJSON string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Carrier profile:\n{{PROFILE_JSON}}\n\nJSON Response:"
	}
	return strings.ReplaceAll(template, "{{PROFILE_JSON}}", profileJSON)
}

func parseResponse(raw string) (*ai.VerificationAssessment, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = extractJSON(cleaned)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	score := coerceFloat(data["score"])
	if math.IsNaN(score) {
		score = 0
	}

	return &ai.VerificationAssessment{
		SocialVerified: coerceBool(data["social_verified"]),
		HighIntent:     coerceBool(data["high_intent"]),
		Score:          score,
		Reason:         coerceString(data["reason"]),
		WebsiteURL:     coerceString(data["website"]),
		Snippets:       coerceStrings(data["snippets"]),
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		lower := strings.ToLower(strings.TrimSpace(val))
		return lower == "true" || lower == "yes"
	case float64:
		return val != 0
	default:
		return false
	}
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

func coerceStrings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := coerceString(item); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
