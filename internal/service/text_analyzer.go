package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"persona-shop/internal/domain"
	"persona-shop/internal/llm"
)

const (
	// fallbackReasoning marca salida degradada para que el cliente pueda mostrarlo con transparencia.
	fallbackReasoning = "Basit metin analizi (API kullanılamadı)"
	noDataReasoning   = "Analiz için yeterli veri yok"

	// minCombinedLength: debajo de esto no vale la pena el round trip al LLM.
	minCombinedLength = 10

	maxReasoningLen = 200
)

const analyzerSystemPrompt = `Eres un psicologo experto en inferencia de personalidad a partir de texto. Respondes siempre y unicamente con JSON.`

const analyzerPromptTemplate = `Analiza el siguiente texto escrito por un usuario de una tienda online y estima sus rasgos Big Five.

Texto: "%s"

Rasgos (0-100 cada uno):
1. openness: apertura a la experiencia, curiosidad, interes por lo nuevo
2. conscientiousness: orden, planificacion, atencion al detalle
3. extraversion: energia social, busqueda de interaccion
4. agreeableness: cooperacion, empatia
5. neuroticism: ansiedad, inestabilidad emocional

Devuelve SOLO un JSON con este formato exacto:
{"openness": 50, "conscientiousness": 50, "extraversion": 50, "agreeableness": 50, "neuroticism": 50, "confidence": 50, "reasoning": "..."}

confidence (0-100) refleja cuanta señal da el texto. reasoning: explicacion breve, maximo 200 caracteres.`

// TextAnalyzer infiere PersonalityInsights desde texto del usuario vía el
// servicio externo de clasificación, con fallback heurístico local cuando la
// llamada falla o el input es demasiado corto. Nunca devuelve error al
// caller ni reintenta: degradar a la heurística es siempre aceptable.
type TextAnalyzer struct {
	llmClient llm.Client
	timeout   time.Duration
	logger    *zap.Logger
}

func NewTextAnalyzer(llmClient llm.Client, timeout time.Duration, logger *zap.Logger) *TextAnalyzer {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &TextAnalyzer{
		llmClient: llmClient,
		timeout:   timeout,
		logger:    logger,
	}
}

// AnalyzeText analiza un texto libre. Cualquier falla del servicio externo
// (timeout, red, payload inválido) se trata igual: fallback local.
func (a *TextAnalyzer) AnalyzeText(ctx context.Context, text string) domain.PersonalityInsights {
	if a.llmClient == nil {
		return FallbackInsights(text)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	prompt := fmt.Sprintf(analyzerPromptTemplate, strings.TrimSpace(text))
	raw, err := a.llmClient.Generate(ctx, analyzerSystemPrompt, prompt)
	if err != nil {
		a.logger.Warn("text analysis llm call failed, using fallback", zap.Error(err))
		return FallbackInsights(text)
	}

	insights, ok := parseInsights(raw)
	if !ok {
		a.logger.Warn("text analysis payload unparseable, using fallback")
		return FallbackInsights(text)
	}
	return insights
}

// AnalyzeQueries combina varias búsquedas en un solo blob y lo analiza.
// Sin queries devuelve el perfil neutro con confianza 0; con muy poco texto
// va directo al fallback sin tocar el servicio externo.
func (a *TextAnalyzer) AnalyzeQueries(ctx context.Context, queries []string) domain.PersonalityInsights {
	queries = domain.DedupeSearchTerms(queries)
	if len(queries) == 0 {
		return domain.PersonalityInsights{
			Openness:          50,
			Conscientiousness: 50,
			Extraversion:      50,
			Agreeableness:     50,
			Neuroticism:       50,
			Confidence:        0,
			Reasoning:         noDataReasoning,
		}
	}

	combined := strings.Join(queries, ". ")
	if len(combined) < minCombinedLength {
		return FallbackInsights(combined)
	}

	return a.AnalyzeText(ctx, combined)
}

// insightsPayload usa punteros para distinguir campo ausente de cero: un
// payload al que le falte cualquiera de los 7 campos dispara el fallback en
// vez de confiar en la validación del servicio.
type insightsPayload struct {
	Openness          *float64 `json:"openness"`
	Conscientiousness *float64 `json:"conscientiousness"`
	Extraversion      *float64 `json:"extraversion"`
	Agreeableness     *float64 `json:"agreeableness"`
	Neuroticism       *float64 `json:"neuroticism"`
	Confidence        *float64 `json:"confidence"`
	Reasoning         *string  `json:"reasoning"`
}

func parseInsights(raw string) (domain.PersonalityInsights, bool) {
	cleaned := cleanLLMJSONResponse(raw)
	jsonObj := extractFirstJSONObject(cleaned)
	if jsonObj == "" {
		jsonObj = extractFirstJSONObject(raw)
	}
	if jsonObj == "" {
		return domain.PersonalityInsights{}, false
	}

	var p insightsPayload
	if err := json.Unmarshal([]byte(jsonObj), &p); err != nil {
		return domain.PersonalityInsights{}, false
	}
	if p.Openness == nil || p.Conscientiousness == nil || p.Extraversion == nil ||
		p.Agreeableness == nil || p.Neuroticism == nil || p.Confidence == nil || p.Reasoning == nil {
		return domain.PersonalityInsights{}, false
	}

	return domain.PersonalityInsights{
		Openness:          clampFloatScore(*p.Openness),
		Conscientiousness: clampFloatScore(*p.Conscientiousness),
		Extraversion:      clampFloatScore(*p.Extraversion),
		Agreeableness:     clampFloatScore(*p.Agreeableness),
		Neuroticism:       clampFloatScore(*p.Neuroticism),
		Confidence:        clampFloatScore(*p.Confidence),
		Reasoning:         truncateReasoning(*p.Reasoning),
	}, true
}

// clampFloatScore redondea y acota a [0,100]; NaN cuenta como 0.
func clampFloatScore(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return domain.ClampScore(int(math.Round(v)))
}

func truncateReasoning(s string) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= maxReasoningLen {
		return s
	}
	return string(runes[:maxReasoningLen])
}

var (
	reFallbackQuestion  = regexp.MustCompile(`\?|nasıl|neden|ne|kim|nerede`)
	reFallbackEmotional = regexp.MustCompile(`seviyorum|nefret|korku|endişe|mutlu|üzgün`)
	reFallbackSocial    = regexp.MustCompile(`arkadaş|sosyal|parti|birlikte|grup`)
	reFallbackDetail    = regexp.MustCompile(`detay|özellik|karşılaştır|analiz`)
)

// FallbackInsights es la heurística local determinista. Confianza fija en 30
// para señalizar modo degradado.
func FallbackInsights(text string) domain.PersonalityInsights {
	lower := strings.ToLower(text)
	wordCount := len(strings.Fields(text))

	hasQuestions := reFallbackQuestion.MatchString(lower)
	hasEmotional := reFallbackEmotional.MatchString(lower)
	hasSpecific := wordCount > 5
	hasSocial := reFallbackSocial.MatchString(lower)
	hasDetail := reFallbackDetail.MatchString(lower)

	insights := domain.PersonalityInsights{
		Openness:          50,
		Conscientiousness: 50,
		Extraversion:      50,
		Agreeableness:     50,
		Neuroticism:       45,
		Confidence:        30,
		Reasoning:         fallbackReasoning,
	}
	if hasQuestions {
		insights.Openness = 65
	}
	if hasDetail || hasSpecific {
		insights.Conscientiousness = 65
	}
	if hasSocial {
		insights.Extraversion = 65
	}
	if hasEmotional {
		insights.Neuroticism = 60
	}
	return insights
}
