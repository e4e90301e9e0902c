package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiService wraps the generative-text model behind the prompt cleaner and
// the concept analyzer. Both are single blocking request/response calls: no
// retry, no caching, no streaming.
type GeminiService struct {
	client   *genai.Client
	model    *genai.GenerativeModel
	rateChan chan struct{} // Token bucket
}

const geminiCallTimeout = 60 * time.Second

func NewGeminiService(apiKey string, concurrentReqs int) (*GeminiService, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-2.0-flash-001")
	model.SetTemperature(0.3)
	model.SetTopP(0.95)

	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &GeminiService{
		client:   client,
		model:    model,
		rateChan: rateChan,
	}, nil
}

func (s *GeminiService) Close() {
	s.client.Close()
}

// acquireRate blocks until a rate slot is available
func (s *GeminiService) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Minute):
		return fmt.Errorf("timeout waiting for Gemini rate slot")
	}
}

func (s *GeminiService) releaseRate() {
	s.rateChan <- struct{}{}
}

func (s *GeminiService) generate(ctx context.Context, prompt string) (string, error) {
	if err := s.acquireRate(ctx); err != nil {
		return "", err
	}
	defer s.releaseRate()

	callCtx, cancel := context.WithTimeout(ctx, geminiCallTimeout)
	defer cancel()

	resp, err := s.model.GenerateContent(callCtx, genai.Text(prompt))
	if err != nil {
		return "", &UpstreamError{Message: fmt.Sprintf("Gemini API error: %v", err)}
	}

	return extractText(resp), nil
}

// CleanPrompt re-formats a free-text script concept into plain text: the
// title, description and structured responses are preserved verbatim, markdown
// and stray symbols are stripped, and structured elements get one-line
// spacing. The concept content is forwarded faithfully and unchanged.
func (s *GeminiService) CleanPrompt(ctx context.Context, content string) (string, error) {
	prompt := buildCleanPrompt(content)

	text, err := s.generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	return stripMarkdown(text), nil
}

func buildCleanPrompt(content string) string {
	return `Structured Title, Description, and Responses Extraction from Script Concept

Rules:
- Extract only the exact same Title, Description, and Responses elements from the provided script concept.
- Do not add, modify, or generate any new Title, Description, and Responses.
- Ensure a well-structured plain text output without markdown or unnecessary symbols.

Response Format:
[Exact Same Title]

[Exact Same Description]

Structured Response:
[Structured Response] with one-line spacing between each element. Remove any unnecessary symbols or markdown and add one-line spacing.

Script Concept to Analyze: ` + content
}

// ConceptVerdict is the analyzer's strict-JSON reply.
type ConceptVerdict struct {
	IsValid  bool   `json:"isValid"`
	Feedback string `json:"feedback"`
}

// AnalyzeScriptConcept asks the model whether a script concept carries enough
// context and structure to yield a coherent scene.
func (s *GeminiService) AnalyzeScriptConcept(ctx context.Context, content string) (*ConceptVerdict, error) {
	prompt := `You are an advanced AI model specializing in structured data analysis. Your task is to evaluate the given script concept and determine whether it is valid for generating a structured scene.

Evaluation Criteria:
- A valid script concept must provide sufficient context, structure, or details to generate a coherent scene.
- If the provided concept meets these requirements, classify it as valid.
- If the concept lacks clarity, coherence, or essential details, classify it as invalid.

Instructions:
- Respond strictly in valid JSON format with the shape {"isValid": boolean, "feedback": string}.
- Your response must not contain markdown formatting, extra punctuation, or unnecessary characters.

Script Concept to Analyze: ` + content

	text, err := s.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	verdict := &ConceptVerdict{}
	cleaned := stripJSONFences(text)
	if err := json.Unmarshal([]byte(cleaned), verdict); err != nil {
		return nil, &UpstreamError{Message: fmt.Sprintf("unparseable analyzer response: %v", err)}
	}
	return verdict, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}

// stripJSONFences removes the ```json fences the model sometimes wraps
// strict-JSON replies in.
func stripJSONFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// stripMarkdown sweeps residual markdown delimiters out of a plain-text
// response: code fences, heading markers, emphasis asterisks and backticks.
// Word content and line structure are left alone.
func stripMarkdown(text string) string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			continue
		}
		for strings.HasPrefix(trimmed, "#") {
			trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, "#"))
		}
		trimmed = strings.ReplaceAll(trimmed, "**", "")
		trimmed = strings.ReplaceAll(trimmed, "*", "")
		trimmed = strings.ReplaceAll(trimmed, "`", "")
		out = append(out, trimmed)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
