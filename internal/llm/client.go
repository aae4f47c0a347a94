package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// Turn is one prior exchange in a tutoring conversation.
type Turn struct {
	Role    string
	Message string
}

const (
	// RoleStudent marks a turn authored by the student.
	RoleStudent = "student"
	// RoleTutor marks a turn authored by the tutor.
	RoleTutor = "tutor"
)

// Client generates tutor replies for student messages.
type Client interface {
	TutorReply(ctx context.Context, message string, history []Turn) (string, error)
}

// Sentinel errors used by FriendlyReply to pick a student-facing fallback.
var (
	ErrInvalidKey = errors.New("llm: invalid api key")
	ErrQuota      = errors.New("llm: quota or rate limit exceeded")
	ErrPermission = errors.New("llm: permission denied")
)

// historyTurns bounds how many prior turns are included in the prompt.
const historyTurns = 8

// emptyReply is returned when the model produces no usable text.
const emptyReply = "I'm not sure how to respond to that. Could you rephrase your question? 🤔"

const systemInstruction = `You are the Coherence AI Tutor for Coherence Education.

Your role is to guide students (ages 8-18) through project-based learning,
helping them explore their Genius Zone (where passions, talents, and values intersect).

Key principles:
- Be patient, encouraging, and playful
- Ask questions that spark curiosity instead of just giving answers
- Adapt explanations for the student's age level (8-18 years old)
- Encourage creativity, kindness, and self-confidence
- Tie learning back to life skills (career, relationships, money, health) when natural
- Keep answers concise, clear, and supportive (2-4 paragraphs max)
- Use friendly emojis occasionally to keep conversations engaging 😊
- If a student asks about harmful topics, gently redirect to positive learning
- Focus on understanding WHY the student is asking, not just what they're asking
- Celebrate small wins and progress
- Make connections between different subjects when relevant

FORMATTING RULES:
- Use **bold** for emphasis and key concepts
- For lists, use bullet points with • symbol (not * or -)
- Use numbered lists (1. 2. 3.) for step-by-step instructions
- Don't wrap questions in quotation marks
- Use clear, direct language
- Break up long responses with line breaks for readability
- Use *italics* for emphasis on specific words
- Use ` + "`code`" + ` formatting for technical terms or examples

RESPONSE STRUCTURE:
- Start with enthusiasm and connection
- Provide clear, actionable information
- End with an engaging question or next step
- Keep formatting clean and readable

Remember: You're not just answering questions, you're helping students discover
their unique genius and build confidence in their learning journey.`

// HTTPClient talks to a Gemini-style generateContent endpoint.
type HTTPClient struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
}

// NewHTTPClient creates a tutor reply client for the given endpoint and model.
func NewHTTPClient(apiKey, model, endpoint string) *HTTPClient {
	return &HTTPClient{
		apiKey:     apiKey,
		model:      model,
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type generatePart struct {
	Text string `json:"text"`
}

type generateContent struct {
	Role  string         `json:"role,omitempty"`
	Parts []generatePart `json:"parts"`
}

type generateConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	TopP            float64 `json:"topP,omitempty"`
	TopK            int     `json:"topK,omitempty"`
}

type generateRequest struct {
	SystemInstruction *generateContent  `json:"system_instruction,omitempty"`
	Contents          []generateContent `json:"contents"`
	GenerationConfig  generateConfig    `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []generatePart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error struct {
		Code    int    `json:"code"`
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// TutorReply generates a reply to the student's message, folding the most
// recent conversation turns into the prompt.
func (c *HTTPClient) TutorReply(ctx context.Context, message string, history []Turn) (string, error) {
	prompt := buildPrompt(message, history)

	reqBody := generateRequest{
		SystemInstruction: &generateContent{Parts: []generatePart{{Text: systemInstruction}}},
		Contents: []generateContent{
			{Role: "user", Parts: []generatePart{{Text: prompt}}},
		},
		GenerationConfig: generateConfig{
			Temperature:     0.7,
			MaxOutputTokens: 800,
			TopP:            0.95,
			TopK:            40,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.endpoint, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", classifyAPIError(resp.StatusCode, body)
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	text := candidateText(genResp)
	if strings.TrimSpace(text) == "" {
		log.Warn("llm: empty candidate text, returning rephrase prompt")
		return emptyReply, nil
	}
	return text, nil
}

func buildPrompt(message string, history []Turn) string {
	if len(history) > historyTurns {
		history = history[len(history)-historyTurns:]
	}
	parts := make([]string, 0, len(history)+1)
	for _, turn := range history {
		label := "Tutor"
		if turn.Role == RoleStudent {
			label = "Student"
		}
		parts = append(parts, label+": "+turn.Message)
	}
	parts = append(parts, "Student: "+message)
	return strings.Join(parts, "\n\n")
}

func candidateText(resp generateResponse) string {
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			sb.WriteString(part.Text)
		}
		break
	}
	return sb.String()
}

func classifyAPIError(status int, body []byte) error {
	lower := strings.ToLower(string(body))
	switch {
	case strings.Contains(lower, "api_key_invalid") || strings.Contains(lower, "invalid api key"):
		return fmt.Errorf("%w: status %d", ErrInvalidKey, status)
	case status == http.StatusTooManyRequests || strings.Contains(lower, "quota") || strings.Contains(lower, "rate limit"):
		return fmt.Errorf("%w: status %d", ErrQuota, status)
	case status == http.StatusForbidden || strings.Contains(lower, "permission"):
		return fmt.Errorf("%w: status %d", ErrPermission, status)
	default:
		return fmt.Errorf("llm: api error: status %d, body: %s", status, truncate(lower, 200))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// FriendlyReply maps a generation error to a student-facing fallback message.
func FriendlyReply(err error) string {
	switch {
	case errors.Is(err, ErrInvalidKey):
		return "Configuration error. Please contact your teacher! 🔧"
	case errors.Is(err, ErrQuota):
		return "I'm getting too many requests right now. Please wait a minute and try again! ⏰"
	case errors.Is(err, ErrPermission):
		return "I don't have permission to respond right now. Please contact your teacher! 🔒"
	default:
		return "I'm having a little trouble thinking right now 🤔 Could you try asking your question again? If this keeps happening, let your teacher know!"
	}
}
