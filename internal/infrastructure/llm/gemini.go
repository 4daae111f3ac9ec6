package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/saffan19/MindScroll/internal/domain"
	"github.com/saffan19/MindScroll/internal/ports"
)

const enrichPrompt = `You are given the following reference data. Your task is to create a short, engaging, and entertaining post from it.

The post will later be converted to a voice format, so it must:
- Be conversational and engaging
- Be concise while retaining the essence of the reference data
- You can add more relevant information if needed, but it must be relevant to the topic
- Use a friendly and approachable tone
- Avoid technical jargon or complex language

Return your answer strictly as a JSON object with these keys:
- title: A catchy, relevant title for the post
- content: The engaging and concise content for the post
- tags: A list of 3-7 relevant tags
- difficulty: One of ["Beginner", "Intermediate", "Advanced"]
- rating: One of ["U", "UA", "A", "S"]

Here is your data:

`

// Client rewrites articles through a Gemini-style generateContent endpoint.
// It owns credential rotation: any endpoint failure advances the key ring
// and retries the same call, until the ring reports exhaustion.
type Client struct {
	endpoint string
	model    string
	ring     *KeyRing
	http     *http.Client
	logger   *slog.Logger
}

var _ ports.Enricher = (*Client)(nil)

// NewClient builds an enrichment client from endpoint configuration and an
// ordered credential ring.
func NewClient(endpoint, model string, ring *KeyRing, logger *slog.Logger) *Client {
	return &Client{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		model:    model,
		ring:     ring,
		http:     &http.Client{Timeout: 60 * time.Second},
		logger:   logger,
	}
}

// enrichmentReply mirrors the JSON contract of the generative response.
type enrichmentReply struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Tags       []string `json:"tags"`
	Difficulty string   `json:"difficulty"`
	Rating     string   `json:"rating"`
}

// Enrich sends the prompt plus the JSON-serialized article and parses the
// model reply. A malformed reply is a content-shape failure: it returns an
// empty EnrichedContent with a nil error and does not advance rotation.
func (c *Client) Enrich(ctx context.Context, article domain.Article) (domain.EnrichedContent, error) {
	prompt, err := buildPrompt(article)
	if err != nil {
		return domain.EnrichedContent{}, fmt.Errorf("build prompt for %s: %w", article.GUID, err)
	}

	for {
		text, callErr := c.generate(ctx, c.ring.Current(), prompt)
		if callErr != nil {
			if ctx.Err() != nil {
				return domain.EnrichedContent{}, ctx.Err()
			}
			c.debug("generate call failed, rotating key", "guid", article.GUID, "key_index", c.ring.Index(), "error", callErr)
			if advErr := c.ring.Advance(); advErr != nil {
				return domain.EnrichedContent{}, advErr
			}
			continue
		}

		return parseReply(text), nil
	}
}

// buildPrompt serializes the article fields the model should see. The
// counters and any previous enrichment are excluded.
func buildPrompt(article domain.Article) (string, error) {
	payload := map[string]any{
		"guid":           article.GUID,
		"title":          article.Title,
		"link":           article.Link,
		"published":      article.Published,
		"summary":        article.Summary,
		"description":    article.Description,
		"image_url":      article.ImageURL,
		"author":         article.Author,
		"source":         article.Source,
		"content":        article.Content,
		"rss_categories": article.RSSCategories,
		"categories":     article.Categories,
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}

	return enrichPrompt + string(data) + "\n", nil
}

// parseReply locates and decodes the JSON object in the model output.
// Anything unusable maps to the empty EnrichedContent.
func parseReply(text string) domain.EnrichedContent {
	raw, err := ExtractJSONObject(text)
	if err != nil {
		return domain.EnrichedContent{}
	}

	var reply enrichmentReply
	if err := json.Unmarshal([]byte(raw), &reply); err != nil {
		return domain.EnrichedContent{}
	}

	if reply.Content == "" || len(reply.Tags) < 3 {
		return domain.EnrichedContent{}
	}
	if len(reply.Tags) > 7 {
		reply.Tags = reply.Tags[:7]
	}

	difficulty, ok := normalizeDifficulty(reply.Difficulty)
	if !ok {
		return domain.EnrichedContent{}
	}
	rating, ok := normalizeRating(reply.Rating)
	if !ok {
		return domain.EnrichedContent{}
	}

	return domain.EnrichedContent{
		Title:      reply.Title,
		Content:    reply.Content,
		Tags:       reply.Tags,
		Difficulty: difficulty,
		Rating:     rating,
	}
}

// normalizeDifficulty accepts both the current scale and the legacy
// easy/medium/hard scale still produced by older prompts.
func normalizeDifficulty(value string) (domain.Difficulty, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "beginner", "easy":
		return domain.DifficultyBeginner, true
	case "intermediate", "medium":
		return domain.DifficultyIntermediate, true
	case "advanced", "hard":
		return domain.DifficultyAdvanced, true
	default:
		return "", false
	}
}

func normalizeRating(value string) (domain.Rating, bool) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "U":
		return domain.RatingU, true
	case "UA":
		return domain.RatingUA, true
	case "A":
		return domain.RatingA, true
	case "S":
		return domain.RatingS, true
	default:
		return "", false
	}
}

type generatePart struct {
	Text string `json:"text"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generateRequest struct {
	Contents []generateContent `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content generateContent `json:"content"`
	} `json:"candidates"`
}

func (c *Client) generate(ctx context.Context, apiKey, prompt string) (string, error) {
	reqBody := generateRequest{
		Contents: []generateContent{{Parts: []generatePart{{Text: prompt}}}},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent", c.endpoint, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("generative API %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var gr generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty generative response")
	}

	return gr.Candidates[0].Content.Parts[0].Text, nil
}

func (c *Client) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
