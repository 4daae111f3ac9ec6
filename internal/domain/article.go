package domain

import "time"

// Entry is one raw item pulled from a feed, prior to any validation.
type Entry struct {
	GUID        string
	Link        string
	Title       string
	Description string
	Summary     string
	Published   string
	PublishedAt time.Time
	Author      string
	ImageURL    string
	Tags        []string
}

// CategoryScore is one taxonomy label with classifier confidence in [0,1].
type CategoryScore struct {
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

// Difficulty grades enriched content for readers.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "Beginner"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
)

// Rating is the audience-restriction scale for enriched content.
type Rating string

const (
	RatingU  Rating = "U"
	RatingUA Rating = "UA"
	RatingA  Rating = "A"
	RatingS  Rating = "S"
)

// EnrichedContent is the generative rewrite of an article for presentation.
// Empty content means enrichment failed and the article must not persist.
type EnrichedContent struct {
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Tags       []string   `json:"tags"`
	Difficulty Difficulty `json:"difficulty"`
	Rating     Rating     `json:"rating"`
}

// Empty reports whether enrichment produced no usable content.
func (e EnrichedContent) Empty() bool {
	return e.Content == ""
}

// Article is a validated, extracted, classified entry accepted for
// enrichment. GUID is the dedup key across runs and within a run.
type Article struct {
	GUID          string          `json:"guid"`
	Title         string          `json:"title"`
	Link          string          `json:"link"`
	Published     string          `json:"published"`
	PublishedAt   time.Time       `json:"-"`
	Summary       string          `json:"summary"`
	Description   string          `json:"description"`
	ImageURL      string          `json:"image_url"`
	Author        string          `json:"author"`
	Source        string          `json:"source"`
	Content       string          `json:"content"`
	RSSCategories []string        `json:"rss_categories"`
	Categories    []CategoryScore `json:"categories"`
	Enriched      EnrichedContent `json:"LLM_CONTENT"`
	Likes         int             `json:"likes"`
	Views         int             `json:"views"`
}

// MinContentLength is the shortest extracted text accepted for ingestion.
const MinContentLength = 200

// MinConfidence filters classifier labels before persistence.
const MinConfidence = 0.2
