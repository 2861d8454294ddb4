// Package recipe imports recipes from the web into a household cookbook.
package recipe

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"text/template"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"meal-planner/internal/llm"
	"meal-planner/internal/meal"
	"meal-planner/internal/shared"
)

var (
	ErrInvalidURL = errors.New("invalid recipe url")
	ErrFetch      = errors.New("failed to fetch recipe page")
	ErrNotARecipe = errors.New("page does not contain a usable recipe")
)

const (
	maxPageBytes = 2 << 20
	maxTextRunes = 20000
)

//go:embed import_prompt.md
var importPrompt string

var importTmpl = template.Must(template.New("import").Parse(importPrompt))

// Importer fetches recipe pages and turns them into structured recipes.
type Importer struct {
	textGen    llm.TextGenerator
	httpClient *http.Client
	logger     *zap.Logger
}

// NewImporter creates an importer. A nil httpClient gets a 15 second timeout.
func NewImporter(textGen llm.TextGenerator, httpClient *http.Client, logger *zap.Logger) *Importer {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{textGen: textGen, httpClient: httpClient, logger: logger}
}

// ImportURL fetches rawURL, extracts the recipe with the LLM and validates it.
func (im *Importer) ImportURL(ctx context.Context, rawURL string) (meal.Recipe, shared.AgentMeta, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return meal.Recipe{}, shared.AgentMeta{}, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	page, err := im.fetchAndClean(ctx, u.String())
	if err != nil {
		return meal.Recipe{}, shared.AgentMeta{}, err
	}

	var prompt bytes.Buffer
	err = importTmpl.Execute(&prompt, struct {
		URL            string
		Text           string
		StructuredData string
		Categories     string
	}{
		URL:            u.String(),
		Text:           page.text,
		StructuredData: page.structured,
		Categories:     categoryList(),
	})
	if err != nil {
		return meal.Recipe{}, shared.AgentMeta{}, fmt.Errorf("failed to render import prompt: %w", err)
	}

	start := time.Now()
	resp, err := im.textGen.GenerateContent(ctx, prompt.String())
	if err != nil {
		return meal.Recipe{}, shared.AgentMeta{}, fmt.Errorf("ai extraction failed: %w", err)
	}
	meta := shared.AgentMeta{AgentName: "Importer", Usage: resp.Usage, Latency: time.Since(start)}

	r, err := parseRecipe(resp.Content)
	if err != nil {
		return meal.Recipe{}, meta, err
	}

	im.logger.Info("recipe imported", zap.String("url", u.String()), zap.String("title", r.Title))
	return r, meta, nil
}

type cleanedPage struct {
	text       string
	structured string
}

func (im *Importer) fetchAndClean(ctx context.Context, pageURL string) (cleanedPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return cleanedPage{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", "meal-planner/1.0 (+recipe import)")

	resp, err := im.httpClient.Do(req)
	if err != nil {
		return cleanedPage{}, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return cleanedPage{}, fmt.Errorf("%w: status %d", ErrFetch, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return cleanedPage{}, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	// Recipe sites usually embed schema.org Recipe data; keep it before the
	// scripts are stripped.
	var structured []string
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		if txt := strings.TrimSpace(s.Text()); strings.Contains(txt, "Recipe") {
			structured = append(structured, txt)
		}
	})

	doc.Find("script, style, noscript, nav, header, footer, iframe, form, aside, .ads, #ads, .comments").Remove()

	text := strings.Join(strings.Fields(doc.Find("body").Text()), " ")
	if text == "" && len(structured) == 0 {
		return cleanedPage{}, ErrNotARecipe
	}

	return cleanedPage{
		text:       truncate(text, maxTextRunes),
		structured: truncate(strings.Join(structured, "\n"), maxTextRunes),
	}, nil
}

func parseRecipe(content string) (meal.Recipe, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return meal.Recipe{}, fmt.Errorf("%w: response contains no JSON object", ErrNotARecipe)
	}

	var r meal.Recipe
	if err := json.Unmarshal([]byte(content[start:end+1]), &r); err != nil {
		return meal.Recipe{}, fmt.Errorf("%w: failed to parse AI response: %v", ErrNotARecipe, err)
	}

	if strings.TrimSpace(r.Title) == "" {
		return meal.Recipe{}, fmt.Errorf("%w: missing title", ErrNotARecipe)
	}
	if len(r.Ingredients) == 0 {
		return meal.Recipe{}, fmt.Errorf("%w: no ingredients", ErrNotARecipe)
	}
	for i, ing := range r.Ingredients {
		if err := ing.Validate(); err != nil {
			return meal.Recipe{}, fmt.Errorf("%w: ingredient %d: %v", ErrNotARecipe, i, err)
		}
	}
	if !r.Difficulty.Valid() {
		r.Difficulty = meal.Medium
	}
	// Cookbook recipes are not placed in a week yet.
	r.Day = ""
	r.MealType = ""
	return r, nil
}

func categoryList() string {
	names := make([]string, len(meal.Categories))
	for i, c := range meal.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
