package openfoodfacts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/TheSylus/Hmmm/internal/lookup"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	productFields = "product_name,categories_tags,nutriscore_grade,ingredients_text,allergens_tags,ingredients_analysis_tags,labels_tags"

	cacheSize = 256
	cacheTTL  = time.Hour
)

// Client implements lookup.ProductLookup against the Open Food Facts API.
// Responses are cached; barcodes are immutable keys and product records
// change rarely, so an hour of staleness is acceptable.
type Client struct {
	baseURL string
	client  *http.Client
	cache   *expirable.LRU[string, *lookup.ProductInfo]
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
		cache:   expirable.NewLRU[string, *lookup.ProductInfo](cacheSize, nil, cacheTTL),
	}
}

func (c *Client) LookupBarcode(ctx context.Context, barcode string) (*lookup.ProductInfo, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, fmt.Errorf("barcode is empty")
	}

	cacheKey := "barcode:" + barcode
	if info, ok := c.cache.Get(cacheKey); ok {
		return info, nil
	}

	u := fmt.Sprintf("%s/api/v2/product/%s.json?fields=%s", c.baseURL, url.PathEscape(barcode), productFields)

	var respBody struct {
		Status  int        `json:"status"`
		Product rawProduct `json:"product"`
	}
	if err := c.getJSON(ctx, u, &respBody); err != nil {
		return nil, err
	}

	// Status 0 means the barcode is unknown to the database, which is a
	// valid empty answer, not a failure.
	if respBody.Status != 1 {
		return nil, nil
	}

	info := respBody.Product.toInfo()
	c.cache.Add(cacheKey, info)
	return info, nil
}

func (c *Client) SearchByName(ctx context.Context, name string) (*lookup.ProductInfo, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("name is empty")
	}

	cacheKey := "name:" + strings.ToLower(name)
	if info, ok := c.cache.Get(cacheKey); ok {
		return info, nil
	}

	u := fmt.Sprintf("%s/cgi/search.pl?search_terms=%s&search_simple=1&action=process&json=1&page_size=1&fields=%s",
		c.baseURL, url.QueryEscape(name), productFields)

	var respBody struct {
		Products []rawProduct `json:"products"`
	}
	if err := c.getJSON(ctx, u, &respBody); err != nil {
		return nil, err
	}

	if len(respBody.Products) == 0 {
		return nil, nil
	}

	info := respBody.Products[0].toInfo()
	c.cache.Add(cacheKey, info)
	return info, nil
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	// Open Food Facts asks API consumers to identify themselves.
	req.Header.Set("User-Agent", "Hmmm/1.0 (personal food catalog)")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call open food facts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("open food facts returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// rawProduct is the subset of the Open Food Facts product document the
// catalog consumes.
type rawProduct struct {
	ProductName             string   `json:"product_name"`
	CategoriesTags          []string `json:"categories_tags"`
	NutriscoreGrade         string   `json:"nutriscore_grade"`
	IngredientsText         string   `json:"ingredients_text"`
	AllergensTags           []string `json:"allergens_tags"`
	IngredientsAnalysisTags []string `json:"ingredients_analysis_tags"`
	LabelsTags              []string `json:"labels_tags"`
}

func (p rawProduct) toInfo() *lookup.ProductInfo {
	info := &lookup.ProductInfo{
		Name:       strings.TrimSpace(p.ProductName),
		NutriScore: p.NutriscoreGrade,
	}

	for _, tag := range p.CategoriesTags {
		if tag = stripLangPrefix(tag); tag != "" {
			info.Tags = append(info.Tags, tag)
		}
	}
	for _, tag := range p.AllergensTags {
		if tag = stripLangPrefix(tag); tag != "" {
			info.Allergens = append(info.Allergens, tag)
		}
	}
	for _, part := range strings.Split(p.IngredientsText, ",") {
		if part = strings.TrimSpace(part); part != "" {
			info.Ingredients = append(info.Ingredients, part)
		}
	}

	for _, tag := range p.IngredientsAnalysisTags {
		if tag == "en:vegan" {
			info.Vegan = true
		}
	}
	for _, tag := range p.LabelsTags {
		switch tag {
		case "en:no-lactose", "en:lactose-free":
			info.LactoseFree = true
		case "en:no-gluten", "en:gluten-free":
			info.GlutenFree = true
		}
	}

	return info
}

// stripLangPrefix removes the "en:" style language prefix Open Food Facts
// puts on taxonomy tags, and swaps dashes for spaces.
func stripLangPrefix(tag string) string {
	if idx := strings.IndexByte(tag, ':'); idx >= 0 {
		tag = tag[idx+1:]
	}
	return strings.TrimSpace(strings.ReplaceAll(tag, "-", " "))
}
