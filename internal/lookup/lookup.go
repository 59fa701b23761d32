// Package lookup defines the external enrichment capabilities the draft
// pipeline consumes: AI image analysis, product database lookup, and text
// translation. All three are best-effort collaborators; any field of a
// result may be absent, and absence is valid data, not an error.
package lookup

import (
	"context"
	"io"
)

// AnalysisPrompt is the shared prompt used by all image-analysis adapters.
const AnalysisPrompt = `Analyze this image of a food product. Identify the product's full name,
provide up to 5 relevant tags, and find the Nutri-Score (A-E) if visible.
Also locate the primary food product and return its bounding box with x, y,
width, and height normalized between 0.0 and 1.0.
Respond with a single JSON object of this shape and nothing else:
{"name": "...", "tags": ["..."], "nutriScore": "A", "boundingBox": {"x": 0.1, "y": 0.1, "width": 0.5, "height": 0.5}}
Use null for any field you cannot determine.`

// BoundingBox is a normalized crop suggestion for the primary product in an
// analyzed photo.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ImageAnalysis is the partial record an image analyzer produces. NutriScore
// is carried raw; the merge resolver validates it against the A-E enum.
type ImageAnalysis struct {
	Name        string       `json:"name"`
	Tags        []string     `json:"tags"`
	NutriScore  string       `json:"nutriScore"`
	BoundingBox *BoundingBox `json:"boundingBox"`
}

// ProductInfo is the partial record a product database lookup produces.
type ProductInfo struct {
	Name        string
	Tags        []string
	NutriScore  string
	Ingredients []string
	Allergens   []string
	LactoseFree bool
	Vegan       bool
	GlutenFree  bool
}

type ImageAnalyzer interface {
	AnalyzeImage(ctx context.Context, r io.Reader, mimeType string) (*ImageAnalysis, error)
}

type ProductLookup interface {
	// LookupBarcode resolves a scanned barcode. A product that is simply not
	// in the database is (nil, nil), not an error.
	LookupBarcode(ctx context.Context, barcode string) (*ProductInfo, error)
	// SearchByName resolves the best match for a free-text product name.
	SearchByName(ctx context.Context, name string) (*ProductInfo, error)
}

type Translator interface {
	// Translate returns the texts translated to targetLang. The contract is
	// that the output length equals the input length; callers discard any
	// response violating that and keep the original-language texts.
	Translate(ctx context.Context, texts []string, targetLang string) ([]string, error)
}
