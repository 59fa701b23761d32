// Package enrich runs the draft enrichment pipeline: image analysis, product
// database lookup, and translation, merged into one draft under a fixed
// precedence table. Every stage is best-effort. A failed stage degrades to a
// warning and the pipeline carries whatever was merged so far: partial data
// beats no data.
package enrich

import (
	"bytes"
	"context"
	"log/slog"
	"strings"

	"github.com/TheSylus/Hmmm/internal/domain"
	"github.com/TheSylus/Hmmm/internal/lookup"
)

// Stage identifies a pipeline step for progress notification.
type Stage string

const (
	StageAnalyze   Stage = "analyze"
	StageLookup    Stage = "lookup"
	StageTranslate Stage = "translate"
	StageMerge     Stage = "merge"
)

// Request carries one enrichment run's inputs. Draft may be pre-seeded (for
// example from an edit form or a decoded share link); Touched names the
// fields the user already edited by hand, which the pipeline must not
// overwrite.
type Request struct {
	Draft      domain.Draft
	Touched    domain.FieldSet
	Image      []byte
	ImageMIME  string
	Barcode    string
	TargetLang string
}

// Warning sources, used as metric labels and surfaced to clients alongside
// the message.
const (
	SourceAnalysis    = "analysis"
	SourceDatabase    = "database"
	SourceTranslation = "translation"
)

// Warning is a soft failure from one pipeline stage. Source identifies the
// failing collaborator so callers can account for it without parsing the
// message.
type Warning struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}

// Result is the merged draft plus everything the caller may surface: soft
// warnings from failed stages and the analyzer's crop suggestion.
type Result struct {
	Draft       domain.Draft
	BoundingBox *lookup.BoundingBox
	Warnings    []Warning
}

// Pipeline owns the three collaborator ports. Any of them may be nil, which
// simply disables that stage.
type Pipeline struct {
	analyzer   lookup.ImageAnalyzer
	products   lookup.ProductLookup
	translator lookup.Translator
	logger     *slog.Logger
}

func NewPipeline(analyzer lookup.ImageAnalyzer, products lookup.ProductLookup, translator lookup.Translator, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		analyzer:   analyzer,
		products:   products,
		translator: translator,
		logger:     logger,
	}
}

// Run executes Analyze -> Lookup -> Translate -> Merge sequentially. The
// database lookup is keyed by barcode when one was scanned, otherwise by the
// name known after analysis, which is why lookup must wait for analysis.
// onStage, if non-nil, is called as each stage starts.
func (p *Pipeline) Run(ctx context.Context, req Request, onStage func(Stage)) Result {
	notify := func(s Stage) {
		if onStage != nil {
			onStage(s)
		}
	}

	draft := req.Draft
	r := newResolver(&draft, req.Touched)
	var bounds *lookup.BoundingBox

	if p.analyzer != nil && len(req.Image) > 0 {
		notify(StageAnalyze)
		analysis, err := p.analyzer.AnalyzeImage(ctx, bytes.NewReader(req.Image), req.ImageMIME)
		if err != nil {
			p.logger.Warn("image analysis failed", "error", err)
			r.warnf(SourceAnalysis, "image analysis failed: %v", err)
		} else if analysis != nil {
			bounds = analysis.BoundingBox
			r.applyAnalysis(analysis)
		}
	}

	if p.products != nil && (strings.TrimSpace(req.Barcode) != "" || strings.TrimSpace(draft.Name) != "") {
		notify(StageLookup)
		p.lookupProduct(ctx, req.Barcode, r)
	}

	if p.translator != nil && req.TargetLang != "" {
		notify(StageTranslate)
		p.translate(ctx, req.TargetLang, r)
	}

	notify(StageMerge)
	return Result{Draft: *r.draft, BoundingBox: bounds, Warnings: r.warnings}
}

func (p *Pipeline) lookupProduct(ctx context.Context, barcode string, r *resolver) {
	var (
		info *lookup.ProductInfo
		err  error
	)

	if strings.TrimSpace(barcode) != "" {
		info, err = p.products.LookupBarcode(ctx, barcode)
	} else {
		info, err = p.products.SearchByName(ctx, r.draft.Name)
	}

	if err != nil {
		p.logger.Warn("product lookup failed", "error", err)
		r.warnf(SourceDatabase, "product lookup failed: %v", err)
		return
	}
	if info != nil {
		r.applyProduct(info)
	}
}

// translate runs the whole draft through the translator as one batch. A
// response whose length does not match the request is discarded wholesale
// and the original-language values are kept.
func (p *Pipeline) translate(ctx context.Context, targetLang string, r *resolver) {
	batch := r.buildBatch()
	if len(batch.texts) == 0 {
		return
	}

	translated, err := p.translator.Translate(ctx, batch.texts, targetLang)
	if err != nil {
		p.logger.Warn("translation failed", "error", err)
		r.warnf(SourceTranslation, "translation failed: %v", err)
		return
	}
	if len(translated) != len(batch.texts) {
		p.logger.Warn("translation discarded",
			"requested", len(batch.texts), "received", len(translated))
		r.warnf(SourceTranslation, "translation discarded: requested %d texts, received %d", len(batch.texts), len(translated))
		return
	}

	r.applyBatch(batch, translated)
}
