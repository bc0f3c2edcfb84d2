// Package ingest turns feed items into stored documents: hydrate the article
// text, extract entities, persist through the relational store, and push
// best-effort copies to the vector index and the S3 archive.
package ingest

import (
	"context"
	"strings"
	"time"

	"newsgraph/config"
	"newsgraph/index"
	"newsgraph/logger"
	"newsgraph/nlp"
	"newsgraph/store"
	"newsgraph/types"

	"github.com/google/uuid"
)

// ArticleFetcher hydrates a single article URL.
type ArticleFetcher interface {
	FetchArticle(rawURL string) types.ArticlePage
}

// DocWriter is the slice of the store the pipeline writes through.
type DocWriter interface {
	UpsertDocument(ctx context.Context, doc *store.Document) (uuid.UUID, error)
	SaveExtraction(ctx context.Context, docID uuid.UUID, mentions []store.EntityInput, relation string) error
}

// Indexer mirrors saved documents into the vector index.
type Indexer interface {
	Upsert(rec index.Record) error
}

// Archiver writes saved documents to long-term object storage.
type Archiver interface {
	ArchiveDocument(ctx context.Context, doc *store.Document, entities []string) error
}

// Pipeline ingests batches of feed items. Only fetcher, extractor, and store
// are required; embedder, indexer, and archiver may be nil and are always
// best-effort.
type Pipeline struct {
	fetcher   ArticleFetcher
	extractor nlp.Extractor
	embedder  nlp.EmbeddingsProvider
	store     DocWriter
	indexer   Indexer
	archiver  Archiver
	log       *logger.Logger
	now       func() time.Time
}

// NewPipeline wires the ingestion pipeline. Nil optional collaborators
// disable the corresponding side effect.
func NewPipeline(
	fetcher ArticleFetcher,
	extractor nlp.Extractor,
	embedder nlp.EmbeddingsProvider,
	docStore DocWriter,
	indexer Indexer,
	archiver Archiver,
	baseLog *logger.Logger,
) *Pipeline {
	if baseLog == nil {
		baseLog = logger.NewNop()
	}
	return &Pipeline{
		fetcher:   fetcher,
		extractor: extractor,
		embedder:  embedder,
		store:     docStore,
		indexer:   indexer,
		archiver:  archiver,
		log:       baseLog.With("component", "ingest"),
		now:       time.Now,
	}
}

// IngestBatch processes every item in order and never aborts the batch on an
// item-level failure. Duplicate URLs inside the batch are skipped (first
// occurrence wins); persistence failures are counted and logged.
func (p *Pipeline) IngestBatch(ctx context.Context, items []types.FeedItem, source string, progress func(done, total int)) types.BatchResult {
	res := types.BatchResult{Ingested: []types.DocumentSummary{}}
	res.Counters.FeedItems = len(items)

	seen := make(map[string]bool, len(items))
	for i, item := range items {
		if progress != nil {
			progress(i, len(items))
		}
		if err := ctx.Err(); err != nil {
			p.log.Warn("batch cancelled", "done", i, "total", len(items), "err", err)
			break
		}

		url := strings.TrimSpace(item.URL)
		if url == "" || seen[url] {
			res.Counters.Dup++
			continue
		}
		seen[url] = true

		p.ingestOne(ctx, item, url, source, &res)
	}
	if progress != nil {
		progress(len(items), len(items))
	}

	res.Diag = res.Counters.Summary()
	p.log.Info("batch ingested", "source", source, "diag", res.Diag)
	return res
}

func (p *Pipeline) ingestOne(ctx context.Context, item types.FeedItem, url, source string, res *types.BatchResult) {
	page := p.fetcher.FetchArticle(url)
	if page.Text != "" {
		res.Counters.FetchedOK++
	} else {
		res.Counters.Blocked++
		p.log.Debug("article fetch returned no text", "url", url, "diag", page.Diag)
	}

	title := strings.TrimSpace(item.Title)
	if title == "" || title == url {
		title = strings.TrimSpace(page.Title)
	}
	if title == "" {
		title = url
	}

	// Fall back to the feed summary when the extracted body is too thin;
	// drop the item entirely when neither clears its floor.
	text := page.Text
	if len(text) < config.MinArticleLen {
		if len(item.Summary) >= config.MinSummaryLen {
			text = item.Summary
		} else {
			res.Counters.Short++
			return
		}
	}

	publishedAt := item.PublishedAt
	if publishedAt == nil {
		now := p.now().UTC()
		publishedAt = &now
	}

	mentions := p.extractor.Extract(text, title)
	inputs := make([]store.EntityInput, 0, len(mentions))
	names := make([]string, 0, len(mentions))
	for _, m := range mentions {
		inputs = append(inputs, store.EntityInput{Name: m.Name, Type: m.Type})
		names = append(names, m.Name)
	}

	doc := &store.Document{
		URL:         url,
		Title:       title,
		Source:      source,
		PublishedAt: publishedAt,
		Text:        text,
	}
	docID, err := p.store.UpsertDocument(ctx, doc)
	if err != nil {
		res.Counters.Failed++
		p.log.Error("document upsert failed", "url", url, "err", err)
		return
	}
	if err := p.store.SaveExtraction(ctx, docID, inputs, config.RelationMention); err != nil {
		res.Counters.Failed++
		p.log.Error("entity save failed", "url", url, "doc_id", docID, "err", err)
		return
	}
	res.Counters.Saved++

	p.indexDocument(ctx, doc, names)

	summary := types.DocumentSummary{
		DocID:    docID.String(),
		Title:    title,
		URL:      url,
		Entities: names,
	}
	if doc.PublishedAt != nil {
		summary.PublishedAt = doc.PublishedAt.UTC().Format(time.RFC3339)
	}
	res.Ingested = append(res.Ingested, summary)
}

// indexDocument pushes the saved document to the vector index and the
// archive. Failures are logged and swallowed; the store already has the row.
func (p *Pipeline) indexDocument(ctx context.Context, doc *store.Document, entities []string) {
	if p.indexer != nil {
		rec := index.Record{
			ID:       doc.ID.String(),
			Title:    doc.Title,
			URL:      doc.URL,
			Source:   doc.Source,
			Entities: entities,
			Text:     doc.Text,
		}
		if doc.PublishedAt != nil {
			rec.PublishedAt = doc.PublishedAt.UTC().Format(time.RFC3339)
		}
		if p.embedder != nil {
			rec.Embedding = p.embedText(doc.Title, doc.Text)
		}
		if err := p.indexer.Upsert(rec); err != nil {
			p.log.Warn("index upsert failed", "doc_id", doc.ID, "err", err)
		}
	}

	if p.archiver != nil {
		if err := p.archiver.ArchiveDocument(ctx, doc, entities); err != nil {
			p.log.Warn("archive upload failed", "doc_id", doc.ID, "err", err)
		}
	}
}

// embedText embeds the title plus a bounded slice of body text. Returns nil
// on any failure so indexing degrades to metadata-only.
func (p *Pipeline) embedText(title, text string) []float32 {
	if len(text) > config.MaxEmbedChars {
		text = text[:config.MaxEmbedChars]
	}
	vecs, err := p.embedder.EmbedTexts([]string{title + "\n\n" + text})
	if err != nil || len(vecs) == 0 {
		p.log.Warn("embedding failed", "model", p.embedder.ModelName(), "err", err)
		return nil
	}
	return vecs[0]
}
