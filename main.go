package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"newsgraph/api"
	"newsgraph/archive"
	"newsgraph/config"
	"newsgraph/fetch"
	"newsgraph/graph"
	"newsgraph/index"
	"newsgraph/ingest"
	"newsgraph/jobs"
	"newsgraph/kafka"
	"newsgraph/logger"
	"newsgraph/nlp"
	"newsgraph/store"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()
	cfg := config.FromEnv()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		stdlog.Fatalf("logger init failed: %v", err)
	}
	defer log.Sync()

	st, err := store.Open(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("store init failed", "err", err)
	}

	fetcher := fetch.NewClient(cfg.HTTPTimeout, cfg.TopicSource, log)
	extractor := nlp.NewHeuristicExtractor()

	var embedder nlp.EmbeddingsProvider
	if cohere := nlp.NewCohereEmbeddings(cfg.CohereAPIKey, cfg.EmbedModel); cohere != nil {
		embedder = cohere
		log.Info("embeddings enabled", "model", cohere.ModelName())
	} else {
		log.Info("embeddings disabled: no COHERE_API_KEY")
	}

	var indexer ingest.Indexer
	var idxCounter api.IndexCounter
	if cfg.ChromaHost != "" {
		chroma, err := index.NewChroma(index.Config{
			Host:           cfg.ChromaHost,
			Port:           cfg.ChromaPort,
			CollectionName: cfg.ChromaCollection,
		}, log)
		if err != nil {
			log.Warn("chroma init failed, indexing disabled", "err", err)
		} else {
			indexer = chroma
			idxCounter = chroma
			log.Info("chroma index enabled", "collection", cfg.ChromaCollection)
		}
	}

	var archiver ingest.Archiver
	if cfg.S3Bucket != "" {
		a, err := archive.New(context.Background(), archive.Config{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			Profile:      cfg.S3Profile,
			Prefix:       cfg.S3Prefix,
			UsePathStyle: cfg.S3UsePathStyle,
		})
		if err != nil {
			log.Warn("s3 init failed, archiving disabled", "err", err)
		} else {
			archiver = a
			log.Info("s3 archiving enabled", "bucket", cfg.S3Bucket)
		}
	}

	var jobStore jobs.Store
	if cfg.RedisAddr != "" {
		rs, err := jobs.NewRedisStore(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err != nil {
			log.Fatal("redis init failed", "addr", cfg.RedisAddr, "err", err)
		}
		defer rs.Close()
		jobStore = rs
		log.Info("redis job store enabled", "addr", cfg.RedisAddr)
	} else {
		jobStore = jobs.NewMemoryStore()
		log.Info("using in-memory job store")
	}

	pipeline := ingest.NewPipeline(fetcher, extractor, embedder, st, indexer, archiver, log)
	svc := ingest.NewService(fetcher, pipeline, jobStore, log)
	builder := graph.NewBuilder(st, graph.DefaultConfig(), log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(cfg.KafkaBrokers) > 0 {
		consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
			GroupID: cfg.KafkaGroupID,
		}, svc, log)
		if err != nil {
			log.Fatal("kafka init failed", "brokers", cfg.KafkaBrokers, "err", err)
		}
		if err := consumer.Start(ctx); err != nil {
			log.Fatal("kafka start failed", "err", err)
		}
		defer consumer.Close()
	}

	r := api.NewRouter(api.Deps{
		Ingest: svc,
		Jobs:   jobStore,
		Graph:  builder,
		Store:  st,
		Index:  idxCounter,
		Log:    log,
	})

	addr := ":" + cfg.Port
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		_ = srv.Shutdown(context.Background())
	}()

	log.Info("starting API server", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("server error", "err", err)
	}
}
