package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/finsight-ai/finsight/internal/auth"
	"github.com/finsight-ai/finsight/internal/chat"
	"github.com/finsight-ai/finsight/internal/config"
	"github.com/finsight-ai/finsight/internal/extraction"
	"github.com/finsight-ai/finsight/internal/llm"
	"github.com/finsight-ai/finsight/internal/logger"
	"github.com/finsight-ai/finsight/internal/service"
	"github.com/finsight-ai/finsight/internal/store"
)

func main() {
	log := logger.New()
	ctx := logger.WithContext(context.Background(), log)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	var storeImpl store.Store
	if cfg.UseMemoryStore {
		log.Info().Msg("using in-memory store for local development")
		storeImpl = store.NewMemoryStore()
	} else {
		pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to postgres")
		}
		storeImpl = pg
	}
	defer storeImpl.Close()

	completer := llm.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel)

	var extractor service.TextExtractor
	if cfg.ExtractionAPIKey != "" {
		extractor = extraction.NewMarkdownClient(cfg.ExtractionBaseURL, cfg.ExtractionAPIKey)
	} else {
		log.Warn().Msg("no extraction API key set, falling back to local PDF text extraction")
		extractor = service.LocalExtractor{}
	}

	tokens := auth.NewTokens(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour)
	ingester := service.NewIngester(storeImpl, extractor,
		extraction.NewClassifier(completer), extraction.NewEnricher(completer))

	svc := service.NewFinanceService(storeImpl, tokens, ingester,
		chat.NewTranslator(completer), chat.NewExecutor(storeImpl), chat.NewExplainer(completer))

	c := cors.New(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:1234",
			"http://127.0.0.1:1234",
			"http://localhost:3000",
		},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"User-Agent",
		},
		AllowCredentials: true,
		MaxAge:           3600,
	})

	handler := c.Handler(svc.Routes())

	// h2c supports HTTP/2 without TLS for deployments behind a
	// TLS-terminating proxy.
	h2cHandler := h2c.NewHandler(handler, &http2.Server{})

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Msg("starting server")
	if err := http.ListenAndServe(addr, h2cHandler); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
