package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"rag-chatbot/handler"
	"rag-chatbot/internal/config"
	"rag-chatbot/internal/extract"
	"rag-chatbot/internal/integrations/bedrock"
	"rag-chatbot/internal/integrations/objectstore"
	"rag-chatbot/internal/integrations/openai"
	"rag-chatbot/internal/integrations/paramstore"
	"rag-chatbot/internal/integrations/search"
	"rag-chatbot/internal/repository"
	"rag-chatbot/internal/usecase"
)

// buildHandler loads configuration and constructs every client once for the
// life of the process.
func buildHandler(ctx context.Context) (*handler.Handler, *config.Config, error) {
	logger := slog.Default()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load AWS config: %w", err)
	}

	if cfg.ParamPrefix != "" {
		params, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
		if err != nil {
			return nil, nil, err
		}
		if err := cfg.ApplyParameters(ctx, params); err != nil {
			return nil, nil, err
		}
	} else if err := cfg.ApplyParameters(ctx, nil); err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	dynamo := awsdynamodb.NewFromConfig(awsCfg)
	turns, err := repository.New(dynamo, cfg.TableName)
	if err != nil {
		return nil, nil, err
	}
	var metadata usecase.MetadataWriter
	if cfg.DocumentsTableName != "" {
		docs, err := repository.NewDocumentClient(dynamo, cfg.DocumentsTableName)
		if err != nil {
			return nil, nil, err
		}
		metadata = docs
	}

	objects, err := objectstore.New(awss3.NewFromConfig(awsCfg), cfg.BucketName)
	if err != nil {
		return nil, nil, err
	}

	// Both stay nil interfaces when search is not configured.
	var (
		searcher usecase.Searcher
		index    usecase.IndexWriter
	)
	if cfg.Search.Enabled() {
		api, err := search.NewOpenSearchAPI(cfg.Search.Endpoint, awsCfg, cfg.Search.Service)
		if err != nil {
			return nil, nil, err
		}
		sc, err := search.New(api, cfg.Search.Index)
		if err != nil {
			return nil, nil, err
		}
		searcher, index = sc, sc
	} else {
		logger.Warn("OPENSEARCH_ENDPOINT not set, retrieval and indexing disabled")
	}

	gen, err := newGenerator(cfg.Generation, awsCfg)
	if err != nil {
		return nil, nil, err
	}

	extractors := extract.NewRegistry()
	if cfg.PDFExtraction {
		extractors.Register(".pdf", extract.PDF)
	}

	history, err := usecase.NewSessionHistory(turns, logger)
	if err != nil {
		return nil, nil, err
	}
	guard, err := usecase.NewGenerationClient(gen, cfg.Generation.Timeout, logger)
	if err != nil {
		return nil, nil, err
	}
	persister, err := usecase.NewConversationPersister(turns, logger)
	if err != nil {
		return nil, nil, err
	}
	chat, err := usecase.NewChatService(history, usecase.NewContextRetriever(searcher, logger), guard, persister, logger)
	if err != nil {
		return nil, nil, err
	}
	upload, err := usecase.NewUploadService(objects, metadata, usecase.NewDocumentIndexer(extractors, index, logger), logger)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("rag-chatbot configured",
		"provider", cfg.Generation.Provider,
		"search_enabled", cfg.Search.Enabled(),
		"documents_table", cfg.DocumentsTableName != "",
		"pdf_extraction", extractors.Registered(".pdf"),
	)
	h, err := handler.NewHandler(chat, upload, handler.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	return h, cfg, nil
}

func newGenerator(cfg config.GenerationConfig, awsCfg aws.Config) (usecase.Generator, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel,
			openai.WithBaseURL(cfg.OpenAIBaseURL),
			openai.WithMaxTokens(cfg.MaxTokens),
		)
	default:
		return bedrock.New(bedrockruntime.NewFromConfig(awsCfg), cfg.BedrockModelID, cfg.MaxTokens)
	}
}
