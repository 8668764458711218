package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"rfp-traits/internal/artifact"
	"rfp-traits/internal/chunker"
	"rfp-traits/internal/config"
	"rfp-traits/internal/db"
	"rfp-traits/internal/embedding"
	"rfp-traits/internal/extraction"
	"rfp-traits/internal/llm"
	"rfp-traits/internal/parser"
	"rfp-traits/internal/pipeline"
	"rfp-traits/internal/retrieval"
	"rfp-traits/internal/token"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	filePath := flag.String("file", "", "Path to an RFP document to register and process")
	docID := flag.String("doc", "", "Document ID to show with its extracted traits")
	jobID := flag.String("job", "", "Job ID to show processing status for")
	list := flag.Bool("list", false, "List registered documents")
	flag.Parse()

	ctx := context.Background()

	switch {
	case *filePath != "":
		ingestDocument(ctx, *filePath)
	case *docID != "":
		showDocument(ctx, *docID)
	case *jobID != "":
		showJob(ctx, *jobID)
	case *list:
		listDocuments(ctx)
	default:
		log.Fatal().Msg("Provide one of -file, -doc, -job or -list")
	}
}

func buildService(ctx context.Context) (*pipeline.Service, *db.BunStore) {
	cfg, err := config.LoadConfig(configFilePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid config")
	}

	dbClient, err := db.ConnectDB(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}
	bunDB := db.NewDB(dbClient, cfg.Database.Debug)
	if err := db.InitDB(ctx, bunDB); err != nil {
		log.Fatal().Err(err).Msg("Error initializing database")
	}
	store := db.NewStore(bunDB)

	tokens, err := token.NewTiktokenService()
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing tokenizer")
	}

	embedder, err := embedding.NewEmbedder(&cfg.Embedder)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	generator, err := llm.NewGenerator(&cfg.Generator)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing generator")
	}

	summarizerBackend, err := llm.NewGenerator(&config.GeneratorConfig{
		Provider: cfg.Summarizer.Provider,
		BaseURL:  cfg.Summarizer.BaseURL,
		Key:      cfg.Summarizer.Key,
		Models:   []string{cfg.Summarizer.Model},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing summarizer")
	}
	summarizer := llm.NewSummarizer(summarizerBackend, cfg.Summarizer.Model)

	artifacts, err := artifact.NewStore(cfg, embedder)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing artifact store")
	}

	chk := chunker.New(tokens)
	chk.MaxTokens = cfg.Chunking.MaxTokens
	chk.MinTokens = cfg.Chunking.MinTokens
	chk.OverlapTokens = cfg.Chunking.OverlapTokens
	chk.PageModeTokens = cfg.Chunking.PageModeTokens

	processor := pipeline.NewProcessor(
		store,
		parser.New(tokens),
		chk,
		embedder,
		retrieval.NewAssembler(tokens, embedder, summarizer),
		extraction.NewOrchestrator(generator, cfg.Generator.Models, cfg.Generator.MaxNewTokens),
		artifacts,
	)

	service := pipeline.NewService(store, processor, cfg.Storage.RawDir)
	// single-shot CLI, run the pipeline inline
	service.Dispatch = func(documentID, jobID uuid.UUID) {
		if err := processor.Run(ctx, documentID, jobID); err != nil {
			log.Error().Err(err).Str("document_id", documentID.String()).Msg("Processing failed")
		}
	}
	return service, store
}

func ingestDocument(ctx context.Context, filePath string) {
	service, store := buildService(ctx)
	defer store.Close()

	doc, err := service.RegisterDocument(ctx, filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error registering document")
	}

	job, err := service.ProcessDocument(ctx, doc.ID)
	if err != nil {
		log.Fatal().Err(err).Msg("Error starting processing")
	}

	finished, err := service.JobStatus(ctx, job.ID)
	if err != nil {
		log.Fatal().Err(err).Msg("Error fetching job status")
	}
	fmt.Printf("document: %s\njob: %s\nstatus: %s\n", doc.ID, finished.ID, finished.Status)

	if finished.Status == db.JobSuccess {
		printTraits(ctx, service, doc.ID)
	}
}

func showDocument(ctx context.Context, id string) {
	service, store := buildService(ctx)
	defer store.Close()

	documentID, err := uuid.Parse(id)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid document ID")
	}

	doc, extracted, err := service.GetDocumentDetail(ctx, documentID)
	if err != nil {
		log.Fatal().Err(err).Msg("Error fetching document")
	}
	fmt.Printf("%s  %s  status=%s  pages=%d  tokens=%d\n",
		doc.ID, doc.OriginalFilename, doc.Status, doc.PageCount, doc.TokenCount)
	for _, trait := range extracted {
		value := "null"
		if trait.Value != nil {
			value = *trait.Value
		}
		fmt.Printf("  %-24s %s\n", trait.TraitType, value)
	}
}

func showJob(ctx context.Context, id string) {
	service, store := buildService(ctx)
	defer store.Close()

	jobID, err := uuid.Parse(id)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid job ID")
	}

	job, err := service.JobStatus(ctx, jobID)
	if err != nil {
		log.Fatal().Err(err).Msg("Error fetching job")
	}
	fmt.Printf("job: %s\ndocument: %s\nstatus: %s\nstep: %s\n", job.ID, job.DocumentID, job.Status, job.Step)
	if job.ErrorMessage != nil {
		fmt.Printf("error: %s\n", *job.ErrorMessage)
	}
}

func listDocuments(ctx context.Context) {
	service, store := buildService(ctx)
	defer store.Close()

	docs, total, err := service.ListDocuments(ctx, 0, 100)
	if err != nil {
		log.Fatal().Err(err).Msg("Error listing documents")
	}
	fmt.Printf("%d documents\n", total)
	for _, doc := range docs {
		fmt.Printf("%s  %-32s %s\n", doc.ID, doc.OriginalFilename, doc.Status)
	}
}

func printTraits(ctx context.Context, service *pipeline.Service, documentID uuid.UUID) {
	_, extracted, err := service.GetDocumentDetail(ctx, documentID)
	if err != nil {
		log.Fatal().Err(err).Msg("Error fetching traits")
	}
	for _, trait := range extracted {
		value := "null"
		if trait.Value != nil {
			value = *trait.Value
		}
		fmt.Printf("  %-24s %s\n", trait.TraitType, value)
	}
}
