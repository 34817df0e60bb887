package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"pulsedigest/db"
	"pulsedigest/internal/chunk"
	"pulsedigest/internal/config"
	"pulsedigest/internal/delivery"
	"pulsedigest/internal/model"
	"pulsedigest/internal/report"
	"pulsedigest/internal/repository"
	"pulsedigest/pkg/llm"
	"pulsedigest/pkg/market"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

const (
	lockTTL       = 20 * time.Hour
	blockCacheTTL = 6 * time.Hour
	notifyTimeout = 20 * time.Second
)

func main() {
	godotenv.Load()

	runID := uuid.NewString()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("run_id", runID))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sender := delivery.NewTelegramSender(cfg.TelegramToken, cfg.ChannelID, cfg.ParseMode)

	slog.Info("digest run started", "llm_provider", cfg.LLMProvider, "budget", cfg.Chunk.Budget)

	if err := run(ctx, cfg, sender, runID); err != nil {
		slog.Error("digest run failed", "error", err)

		if cfg.NotifyOnFailure {
			nctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
			delivery.Notify(nctx, sender, "⚠️ Today's market digest could not be published: "+err.Error())
			cancel()
		}

		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, sender delivery.Sender, runID string) (err error) {
	today := time.Now()
	day := today.Format("2006-01-02")

	var cache report.Cache
	useRedis := false
	if cfg.RedisURL != "" {
		if err := db.ConnectRedis(ctx, cfg.RedisURL); err != nil {
			slog.Warn("redis unavailable, running without lock and cache", "error", err)
		} else {
			useRedis = true
			defer db.CloseRedis()
		}
	}

	if useRedis {
		acquired, err := db.AcquireDailyLock(ctx, day, lockTTL)
		if err != nil {
			return fmt.Errorf("acquire daily lock: %w", err)
		}
		if !acquired {
			slog.Info("digest already published today, exiting", "day", day)
			return nil
		}

		defer func() {
			if err == nil {
				return
			}
			if rerr := db.ReleaseDailyLock(context.Background(), day); rerr != nil {
				slog.Error("error releasing daily lock", "day", day, "error", rerr)
			}
		}()

		cache = db.NewBlockCache(db.Redis, blockCacheTTL)
	}

	chunker, err := chunk.New(cfg.Chunk)
	if err != nil {
		return fmt.Errorf("chunk config: %w", err)
	}

	builder := report.NewBuilder(newReportClient(cfg), cfg.Retry, report.Options{
		Sources:      promptSources(cfg),
		Keywords:     cfg.Settings.Keywords,
		Continuation: cfg.Settings.Continuation,
		Daily:        report.NewDailyStore(cfg.CacheDir),
		Halving:      market.NewHalving(),
		Cache:        cache,
		HTML:         cfg.HTMLMode(),
	})

	digest, err := builder.Build(ctx)
	if err != nil {
		return err
	}

	segments := chunker.Split(digest.Body)
	if len(segments) == 0 {
		slog.Info("report is empty, nothing to send")
		return nil
	}

	slog.Info("report split", "segments", len(segments), "body_bytes", len(digest.Body))

	dispatcher := delivery.NewDispatcher(sender, cfg.Retry, cfg.SendPause)
	rep := dispatcher.Deliver(ctx, segments)

	slog.Info("delivery finished", "sent", rep.Sent, "failed", rep.Failed)

	if useRedis {
		for _, seg := range rep.Undelivered {
			if err := db.PushToQueue(context.Background(), db.DeadLetterKey, seg.Text()); err != nil {
				slog.Error("error queueing undelivered part", "part", seg.Index, "error", err)
			}
		}
	}

	if cfg.DatabaseURL != "" {
		archive(cfg.DatabaseURL, &model.Digest{
			RunID:        runID,
			DigestDate:   today,
			Body:         digest.Body,
			ModelUsed:    digest.ModelUsed,
			SegmentCount: len(segments),
			SegmentBytes: segmentBytes(segments),
			SentCount:    rep.Sent,
			FailedCount:  rep.Failed,
		})
	}

	if rep.Sent == 0 {
		return errors.New("no part of the report was delivered")
	}
	return nil
}

// archive stores the digest for the read API. Failures are logged only.
func archive(databaseURL string, d *model.Digest) {
	if err := db.Connect(databaseURL); err != nil {
		slog.Error("error connecting to DB, digest not archived", "error", err)
		return
	}
	defer db.Close()

	repo := repository.NewDigestRepository(db.DB)
	if err := repo.SaveDigest(d); err != nil {
		slog.Error("error saving digest", "error", err)
		return
	}

	slog.Info("digest archived", "digest_id", d.ID, "segments", d.SegmentCount)
}

func segmentBytes(segments []chunk.Segment) []int64 {
	out := make([]int64, len(segments))
	for i, s := range segments {
		out[i] = int64(s.Bytes())
	}
	return out
}

func newReportClient(cfg *config.Config) llm.ReportClient {
	if cfg.LLMProvider == config.ProviderAnthropic {
		return llm.NewAnthropicClient(cfg.AnthropicKey)
	}
	return llm.NewOpenAIClient(cfg.OpenAIKey)
}
