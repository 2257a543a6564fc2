package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"matchbook/config"
	"matchbook/domain/orderbook"
	"matchbook/infra/feed"
	"matchbook/infra/intern"
	"matchbook/infra/kafka"
	"matchbook/infra/logger"
	"matchbook/infra/outbox"
	"matchbook/infra/report"
	"matchbook/jobs/broadcaster"
	"matchbook/service"
)

func main() {
	envFile := flag.String("env", ".env", "optional .env file")
	csvPath := flag.String("csv", "", "order file to load at startup (overrides FEED_CSV_PATH)")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *csvPath != "" {
		cfg.Feed.CSVPath = *csvPath
	}

	lg, err := logger.New(logger.Options{Level: cfg.Log.Level, Format: logger.Format(cfg.Log.Format)})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, lg); err != nil {
		lg.Fatal("engine exited", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, lg *zap.Logger) error {
	// ---------------- Interning ----------------

	symbols, traders := intern.NewTable(), intern.NewTable()

	// ---------------- Engine ----------------

	eng := service.NewEngine(
		service.WithCapacity(cfg.Engine.Capacity),
		service.WithLogger(lg),
	)
	matcher := service.NewLocked(eng)

	// ---------------- Execution handlers ----------------

	var handlers []func(orderbook.Execution)
	if cfg.Engine.PrintExecutions {
		handlers = append(handlers, report.NewPrinter(os.Stdout, symbols, traders).Print)
	}

	// background jobs stop and drain before anything they use is closed
	ctx, cancel := context.WithCancel(ctx)
	var (
		wg      sync.WaitGroup
		closers []func() error
		rec     *outbox.Recorder
	)
	defer func() {
		cancel()
		wg.Wait()
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				lg.Warn("close failed", zap.Error(err))
			}
		}
	}()

	if cfg.Outbox.Dir != "" {
		out, err := outbox.Open(cfg.Outbox.Dir)
		if err != nil {
			return err
		}
		closers = append(closers, out.Close)
		lg.Info("outbox opened", zap.String("dir", cfg.Outbox.Dir), zap.Uint64("lastSeq", out.LastSeq()))

		// a hole in the outbox stream is unrecoverable; stop taking orders
		rec = outbox.NewRecorder(out, symbols, traders, func(err error) {
			lg.Error("outbox append failed, shutting down", zap.Error(err))
			cancel()
		})
		handlers = append(handlers, rec.Record)

		if cfg.Kafka.Enabled() {
			pub, err := newPublisher(cfg.Kafka)
			if err != nil {
				return err
			}
			bc := broadcaster.New(out, pub,
				broadcaster.WithInterval(cfg.Outbox.Interval),
				broadcaster.WithMaxRetries(cfg.Outbox.MaxRetries),
				broadcaster.WithPruning(cfg.Outbox.Prune),
				broadcaster.WithLogger(lg),
			)
			closers = append(closers, bc.Close)

			wg.Add(1)
			go func() {
				defer wg.Done()
				bc.Run(ctx)
			}()
		}
	} else if cfg.Kafka.Enabled() {
		lg.Warn("OUTBOX_DIR is empty, executions will not be published")
	}

	matcher.OnExecution(service.Tee(handlers...))
	gw := service.NewGateway(matcher, symbols, traders, lg)

	// ---------------- Feeds ----------------

	if cfg.Feed.CSVPath != "" {
		f, err := os.Open(cfg.Feed.CSVPath)
		if err != nil {
			return err
		}
		n, err := gw.Load(ctx, feed.NewCSVReader(f))
		f.Close()
		if err := recorderErr(rec); err != nil {
			return err
		}
		if err != nil {
			return err
		}
		lg.Info("order file loaded", zap.String("path", cfg.Feed.CSVPath), zap.Int("accepted", n))
	}

	if !cfg.Kafka.Enabled() {
		matcher.Do(func(service.Matcher) {
			lg.Info("no order topic configured, exiting",
				zap.Int("resting", eng.Live()),
				zap.Uint64("lastOrderID", uint64(eng.LastID())),
			)
		})
		return nil
	}

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.OrderTopic, cfg.Kafka.GroupID, lg)
	closers = append(closers, consumer.Close)

	lg.Info("consuming orders", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.OrderTopic))
	if err := gw.Consume(ctx, consumer); err != nil {
		return err
	}
	return recorderErr(rec)
}

func recorderErr(rec *outbox.Recorder) error {
	if rec == nil {
		return nil
	}
	if err := rec.Err(); err != nil {
		return errors.Wrap(err, "outbox")
	}
	return nil
}

func newPublisher(cfg config.KafkaConfig) (broadcaster.Publisher, error) {
	if cfg.Client == "kafka-go" {
		return kafka.NewProducer(cfg.Brokers, cfg.ExecutionTopic), nil
	}
	return broadcaster.NewSaramaPublisher(cfg.Brokers, cfg.ExecutionTopic)
}
