package main

import (
	"flag"
	"log"
	"os"

	"go.uber.org/zap"

	"matchbook/harness"
	"matchbook/infra/logger"
	"matchbook/service"
)

func main() {
	level := flag.String("log-level", "warn", "debug, info, warn or error")
	capacity := flag.Int("capacity", service.DefaultCapacity, "resting order capacity per engine")
	flag.Parse()

	lg, err := logger.New(logger.Options{Level: *level, Format: logger.FormatConsole})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lg.Sync()

	factory := func() service.Matcher {
		return service.NewEngine(service.WithCapacity(*capacity), service.WithLogger(lg))
	}

	res := harness.NewRunner(factory,
		harness.WithOutput(os.Stdout),
		harness.WithLogger(lg),
	).Run(harness.QuantCup())

	if !res.OK() {
		lg.Warn("conformance failures", zap.Int("failed", res.Total-res.Passed))
		os.Exit(1)
	}
}
