package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cineforge/muse/pkg/agent"
	"github.com/cineforge/muse/pkg/bus"
	"github.com/cineforge/muse/pkg/config"
	"github.com/cineforge/muse/pkg/controller"
	"github.com/cineforge/muse/pkg/extractor"
	"github.com/cineforge/muse/pkg/gateway"
	"github.com/cineforge/muse/pkg/guiding"
	"github.com/cineforge/muse/pkg/intent"
	"github.com/cineforge/muse/pkg/knowledge"
	"github.com/cineforge/muse/pkg/logger"
	"github.com/cineforge/muse/pkg/scenes"
	"github.com/cineforge/muse/pkg/session"
	"github.com/cineforge/muse/pkg/tracker"
	"github.com/cineforge/muse/pkg/usage"
)

func main() {
	configPath := flag.String("config", "", "path to config.json (optional)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	if cfg.Logging.FileEnabled {
		if err := logger.EnableFile(cfg.LogFilePath(), cfg.Logging.MaxSizeMB); err != nil {
			logger.WarnCF("main", "File logging disabled", map[string]any{"error": err.Error()})
		}
	}

	usageStore := usage.NewStore(filepath.Dir(cfg.LogFilePath()))

	kwExtractor, err := extractor.New(
		cfg.Extractor.Backend,
		extractorKey(cfg),
		extractorBase(cfg),
		cfg.Extractor.Model,
		usageStore,
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	theories, err := knowledge.LoadTheoryCorpus(cfg.Knowledge.TheoryPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	works, err := knowledge.LoadWorkCorpus(cfg.Knowledge.WorkPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	b := bus.NewWithCapacity(cfg.Engine.EventHistorySize)
	knowledge.NewTheoryProvider(b, theories)
	knowledge.NewWorkProvider(b, works)

	var sceneGen scenes.Generator = scenes.Disabled{}
	if cfg.Scenes.Enabled {
		sceneGen = scenes.NewAnthropicGenerator(
			cfg.Providers.Anthropic.APIKey,
			cfg.Providers.Anthropic.APIBase,
			cfg.Scenes.Model,
			usageStore,
		)
	}

	sessions := session.NewStore()
	tr := tracker.New(b, kwExtractor, intent.NewRuleAnalyzer())
	questions := guiding.NewGenerator()
	engine := agent.NewEngine(b, sessions, tr, controller.New(), questions, sceneGen,
		agent.WithProviderWait(time.Duration(cfg.Engine.ProviderWaitMS)*time.Millisecond))

	stop := make(chan struct{})
	go expireLoop(sessions, tr, time.Duration(cfg.Engine.SessionMaxAgeHours)*time.Hour, stop)

	gw := gateway.New(engine, sessions, b, usageStore, questions)
	errCh := make(chan error, 1)
	go func() {
		errCh <- gw.ListenAndServe(cfg.Gateway.Host, cfg.Gateway.Port)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		close(stop)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	case s := <-sig:
		close(stop)
		logger.InfoCF("main", "Shutting down", map[string]any{"signal": s.String()})
	}
}

// expireLoop drops idle sessions and their tracked state.
func expireLoop(sessions *session.Store, tr *tracker.Tracker, maxAge time.Duration, stop <-chan struct{}) {
	if maxAge <= 0 {
		return
	}
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			expired := sessions.Expire(maxAge)
			if len(expired) > 0 {
				tr.Forget(expired...)
				logger.InfoCF("main", "Expired idle sessions", map[string]any{"count": len(expired)})
			}
		}
	}
}

func extractorKey(cfg *config.Config) string {
	switch cfg.Extractor.Backend {
	case "openai":
		return cfg.Providers.OpenAI.APIKey
	default:
		return cfg.Providers.Anthropic.APIKey
	}
}

func extractorBase(cfg *config.Config) string {
	switch cfg.Extractor.Backend {
	case "openai":
		return cfg.Providers.OpenAI.APIBase
	default:
		return cfg.Providers.Anthropic.APIBase
	}
}
