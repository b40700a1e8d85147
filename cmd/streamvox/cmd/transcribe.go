package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/streamvox/internal/apperr"
	"github.com/msto63/streamvox/internal/audio"
	"github.com/msto63/streamvox/internal/config"
	"github.com/msto63/streamvox/internal/decoder"
	"github.com/msto63/streamvox/internal/encoder"
	"github.com/msto63/streamvox/internal/features"
	"github.com/msto63/streamvox/internal/logx"
	"github.com/msto63/streamvox/internal/model"
	"github.com/msto63/streamvox/internal/orchestrator"
	"github.com/msto63/streamvox/internal/sink"
	"github.com/msto63/streamvox/internal/telemetry"
	"github.com/msto63/streamvox/internal/trayui"
	"github.com/msto63/streamvox/internal/tui/dashboard"
)

var (
	flagVocabPath      string
	flagEmbeddingsPath string
	flagForceStub      bool
	flagTray           bool
	flagTUI            bool
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe",
	Short: "Start continuous transcription (default command)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTranscribe()
	},
}

func init() {
	transcribeCmd.Flags().StringVar(&flagVocabPath, "vocab-path", "", "path to the vocabulary file (default: vocab.txt next to the model)")
	transcribeCmd.Flags().StringVar(&flagEmbeddingsPath, "embeddings-path", "", "path to the task-query embedding table (default: embeddings.npy next to the model)")
	transcribeCmd.Flags().BoolVar(&flagForceStub, "stub", false, "force the stub encoder backend even if the native runtime is available")
	transcribeCmd.Flags().BoolVar(&flagTray, "tray", false, "show a desktop tray icon with pause/resume and status (requires a -tags tray build)")
	transcribeCmd.Flags().BoolVar(&flagTUI, "tui", false, "show a live terminal dashboard instead of console log lines")

	// Running streamvox with no subcommand starts transcription, matching
	// the reference service's single-purpose invocation.
	rootCmd.RunE = transcribeCmd.RunE
}

func runTranscribe() error {
	cfg, err := config.Load(config.LookupEnv)
	if err != nil {
		return err
	}

	log := logx.New(logx.ParseLevel(cfg.LogLevel))
	if cfg.LogFormat == "json" {
		log = log.WithFormat(logx.FormatJSON)
	}

	vocabPath := flagVocabPath
	if vocabPath == "" {
		vocabPath = filepath.Join(filepath.Dir(cfg.ModelPath), "vocab.txt")
	}
	vocab, err := decoder.LoadVocabulary(vocabPath)
	if err != nil {
		return err
	}

	embeddingsPath := flagEmbeddingsPath
	if embeddingsPath == "" {
		embeddingsPath = filepath.Join(filepath.Dir(cfg.ModelPath), "embeddings.npy")
	}
	embeddings, err := features.LoadEmbeddingTable(embeddingsPath)
	if err != nil {
		return err
	}

	enc, err := encoder.New(cfg.ModelPath, flagForceStub)
	if err != nil {
		return err
	}
	defer enc.Close()

	sourceCfg := audio.DefaultSourceConfig()
	sourceCfg.DevicePreference = cfg.AudioDevice
	source, err := audio.NewSource(sourceCfg, log)
	if err != nil {
		return err
	}
	defer source.Close()

	wsSink := sink.NewWebSocket(log)
	var feed *dashboard.Feed
	var sinks []sink.Sink
	if flagTUI {
		feed = dashboard.NewFeed(200)
		sinks = []sink.Sink{feed, wsSink}
	} else {
		sinks = []sink.Sink{sink.NewConsole(), wsSink}
	}
	out := sink.NewMulti(sinks...)

	metrics := telemetry.NewMetrics()
	srv := telemetry.NewServer(cfg.MetricsAddr, log, map[string]http.HandlerFunc{
		"/ws": wsSink.Handler(),
	})
	srv.Start()
	defer srv.Stop(context.Background())
	log.Info("telemetry server listening", logx.Fields{"addr": cfg.MetricsAddr})

	nowS := func() float64 {
		return float64(time.Now().UnixNano()) / 1e9
	}

	orch := orchestrator.New(cfg, log, source, enc, vocab, embeddings, out, metrics, nowS)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if flagTray {
		tray := trayui.New(log)
		go tray.Run(trayui.Callbacks{
			OnTogglePause: func() {
				if orch.Paused() {
					orch.Resume()
				} else {
					orch.Pause()
				}
			},
			OnQuit: stop,
		})
		go reportTrayStatus(ctx, orch, tray)
	}

	log.Info("streamvox starting", logx.Fields{"model_path": cfg.ModelPath, "language": cfg.Language})

	if flagTUI {
		runErrCh := make(chan error, 1)
		go func() { runErrCh <- orch.Run(ctx) }()
		if err := dashboard.Run(orch, feed); err != nil {
			log.Warn("dashboard exited with error", logx.Fields{"error": err})
		}
		stop()
		return <-runErrCh
	}

	if err := orch.Run(ctx); err != nil {
		if ae, ok := err.(*apperr.Error); ok {
			fmt.Println("streamvox stopped:", ae.Error())
		}
		return err
	}
	return nil
}

// reportTrayStatus pushes a fresh status snapshot to the tray every second
// until ctx is canceled.
func reportTrayStatus(ctx context.Context, orch *orchestrator.Orchestrator, tray trayui.App) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			lock := orch.LanguageLockState()
			lockStatus := orch.LanguageLockStatus()
			stats := orch.TimelineStats()
			tray.SetStatus(trayui.StatusSnapshot{
				Paused:           orch.Paused(),
				Language:         lock.Language,
				LanguageLocked:   lock.Phase == model.PhaseLocked || lock.Phase == model.PhaseFree,
				LeadingLanguage:  lockStatus.LeadingLanguage,
				WarmupProgress:   lockStatus.WarmupProgress,
				LeaderConfidence: lockStatus.LeaderConfidence,
				WordsEmitted:     stats.WordCount,
				AvgConfidence:    stats.AvgConfidence,
			})
		}
	}
}
