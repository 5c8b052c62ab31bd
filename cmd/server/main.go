package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/engagelens/engage-api/internal/config"
	"github.com/engagelens/engage-api/internal/handlers"
	"github.com/engagelens/engage-api/internal/model"
	"github.com/engagelens/engage-api/internal/service"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "engage-api",
		Short:         "Student engagement classification service",
		Long:          "Serves a pre-trained engagement classifier over HTTP: images in, class probabilities and an engagement score out.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}

	flags := cmd.Flags()
	flags.Int("port", 8080, "HTTP listen port")
	flags.String("model", "models/engagement.onnx", "path to the ONNX model artifact")
	flags.String("metadata", "models/engagement_metadata.json", "path to the model metadata JSON")
	flags.Int("batch-max", 50, "maximum images per batch request")
	flags.Int("batch-workers", 4, "concurrent preprocessing workers per batch")
	flags.String("log-level", "info", "log level (debug|info|warn|error)")

	viper.BindPFlags(flags)
	viper.SetEnvPrefix("ENGAGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	return cmd
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      cfg.SlogLevel(),
		TimeFormat: "15:04:05",
	}))
	slog.SetDefault(logger)

	// A load failure disables prediction traffic but keeps the liveness
	// endpoint answering, so orchestration can see the broken state instead
	// of a dead port.
	var svc *service.Service
	var meta *model.Metadata
	mdl, err := model.Load(cfg.ModelPath, cfg.MetadataPath)
	if err != nil {
		logger.Error("model load failed, prediction endpoints disabled",
			"model", cfg.ModelPath, "error", err)
	} else {
		defer mdl.Close()
		meta = &mdl.Metadata
		svc = service.New(mdl, logger, cfg.BatchMax, cfg.BatchWorkers)
		logger.Info("model loaded",
			"model", cfg.ModelPath,
			"classes", meta.Classes,
			"image_size", meta.ImageSize)
	}

	handler := handlers.New(svc, meta, logger)
	addr := fmt.Sprintf(":%d", cfg.Port)

	logger.Info("server starting", "addr", addr, "batch_max", cfg.BatchMax)
	logger.Info("endpoints",
		"health", "GET /",
		"info", "GET /model/info",
		"predict", "POST /predict",
		"batch", "POST /predict/batch")

	return http.ListenAndServe(addr, handlers.RequestLogger(logger, handlers.CORS(handler.Routes())))
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
