package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	appconversion "video-to-mp3/application/conversion"
	"video-to-mp3/infrastructure/ffmpeg"
	"video-to-mp3/infrastructure/filesystem"
	"video-to-mp3/infrastructure/web"

	"github.com/spf13/cobra"
)

var serveAddress string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web UI",
	Long: `Serve the single page UI: upload a video, pick a bitrate, click
"Convert to MP3" and download the result.

Example:
  video-to-mp3 serve
  video-to-mp3 serve --address 127.0.0.1:9000 --log-format json`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddress, "address", "", "Listen address (default from config or :8501)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	address := serveAddress
	if address == "" {
		address = cfg.Server.Address
	}

	engine := ffmpeg.NewEngine(
		ffmpeg.WithFFmpegPath(cfg.FFmpeg.FFmpegPath),
		ffmpeg.WithFFprobePath(cfg.FFmpeg.FFprobePath),
	)

	ctx, stop := signal.NotifyContext(contextOrBackground(cmd.Context()), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := verifyEngine(ctx, engine); err != nil {
		return err
	}

	storage, err := filesystem.NewTempStore(cfg.Storage.TempDirectory)
	if err != nil {
		return err
	}

	service := appconversion.NewService(engine, storage,
		appconversion.WithLogger(log),
		appconversion.WithTimeout(cfg.FFmpeg.Timeout),
	)

	server := web.New(service, web.Options{
		Address:        address,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		ReadTimeout:    cfg.Server.ReadTimeout,
		DefaultBitrate: cfg.DefaultBitrate(),
	}, log)

	return server.Serve(ctx)
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
