package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	appconversion "video-to-mp3/application/conversion"
	"video-to-mp3/domain/conversion"
	"video-to-mp3/infrastructure/ffmpeg"
	"video-to-mp3/infrastructure/filesystem"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	convertSourcePath string
	convertBitrate    string
	convertOutputDir  string
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a local video file to MP3",
	Long: `Extract the audio track of a local video file as MP3.

The output is named after the source file with spaces replaced by underscores,
e.g. "My Clip.mp4" becomes "My_Clip.mp3", and written to --output-dir.

Example:
  video-to-mp3 convert --source sample.mp4
  video-to-mp3 convert --source "/videos/My Clip.mov" --bitrate 320k --output-dir ~/Music`,
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVar(&convertSourcePath, "source", "", "Path to source video file (required)")
	convertCmd.Flags().StringVar(&convertBitrate, "bitrate", "", "MP3 bitrate: 320k, 192k or 128k (default from config or 192k)")
	convertCmd.Flags().StringVar(&convertOutputDir, "output-dir", ".", "Directory for the MP3 file")
	convertCmd.MarkFlagRequired("source")
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	// Determine bitrate
	bitrate := convertBitrate
	if bitrate == "" {
		bitrate = cfg.Audio.Bitrate
	}

	// Create dependencies using production implementations
	engine := ffmpeg.NewEngine(
		ffmpeg.WithFFmpegPath(cfg.FFmpeg.FFmpegPath),
		ffmpeg.WithFFprobePath(cfg.FFmpeg.FFprobePath),
	)
	storage, err := filesystem.NewTempStore(cfg.Storage.TempDirectory)
	if err != nil {
		return err
	}

	return RunConvertWithDependencies(
		cmd.Context(),
		engine,
		storage,
		log,
		cfg.FFmpeg.Timeout,
		convertOutputDir,
		bitrate,
		convertSourcePath,
		os.Stdout,
	)
}

// RunConvertWithDependencies runs the convert command with injected dependencies (for testing)
func RunConvertWithDependencies(
	ctx context.Context,
	engine conversion.MediaEngine,
	storage conversion.TempStorage,
	log logrus.FieldLogger,
	timeout time.Duration,
	outputDir string,
	bitrate string,
	sourcePath string,
	output OutputWriter,
) error {
	ctx = contextOrBackground(ctx)

	if err := verifyEngine(ctx, engine); err != nil {
		return err
	}

	parsed, err := conversion.ParseBitrate(bitrate)
	if err != nil {
		return &userError{err: err}
	}

	content, err := os.ReadFile(sourcePath)
	if err != nil {
		return fmt.Errorf("source video could not be read: %w", err)
	}

	upload := conversion.UploadedVideo{FileName: filepath.Base(sourcePath), Content: content}
	if !upload.HasAllowedExtension() {
		fmt.Fprintf(output, "Warning: %q is not a recognized video extension; trying anyway\n", upload.Extension())
	}

	req, err := conversion.NewRequest(upload, parsed)
	if err != nil {
		return &userError{err: err}
	}

	fmt.Fprintf(output, "Extracting audio from %s with bitrate %s...\n", sourcePath, parsed)

	service := appconversion.NewService(engine, storage, appconversion.WithLogger(log), appconversion.WithTimeout(timeout))
	artifact, err := service.Convert(ctx, req)
	if err != nil {
		return &userError{err: err}
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	outputPath := filepath.Join(outputDir, artifact.FileName)
	if err := os.WriteFile(outputPath, artifact.Data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}

	fmt.Fprintf(output, "Successfully created: %s (%s)\n", outputPath, artifact.ContentType)
	return nil
}

// userError shows a conversion error by its user message and keeps the chain for errors.Is
type userError struct {
	err error
}

func (e *userError) Error() string {
	return conversion.UserMessage(e.err)
}

func (e *userError) Unwrap() error {
	return e.err
}

// OutputWriter allows capturing output in tests
type OutputWriter interface {
	Write(p []byte) (n int, err error)
}

// verifyEngine checks the external binaries if the engine supports it
func verifyEngine(ctx context.Context, engine conversion.MediaEngine) error {
	verifiable, ok := engine.(interface{ VerifyInstalled(context.Context) error })
	if !ok {
		return nil
	}
	verifyCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := verifiable.VerifyInstalled(verifyCtx); err != nil {
		return fmt.Errorf("ffmpeg verification failed: %w", err)
	}
	return nil
}
