package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/FilipeAphrody/vocalgate/internal/app"
	"github.com/FilipeAphrody/vocalgate/internal/config"
	"github.com/FilipeAphrody/vocalgate/internal/domain"
	"github.com/FilipeAphrody/vocalgate/pkg/audio"
)

// errAccessDenied makes the process exit non-zero after a denial has been printed.
var errAccessDenied = errors.New("access denied")

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "vocalgate",
		Short:         "Voice passphrase access gate",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if envFile == "" {
				return nil
			}
			err := godotenv.Load(envFile)
			if err != nil && !(errors.Is(err, os.ErrNotExist) && !cmd.Flags().Changed("env-file")) {
				return fmt.Errorf("failed to load %s: %w", envFile, err)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	root.AddCommand(
		newEnrollCmd(),
		newAuthCmd(),
		newUsersCmd(),
		newAuditCmd(),
		newHashPasswordCmd(),
		newTOTPSecretCmd(),
	)
	return root
}

// openApp loads configuration and assembles the gate for one command.
func openApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	slog.SetDefault(cfg.NewLogger())
	return app.New(cmd.Context(), cfg)
}

// audioSource holds the flags that pick where an utterance comes from.
type audioSource struct {
	wav   string
	stdin bool
}

func (s *audioSource) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.wav, "wav", "", "read the utterance from a 16-bit PCM WAV file")
	cmd.Flags().BoolVar(&s.stdin, "stdin", false, "read raw s16le mono PCM at SAMPLE_RATE from stdin")
	cmd.MarkFlagsMutuallyExclusive("wav", "stdin")
	cmd.MarkFlagsOneRequired("wav", "stdin")
}

func (s *audioSource) capture(in io.Reader) domain.AudioCapture {
	if s.stdin {
		return audio.StreamCapture{R: in}
	}
	return audio.FileCapture{Path: s.wav}
}
