package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"teleprompt/internal/config"
	"teleprompt/internal/relay"
	"teleprompt/internal/telegram"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitTimeout = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	log := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Stamp,
	}).With().Timestamp().Logger()

	cmd := newRootCmd(log)
	cmd.SetArgs(args)
	err := cmd.Execute()
	code := exitCode(err)
	switch code {
	case exitTimeout:
		log.Error().Msg("timed out waiting for reply")
	case exitFailure:
		log.Error().Err(err).Msg("teleprompt failed")
	}
	return code
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, relay.ErrReplyTimeout):
		return exitTimeout
	default:
		return exitFailure
	}
}

type options struct {
	message        string
	outFile        string
	configPath     string
	timeoutMinutes int
}

func newRootCmd(log zerolog.Logger) *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "teleprompt",
		Short:         "Send a prompt over Telegram and wait for the reply",
		Long:          "teleprompt sends one text prompt to the configured Telegram user,\nblocks until that user replies, and writes the reply text to stdout\nor a file. Exits 0 on reply, 2 on timeout, 1 on any other failure.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRelay(cmd.Context(), log, opts, cmd.Flags().Changed("message"), cmd.Flags().Changed("timeout-minutes"))
		},
	}
	cmd.Flags().StringVar(&opts.message, "message", "", "prompt text to send; omit to read it from stdin")
	cmd.Flags().StringVar(&opts.outFile, "out-file", "", "write the reply to this file instead of stdout")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "config file path (default: per-OS teleprompt/config.toml)")
	cmd.Flags().IntVar(&opts.timeoutMinutes, "timeout-minutes", 0, "override the configured reply timeout")
	return cmd
}

func runRelay(ctx context.Context, log zerolog.Logger, opts *options, messageSet, timeoutSet bool) error {
	prompt, err := readPrompt(opts.message, messageSet, os.Stdin)
	if err != nil {
		return err
	}

	// Optional .env in the working directory; real env vars win.
	_ = godotenv.Load()

	path := opts.configPath
	if path == "" {
		path, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if timeoutSet {
		if opts.timeoutMinutes <= 0 {
			return fmt.Errorf("--timeout-minutes must be positive, got %d", opts.timeoutMinutes)
		}
		cfg.TimeoutMinutes = opts.timeoutMinutes
	}

	client := telegram.NewClient(cfg.BotToken)
	controller := relay.NewController(client, cfg.UserID, log)

	reply, err := controller.AwaitReply(ctx, prompt, cfg.Timeout())
	if err != nil {
		return err
	}

	if err := writeReply(os.Stdout, opts.outFile, reply); err != nil {
		return fmt.Errorf("write reply: %w", err)
	}
	return nil
}

func readPrompt(message string, messageSet bool, stdin *os.File) (string, error) {
	if messageSet {
		m := strings.TrimSpace(message)
		if m == "" {
			return "", fmt.Errorf("--message was provided but empty")
		}
		return m, nil
	}

	if isatty.IsTerminal(stdin.Fd()) || isatty.IsCygwinTerminal(stdin.Fd()) {
		return "", fmt.Errorf("no --message given and stdin is a terminal; pipe the prompt or pass --message")
	}

	raw, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read prompt from stdin: %w", err)
	}
	text := strings.TrimRight(string(raw), "\r\n")
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("stdin prompt was empty")
	}
	return text, nil
}

// writeReply emits the reply verbatim: to stdout when outFile is empty,
// otherwise to outFile (parent directories created, existing content
// overwritten).
func writeReply(stdout io.Writer, outFile, reply string) error {
	if outFile == "" {
		_, err := io.WriteString(stdout, reply)
		return err
	}
	if dir := filepath.Dir(outFile); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(outFile, []byte(reply), 0o644)
}
