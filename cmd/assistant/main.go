// Command assistant asks the Godot / GameMaker assistant model questions from
// the terminal.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"google.golang.org/genai"

	"github.com/godot4-gamemaker-assistant/assistant"
)

// Global flags
var (
	envFiles   []string
	engine     string
	modelName  string
	backend    string
	location   string
	verbose    bool
	maxRetries int
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "assistant",
		Short: "Ask the Godot / GameMaker assistant",
		Long: `Ask the Godot / GameMaker assistant model questions from the terminal.

The API key is read from FIREBASE_API_KEY or from the env files given with --env-file.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
				Level:      level,
				TimeFormat: time.Kitchen,
			})))
		},
	}

	root.PersistentFlags().StringSliceVar(&envFiles, "env-file", []string{".env"}, "dotenv files to load")
	root.PersistentFlags().StringVar(&engine, "engine", assistant.EngineGodot, "engine persona: godot or gamemaker (empty for a generic assistant)")
	root.PersistentFlags().StringVar(&modelName, "model", "", "model override")
	root.PersistentFlags().StringVar(&backend, "backend", "", "backend override: googleai or vertexai")
	root.PersistentFlags().StringVar(&location, "location", "", "Vertex AI location")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().IntVar(&maxRetries, "retries", 2, "retries per request")

	root.AddCommand(newAskCmd())
	root.AddCommand(newChatCmd())
	root.AddCommand(newTokensCmd())
	root.AddCommand(newConfigCmd())
	return root
}

func loadConfig() (assistant.Config, error) {
	cfg, err := assistant.LoadConfig(assistant.WithEnvFiles(envFiles...))
	if err != nil {
		return cfg, err
	}
	if modelName != "" {
		cfg.Model = modelName
	}
	if backend != "" {
		cfg.Backend = assistant.NormalizeBackend(backend)
	}
	if location != "" {
		cfg.Location = location
	}
	return cfg, nil
}

func buildModel(ctx context.Context) (*assistant.GenerativeModel, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	app, err := assistant.InitializeApp(cfg)
	if err != nil {
		return nil, err
	}
	b, err := assistant.ParseBackend(cfg.Backend, cfg.Location)
	if err != nil {
		return nil, err
	}
	ai, err := assistant.GetAI(ctx, app, assistant.WithBackend(b))
	if err != nil {
		return nil, err
	}

	params := assistant.ModelParams{Model: cfg.Model}
	if params.SystemInstruction, err = assistant.SystemInstructionFor(engine); err != nil {
		return nil, err
	}
	return assistant.GetGenerativeModel(ai, params, assistant.WithRetry(maxRetries, 500*time.Millisecond))
}

func newAskCmd() *cobra.Command {
	var (
		stream bool
		images []string
	)
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a single question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			model, err := buildModel(ctx)
			if err != nil {
				return err
			}

			parts := []*genai.Part{assistant.NewTextPart(strings.Join(args, " "))}
			for _, path := range images {
				p, err := assistant.NewFilePart(path)
				if err != nil {
					return err
				}
				parts = append(parts, p)
			}

			out := cmd.OutOrStdout()
			if stream {
				for resp, err := range model.GenerateContentStream(ctx, parts...) {
					if err != nil {
						return err
					}
					fmt.Fprint(out, resp.Text())
				}
				fmt.Fprintln(out)
				return nil
			}
			resp, err := model.GenerateContent(ctx, parts...)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, resp.Text())
			return nil
		},
	}
	cmd.Flags().BoolVarP(&stream, "stream", "s", false, "stream the answer as it is generated")
	cmd.Flags().StringSliceVarP(&images, "image", "i", nil, "attach an image or file")
	return cmd
}

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat (one message per line, Ctrl-D to quit)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			model, err := buildModel(ctx)
			if err != nil {
				return err
			}
			return runChat(ctx, model.StartChat(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func runChat(ctx context.Context, chat *assistant.ChatSession, in io.Reader, out io.Writer) error {
	slog.Debug("chat session", "chat_id", chat.ID)
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		for resp, err := range chat.SendMessageStream(ctx, assistant.NewTextPart(line)) {
			if err != nil {
				return err
			}
			fmt.Fprint(out, resp.Text())
		}
		fmt.Fprintln(out)
	}
}

func newTokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <text>",
		Short: "Count the input tokens of a prompt",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			model, err := buildModel(ctx)
			if err != nil {
				return err
			}
			n, err := model.CountTokens(ctx, assistant.NewTextPart(strings.Join(args, " ")))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration with the key redacted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(cfg.Redacted()); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				slog.Warn("configuration is not usable", "error", err)
			}
			return nil
		},
	}
}
