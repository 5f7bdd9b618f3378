package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lingoflow-ai/lingoflow/internal/config"
	"github.com/lingoflow-ai/lingoflow/internal/event"
	"github.com/lingoflow-ai/lingoflow/internal/history"
	"github.com/lingoflow-ai/lingoflow/internal/provider"
	"github.com/lingoflow-ai/lingoflow/internal/translator"
	"github.com/lingoflow-ai/lingoflow/pkg/types"
)

var (
	translateFrom      string
	translateTo        string
	translateModel     string
	translatePreset    string
	translateReasoning bool
	translateNoHistory bool
	translateDir       string
)

var translateCmd = &cobra.Command{
	Use:   "translate [text...]",
	Short: "Translate text, streaming the result to stdout",
	Long: `Translate text through the configured provider, streaming the
result to stdout as it is generated. Text may also be piped on stdin.

Examples:
  lingoflow translate "Hello, world" --to Spanish
  lingoflow translate --from English --to Japanese "Good morning"
  lingoflow translate -m anthropic/claude-sonnet-4-5 --to German "Hi"
  cat notes.txt | lingoflow translate --to French`,
	RunE: runTranslate,
}

func init() {
	translateCmd.Flags().StringVar(&translateFrom, "from", "", "Source language (auto-detected if empty)")
	translateCmd.Flags().StringVar(&translateTo, "to", "", "Target language (required)")
	translateCmd.Flags().StringVarP(&translateModel, "model", "m", "", "Model to use (provider/model format)")
	translateCmd.Flags().StringVar(&translatePreset, "preset", "", "Prompt preset name from prompts.yaml")
	translateCmd.Flags().BoolVar(&translateReasoning, "reasoning", false, "Print model reasoning to stderr")
	translateCmd.Flags().BoolVar(&translateNoHistory, "no-history", false, "Do not record this translation")
	translateCmd.Flags().StringVar(&translateDir, "directory", "", "Working directory")
	translateCmd.MarkFlagRequired("to")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	if text == "" {
		data, err := readStdin()
		if err != nil {
			return err
		}
		text = data
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text required. Usage: lingoflow translate \"your text\" --to <language>")
	}

	workDir, err := GetWorkDir(translateDir)
	if err != nil {
		return err
	}

	paths := config.GetPaths()
	if err := paths.EnsurePaths(); err != nil {
		return err
	}

	appConfig, err := config.Load(workDir)
	if err != nil {
		return err
	}
	if translateModel != "" {
		appConfig.Model = translateModel
	}

	req := types.TranslationRequest{
		SourceText:         text,
		SourceLang:         translateFrom,
		TargetLang:         translateTo,
		SystemPrompt:       appConfig.SystemPrompt,
		UserPromptTemplate: appConfig.UserPromptTemplate,
	}
	if translatePreset != "" {
		presets, err := config.LoadPrompts(paths.PromptsPath())
		if err != nil {
			return err
		}
		preset, ok := config.FindPrompt(presets, translatePreset)
		if !ok {
			return fmt.Errorf("unknown prompt preset %q", translatePreset)
		}
		req.SystemPrompt = preset.System
		req.UserPromptTemplate = preset.User
	}

	var store *history.Store
	if !translateNoHistory {
		limit := appConfig.HistoryLimit
		if limit <= 0 {
			limit = history.DefaultLimit
		}
		store, err = history.Open(paths.HistoryPath(), limit)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer store.Close()
	}

	bus := event.NewBus()
	defer bus.Close()

	registry := provider.DefaultRegistry(appConfig)
	svc := translator.New(registry, bus, store, nil, appConfig)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Callbacks carry the accumulated text; print only the new suffix
	// so the terminal shows a growing stream.
	var printed, reasoningPrinted int
	_, err = svc.Translate(ctx, req, "", "", provider.Callbacks{
		OnContent: func(acc string) {
			fmt.Print(acc[printed:])
			printed = len(acc)
		},
		OnReasoning: func(acc string) {
			if translateReasoning {
				fmt.Fprint(os.Stderr, acc[reasoningPrinted:])
				reasoningPrinted = len(acc)
			}
		},
	})
	if provider.IsCancelled(err) {
		fmt.Fprintln(os.Stderr, "\ncancelled")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Println()
	return nil
}

func readStdin() (string, error) {
	info, err := os.Stdin.Stat()
	if err != nil {
		return "", err
	}
	if info.Mode()&os.ModeCharDevice != 0 {
		return "", nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
