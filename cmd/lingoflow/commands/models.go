package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lingoflow-ai/lingoflow/internal/config"
	"github.com/lingoflow-ai/lingoflow/internal/provider"
)

var modelsCmd = &cobra.Command{
	Use:   "models [provider]",
	Short: "List available models",
	Long: `List models from every configured provider. Listing is best-effort:
providers that cannot be reached fall back to a static model list.

Examples:
  lingoflow models             # List all models
  lingoflow models anthropic   # List only Anthropic models`,
	RunE: runModels,
}

func runModels(cmd *cobra.Command, args []string) error {
	workDir, err := os.Getwd()
	if err != nil {
		return err
	}

	appConfig, err := config.Load(workDir)
	if err != nil {
		return err
	}

	var providerFilter string
	if len(args) > 0 {
		providerFilter = args[0]
	}

	registry := provider.DefaultRegistry(appConfig)

	ctx := context.Background()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PROVIDER\tMODEL\tFEATURES\t")

	for _, p := range registry.List() {
		if providerFilter != "" && p.ID() != providerFilter {
			continue
		}
		for _, model := range p.FetchModels(ctx, appConfig.Provider[p.ID()]) {
			features := ""
			if model.SupportsReasoning {
				features = "reasoning"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t\n", model.ProviderID, model.ID, features)
		}
	}

	return w.Flush()
}
