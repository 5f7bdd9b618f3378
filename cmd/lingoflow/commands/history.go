package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lingoflow-ai/lingoflow/internal/config"
	"github.com/lingoflow-ai/lingoflow/internal/history"
)

var historySearch string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse the translation history",
	Long: `Browse past translations.

Examples:
  lingoflow history                 # List recent translations
  lingoflow history -q "bonjour"    # Search source and translated text
  lingoflow history show <id>       # Print one translation in full
  lingoflow history clear           # Delete all records`,
	RunE: runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one translation in full",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one record",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all records",
	RunE:  runHistoryClear,
}

func init() {
	historyCmd.Flags().StringVarP(&historySearch, "query", "q", "", "Filter by substring of source or translated text")
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyClearCmd)
}

func openHistory() (*history.Store, error) {
	paths := config.GetPaths()
	if err := paths.EnsurePaths(); err != nil {
		return nil, err
	}
	return history.Open(paths.HistoryPath(), history.DefaultLimit)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	recs, err := store.Search(cmd.Context(), historySearch)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tWHEN\tLANG\tMODEL\tTEXT\t")
	for _, rec := range recs {
		fmt.Fprintf(w, "%s\t%s\t%s->%s\t%s/%s\t%s\t\n",
			rec.ID,
			rec.CreatedAt.Local().Format("2006-01-02 15:04"),
			orAuto(rec.SourceLang),
			rec.TargetLang,
			rec.Provider,
			rec.Model,
			truncate(rec.TranslatedText, 60),
		)
	}
	return w.Flush()
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("ID:       %s\n", rec.ID)
	fmt.Printf("When:     %s\n", rec.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Printf("Language: %s -> %s\n", orAuto(rec.SourceLang), rec.TargetLang)
	fmt.Printf("Model:    %s/%s\n", rec.Provider, rec.Model)
	fmt.Printf("\nSource:\n%s\n", rec.SourceText)
	fmt.Printf("\nTranslation:\n%s\n", rec.TranslatedText)
	if rec.Reasoning != "" {
		fmt.Printf("\nReasoning:\n%s\n", rec.Reasoning)
	}
	return nil
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Remove(cmd.Context(), args[0])
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Clear(cmd.Context())
}

func orAuto(lang string) string {
	if lang == "" {
		return "auto"
	}
	return lang
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
