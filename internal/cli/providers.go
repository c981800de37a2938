package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/ogulcanaydogan/viraltrack/pkg/providers"
	"github.com/spf13/cobra"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Inspect classification providers",
}

var providersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known providers and whether they are usable",
	RunE:  runProvidersList,
}

func init() {
	rootCmd.AddCommand(providersCmd)
	providersCmd.AddCommand(providersListCmd)
}

// modeler is implemented by every backend in pkg/providers.
type modeler interface {
	Model() string
}

func runProvidersList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	registry := initRegistry(cfg, newLogger(cfg, os.Stderr))
	available := make(map[string]string)
	for _, p := range registry.All() {
		model := "-"
		if m, ok := p.(modeler); ok {
			model = m.Model()
		}
		available[p.Name()] = model
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "PROVIDER\tSTATUS\tMODEL\tACTIVE\n")

	for _, name := range registry.List() {
		active := ""
		if name == cfg.Classifier.Provider {
			active = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, "configured", available[name], active)
	}
	for _, name := range missingProviders(registry.List()) {
		active := ""
		if name == cfg.Classifier.Provider {
			active = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, "missing credentials", "-", active)
	}

	return w.Flush()
}

func missingProviders(ready []string) []string {
	have := make(map[string]bool, len(ready))
	for _, name := range ready {
		have[name] = true
	}

	var missing []string
	for _, name := range providers.Known {
		if !have[name] {
			missing = append(missing, name)
		}
	}
	return missing
}
