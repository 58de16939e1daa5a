package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/use-agent/wikidex/models"
	"github.com/use-agent/wikidex/wiki"
)

var refreshFlag bool

func init() {
	for _, c := range []*cobra.Command{catalogueCmd, mediaCmd, guidesCmd, itemCmd} {
		c.Flags().BoolVar(&refreshFlag, "refresh", false, "bypass the fetch cache")
		rootCmd.AddCommand(c)
	}
	rootCmd.AddCommand(categoriesCmd)
}

var catalogueCmd = &cobra.Command{
	Use:   "catalogue <category>",
	Short: "Prints the entries of an encyclopedia category as JSON.",
	Long:  "Prints the entries of an encyclopedia category as JSON.\n\nCategories: " + strings.Join(models.Slugs(models.Categories), ", "),
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return oneShot(cmd, func(svc *wiki.Service) (any, error) {
			res, err := svc.Catalogue(cmd.Context(), args[0], refreshFlag)
			return res.Value, err
		})
	},
}

var mediaCmd = &cobra.Command{
	Use:   "media <type>",
	Short: "Prints the entries of a media collection as JSON.",
	Long:  "Prints the entries of a media collection as JSON.\n\nTypes: " + strings.Join(models.Slugs(models.MediaTypes), ", "),
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return oneShot(cmd, func(svc *wiki.Service) (any, error) {
			res, err := svc.Media(cmd.Context(), args[0], refreshFlag)
			return res.Value, err
		})
	},
}

var guidesCmd = &cobra.Command{
	Use:   "guides",
	Short: "Prints the strategy guide collection as JSON.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return oneShot(cmd, func(svc *wiki.Service) (any, error) {
			res, err := svc.Guides(cmd.Context(), refreshFlag)
			return res.Value, err
		})
	},
}

var itemCmd = &cobra.Command{
	Use:   "item <kind> <id>",
	Short: "Prints an item page as JSON.",
	Long:  "Prints an item page as JSON.\n\nKinds: " + strings.Join(wiki.ItemKinds, ", "),
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return oneShot(cmd, func(svc *wiki.Service) (any, error) {
			f, err := svc.Item(cmd.Context(), args[0], args[1], refreshFlag)
			return f.Value, err
		})
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Lists the catalogue categories and media collections.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printJSON(cmd.OutOrStdout(), map[string][]models.Category{
			"catalogue": models.Categories,
			"media":     models.MediaTypes,
		})
	},
}

// oneShot starts a provider, runs fetch and prints its value. Logs go to
// stderr so stdout stays valid JSON.
func oneShot(cmd *cobra.Command, fetch func(*wiki.Service) (any, error)) error {
	logger := initLogger(cfg.Log, os.Stderr)
	svc, provider, err := newService(cfg, logger)
	if err != nil {
		return fmt.Errorf("start %s surfaces: %w", cfg.Surface.Kind, err)
	}
	defer provider.Close()

	v, err := fetch(svc)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), v)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
