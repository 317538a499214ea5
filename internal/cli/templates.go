package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/scribelab/chronicler/internal/model"
	"github.com/scribelab/chronicler/internal/templates"
)

// templatesCmd represents the templates command
var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List and manage report templates",
	Long: `Templates bundle a required field set, default values and display
ordering. Built-in templates cover common event types; your own live as
YAML files under the configured templates directory.`,
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, warnings := templates.Load(templatesDir())
		for _, w := range warnings {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", w)
		}
		for _, t := range store.All() {
			fmt.Printf("%-14s %-24s %s\n", t.ID, t.Name, t.Description)
		}
		return nil
	},
}

var templatesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one template as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _ := templates.Load(templatesDir())
		t, ok := store.Get(args[0])
		if !ok {
			return fmt.Errorf("unknown template %q (available: %s)", args[0], strings.Join(store.IDs(), ", "))
		}
		data, err := yaml.Marshal(t)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	},
}

var templatesInitCmd = &cobra.Command{
	Use:   "init <id>",
	Short: "Write a builtin template to the templates directory for editing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var tpl *model.TemplateDefinition
		for _, t := range templates.Builtin() {
			if t.ID == args[0] {
				tpl = &t
				break
			}
		}
		if tpl == nil {
			return fmt.Errorf("no builtin template %q", args[0])
		}
		path, err := templates.WriteFile(templatesDir(), *tpl)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Wrote %s (edit it and it will override the builtin)\n", path)
		return nil
	},
}

func templatesDir() string {
	if dir := os.Getenv("CHRONICLER_TEMPLATES_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "templates"
	}
	return home + "/.chronicler/templates"
}

func init() {
	rootCmd.AddCommand(templatesCmd)
	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesShowCmd)
	templatesCmd.AddCommand(templatesInitCmd)
}
