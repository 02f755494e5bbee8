package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/devflow/internal/template"
)

func newTemplateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Generate files from code templates",
		Long: `Generate files from the built-in templates. Files with the same name in
templates.dir (default .devflow/templates) override the built-in ones.

Examples:
  devflow template list
  devflow template component Button src/components/Button.tsx
  devflow template page Settings app/settings/page.tsx --title "Account settings"
  devflow template api-route exports app/api/exports/route.ts`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var title, description string
	page := &cobra.Command{
		Use:   "page <PageName> <output-path>",
		Short: "Generate a page",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGenerator(cmd, "page", args[1], func(g *template.Generator) error {
				return g.GeneratePage(args[0], args[1], title, description)
			})
		},
	}
	page.Flags().StringVar(&title, "title", "", "page title (default: the page name)")
	page.Flags().StringVar(&description, "description", "", "page description (default: \"<name> page\")")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List available templates",
			Args:  cobra.NoArgs,
			RunE:  runTemplateList,
		},
		&cobra.Command{
			Use:   "component <ComponentName> <output-path>",
			Short: "Generate a component",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withGenerator(cmd, "component", args[1], func(g *template.Generator) error {
					return g.GenerateComponent(args[0], args[1])
				})
			},
		},
		page,
		&cobra.Command{
			Use:   "api-route <RouteName> <output-path>",
			Short: "Generate an API route",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withGenerator(cmd, "api-route", args[1], func(g *template.Generator) error {
					return g.GenerateAPIRoute(args[0], args[1])
				})
			},
		},
	)

	return cmd
}

func runTemplateList(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime(cmd)
	if err != nil {
		return err
	}

	names, err := template.New(rt.config.TemplateGenerator()).List()
	if err != nil {
		return err
	}

	if rt.flags.Format != "text" && rt.flags.Format != "" {
		return rt.print(names)
	}
	fmt.Fprintln(rt.out, "Available templates:")
	for _, n := range names {
		fmt.Fprintf(rt.out, "  - %s\n", n)
	}
	return nil
}

func withGenerator(cmd *cobra.Command, name, out string, generate func(*template.Generator) error) error {
	rt, err := loadRuntime(cmd)
	if err != nil {
		return err
	}

	if err := generate(template.New(rt.config.TemplateGenerator())); err != nil {
		return err
	}
	fmt.Fprintf(rt.out, "✅ Generated %s from %s template\n", out, name)
	return nil
}
