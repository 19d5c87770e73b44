package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/teemow/zoomsync/internal/config"
)

func newGenerateDocsCmd() *cobra.Command {
	var (
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate the command and input reference",
		Long: `Generate markdown documentation for all commands and configuration inputs.
The inputs table is built from the registered flags, so the documentation is
always in sync with what the sync command accepts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerateDocs(cmd.Root(), outputFile, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runGenerateDocs(root *cobra.Command, outputFile string, stdout, stderr io.Writer) error {
	markdown, err := generateMarkdown(root)
	if err != nil {
		return err
	}

	// Write to output
	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(markdown), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(stderr, "Documentation written to: %s\n", outputFile)
		return nil
	}

	_, err = io.WriteString(stdout, markdown)
	return err
}

func generateMarkdown(root *cobra.Command) (string, error) {
	var sb strings.Builder

	// Header
	sb.WriteString("# zoomsync Reference\n\n")
	sb.WriteString("**Note:** This documentation is automatically generated from the command definitions.\n\n")

	sb.WriteString("## Inputs\n\n")
	sb.WriteString("Every input can be set as a flag, an environment variable, a GitHub Actions input or a key in the YAML file passed with `--config`.\n\n")
	sb.WriteString(generateInputsTable(newSyncCmd()))
	sb.WriteString("\n")

	sb.WriteString("## Commands\n\n")
	root.DisableAutoGenTag = true

	commands := root.Commands()
	sort.Slice(commands, func(i, j int) bool {
		return commands[i].Name() < commands[j].Name()
	})

	for _, c := range commands {
		if !c.IsAvailableCommand() || c.Name() == "completion" {
			continue
		}
		c.DisableAutoGenTag = true

		var buf bytes.Buffer
		if err := doc.GenMarkdown(c, &buf); err != nil {
			return "", fmt.Errorf("failed to generate docs for %s: %w", c.Name(), err)
		}
		// Nest the generated sections below "Commands"
		nested := strings.ReplaceAll("\n"+buf.String(), "\n#", "\n##")
		sb.WriteString(strings.TrimPrefix(nested, "\n"))
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

func generateInputsTable(syncCmd *cobra.Command) string {
	var sb strings.Builder
	sb.WriteString("| Input | Environment | YAML key | Default | Description |\n")
	sb.WriteString("|---|---|---|---|---|\n")

	for _, name := range config.Inputs() {
		env := strings.ToUpper(strings.ReplaceAll(name, "-", "_"))

		def := ""
		if f := syncCmd.Flags().Lookup(name); f != nil && f.DefValue != "" {
			def = "`" + f.DefValue + "`"
		}

		sb.WriteString(fmt.Sprintf("| `%s` | `%s` | `%s` | %s | %s |\n",
			name, env, strings.ReplaceAll(name, "-", "_"), def,
			strings.ReplaceAll(inputUsage[name], "|", "\\|")))
	}
	return sb.String()
}
