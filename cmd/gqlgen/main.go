// Command gqlgen is the runtime's schema-generation CLI: it builds the
// registry from gqldemo, assembles it, and writes the resulting
// federated SDL to a file or stdout — the Go analogue of running
// `<framework> graphql schema:generate` against a live process, except
// here there is no process: the registry lives in this binary's own
// source, so "generate" means "assemble and print".
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/mrhoseah/gqlrt/internal/gqlassemble"
	"github.com/mrhoseah/gqlrt/internal/gqldemo"
	"github.com/mrhoseah/gqlrt/internal/gqlfederation"
)

func main() {
	root := &cobra.Command{
		Use:   "gqlgen",
		Short: "Generate the federated SDL for this service's registered GraphQL schema",
	}
	root.AddCommand(generateSchemaCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func generateSchemaCmd() *cobra.Command {
	var output string
	var watch bool

	cmd := &cobra.Command{
		Use:   "generate-schema",
		Short: "Assemble the registry and write its SDL",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := generate(output); err != nil {
				return err
			}
			if !watch {
				return nil
			}
			return watchAndRegenerate(output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write the SDL to (default: stdout)")
	cmd.Flags().BoolVar(&watch, "watch", false, "re-generate whenever a .go file in the working directory changes")
	return cmd
}

func generate(output string) error {
	reg := gqldemo.Registry()

	assembly, err := gqlassemble.Assemble(reg)
	if err != nil {
		return fmt.Errorf("assembling registry: %w", err)
	}
	schema, err := assembly.Build()
	if err != nil {
		return fmt.Errorf("building schema: %w", err)
	}

	layer := gqlfederation.New(reg, assembly.Mapper, nil)
	sdl := gqlfederation.GenerateSDL(schema, reg)
	_ = layer // SDL generation does not need the layer itself, only the registry's Entities

	if output == "" {
		fmt.Println(sdl)
		return nil
	}
	return os.WriteFile(output, []byte(sdl+"\n"), 0o644)
}

func watchAndRegenerate(output string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add("."); err != nil {
		return fmt.Errorf("watching working directory: %w", err)
	}

	fmt.Fprintln(os.Stderr, "watching for .go file changes (ctrl-c to stop)...")
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if filepath.Ext(event.Name) != ".go" {
				continue
			}
			if err := generate(output); err != nil {
				fmt.Fprintln(os.Stderr, "regenerate failed:", err)
				continue
			}
			fmt.Fprintln(os.Stderr, "regenerated SDL after change to", event.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(os.Stderr, "watcher error:", err)
		}
	}
}
