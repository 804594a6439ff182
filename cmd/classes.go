package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/gdrive"
	"github.com/kozaktomas/face-attendance/internal/store"
)

var classesCmd = &cobra.Command{
	Use:   "classes",
	Short: "Manage the class registry",
}

var classesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered classes",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, _, err := openRegistry(cmd.Context())
		if err != nil {
			return err
		}

		names := registry.Names()
		if len(names) == 0 {
			fmt.Println("No classes registered")
			return nil
		}
		for _, name := range names {
			folderID, _ := registry.FolderID(name)
			fmt.Printf("%s\t%s\n", name, folderID)
		}
		return nil
	},
}

var classesAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Register a class and create its Drive folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, archive, err := openRegistry(cmd.Context())
		if err != nil {
			return err
		}

		folderID, err := registry.Add(cmd.Context(), args[0], archive)
		if err != nil {
			return fmt.Errorf("adding class: %w", err)
		}
		fmt.Printf("Added class %q (folder %s)\n", args[0], folderID)
		return nil
	},
}

var classesRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a class from the registry (keeps the Drive folder)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, _, err := openRegistry(cmd.Context())
		if err != nil {
			return err
		}

		if err := registry.Remove(args[0]); err != nil {
			return fmt.Errorf("removing class: %w", err)
		}
		fmt.Printf("Removed class %q\n", args[0])
		return nil
	},
}

// openRegistry loads the class registry and the Drive archive it creates
// folders with.
func openRegistry(ctx context.Context) (*store.ClassRegistry, *gdrive.Archive, error) {
	cfg := config.Load()

	registry := store.NewClassRegistry(cfg.Store.RegistryPath)
	if err := registry.Load(); err != nil {
		return nil, nil, fmt.Errorf("loading class registry: %w", err)
	}

	archive, err := gdrive.NewArchive(ctx, cfg.Google.CredentialsFile, cfg.Google.ParentFolderID)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing drive archive: %w", err)
	}

	return registry, archive, nil
}

func init() {
	rootCmd.AddCommand(classesCmd)
	classesCmd.AddCommand(classesListCmd)
	classesCmd.AddCommand(classesAddCmd)
	classesCmd.AddCommand(classesRemoveCmd)
}
