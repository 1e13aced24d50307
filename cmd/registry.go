package cmd

import (
	"fmt"

	"github.com/mkovarik/faceattend/internal/config"
	"github.com/mkovarik/faceattend/internal/registry"
	"github.com/spf13/cobra"
)

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Inspect and manage the embedding registry",
}

var registryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List enrolled identities",
	RunE:  runRegistryList,
}

var registryCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the number of enrolled identities",
	RunE:  runRegistryCount,
}

var registryRemoveCmd = &cobra.Command{
	Use:   "remove [name]",
	Short: "Remove an enrolled identity",
	Args:  cobra.ExactArgs(1),
	RunE:  runRegistryRemove,
}

func init() {
	rootCmd.AddCommand(registryCmd)
	registryCmd.AddCommand(registryListCmd)
	registryCmd.AddCommand(registryCountCmd)
	registryCmd.AddCommand(registryRemoveCmd)
}

func openRegistry() (*registry.Registry, error) {
	cfg := config.Load()
	reg, err := registry.New(cfg.Registry.Path)
	if err != nil {
		return nil, fmt.Errorf("opening embedding registry: %w", err)
	}
	return reg, nil
}

func runRegistryList(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}

	names, err := reg.Names()
	if err != nil {
		return fmt.Errorf("listing registry: %w", err)
	}

	if len(names) == 0 {
		fmt.Println("No identities enrolled")
		return nil
	}
	for _, name := range names {
		fmt.Println(name)
	}
	fmt.Printf("\n%d identities enrolled\n", len(names))
	return nil
}

func runRegistryCount(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}

	count, err := reg.Count()
	if err != nil {
		return fmt.Errorf("counting registry entries: %w", err)
	}
	fmt.Println(count)
	return nil
}

func runRegistryRemove(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}

	removed, err := reg.Remove(args[0])
	if err != nil {
		return fmt.Errorf("removing %s: %w", args[0], err)
	}
	if !removed {
		return fmt.Errorf("%s is not enrolled", args[0])
	}
	fmt.Printf("Removed %s\n", args[0])
	return nil
}
