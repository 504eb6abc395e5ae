// Package main implements the config commands. This file handles writing
// the starter config file and printing the effective configuration.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"tgwctl/internal/config"
)

var configForce bool

// configCmd manages the tgwctl config file
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the tgwctl config file",
	Long: `Manage the tgwctl config file.

Subcommands:
  init - write a starter config file with the defaults
  show - print the effective configuration`,
	RunE: runConfigShow,
}

// configInitCmd writes the starter config
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file with the defaults",
	RunE:  runConfigInit,
}

// configShowCmd prints the effective config
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration after precedence resolution",
	RunE:  runConfigShow,
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")
	configCmd.AddCommand(configInitCmd, configShowCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(cfgPath); err == nil && !configForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgPath)
	}

	if err := config.DefaultConfig().Save(cfgPath); err != nil {
		return err
	}
	fmt.Printf("✅ wrote %s\n", cfgPath)
	fmt.Println(styles.Muted.Render("   edit it, or override with AI_WAREHOUSE / TGW_REPO / flags"))
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	fmt.Printf("# effective configuration (flags > env > %s > defaults)\n", cfgPath)
	fmt.Print(string(data))
	return nil
}
