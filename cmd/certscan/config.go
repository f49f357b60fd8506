package main

import (
	"fmt"

	"github.com/matsen/certscan/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configProfile string

func init() {
	configShowCmd.Flags().StringVar(&configProfile, "profile", "", "Profile file to merge over the defaults")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration and profiles",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective profile and global config",
	Long: `Show the effective profile (the given or configured profile merged over
the built-in defaults) and the global config, after environment overrides.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init <profile.yml>",
	Short: "Write the default profile to a file for editing",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigInit,
}

// ConfigResponse is the response for config show.
type ConfigResponse struct {
	GlobalConfigPath string               `json:"global_config_path"`
	Global           *config.GlobalConfig `json:"global"`
	Profile          *config.Profile      `json:"profile"`
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	gc := mustLoadGlobalConfig()
	profile := mustLoadProfile(configProfile, gc)

	if !humanOutput {
		return outputJSON(ConfigResponse{
			GlobalConfigPath: config.GlobalConfigPath(),
			Global:           gc,
			Profile:          profile,
		})
	}

	fmt.Printf("# global config: %s\n", config.GlobalConfigPath())
	if err := printYAML(gc); err != nil {
		return err
	}
	fmt.Println("\n# profile")
	return printYAML(profile)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	p := config.DefaultProfile()
	if err := p.Save(args[0]); err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if humanOutput {
		fmt.Printf("Wrote default profile to %s\n", args[0])
		return nil
	}
	return outputJSON(StatusResponse{Status: "written", Path: args[0]})
}

func printYAML(v interface{}) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	fmt.Print(string(data))
	return nil
}
