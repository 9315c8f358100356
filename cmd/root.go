package cmd

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"

	devconfig "github.com/AkashSundaramoorthi/Haven/dev/config"
	"github.com/AkashSundaramoorthi/Haven/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	config  *viper.Viper

	isDevEnv bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd *cobra.Command

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd = createRootCmd()
	rootCmd.Version = fmt.Sprintf("v%s", version.Version)
}

func createRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use: "haven",
		Short: `haven is a personal-safety app core.

It keeps your emergency contacts, listens for a spoken trigger phrase and,
when it fires, shares your location with your contacts over the best
available messaging channel.`,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file for the haven server")
	cmd.PersistentFlags().BoolVarP(&isDevEnv, "dev", "", false, "run in development mode")

	return cmd
}

// serverConfig reads the yaml server config(--config, or dev/config/server.yml
// in dev mode) & matching env variables into a fresh viper instance.
func serverConfig() *viper.Viper {
	config = viper.New()

	if isDevEnv && cfgFile == "" {
		cfgFile = devConfigFilePath()

		// Write the default dev config on first run.
		if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
			cobra.CheckErr(os.MkdirAll(filepath.Dir(cfgFile), 0755))
			cobra.CheckErr(ioutil.WriteFile(cfgFile, []byte(devconfig.SERVER_YML), 0600))
		}
	}

	config.SetConfigFile(cfgFile)
	config.AutomaticEnv() // read in environment variables that match

	if err := config.ReadInConfig(); err != nil {
		log.Panic(fmt.Sprintf("error reading server config file: %v", err))
	}

	return config
}

func devConfigFilePath() string {
	configDir, err := os.Getwd()
	if err != nil {
		log.Panic(err)
	}

	return filepath.Join(configDir, "dev", "config", "server.yml")
}
