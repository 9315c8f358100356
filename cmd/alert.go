package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AkashSundaramoorthi/Haven/channel"
	"github.com/AkashSundaramoorthi/Haven/colors"
	"github.com/AkashSundaramoorthi/Haven/dispatch"
	"github.com/AkashSundaramoorthi/Haven/haptics"
	"github.com/AkashSundaramoorthi/Haven/location"
	"github.com/AkashSundaramoorthi/Haven/registry"
	"github.com/AkashSundaramoorthi/Haven/shared"
	"github.com/AkashSundaramoorthi/Haven/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// alertCmd represents the alert command - the CLI analogue of the
// quick-alert button.
var alertCmd = &cobra.Command{
	Use:   "alert",
	Short: "Send an emergency alert to your contacts right now",
	Long: `Sends one emergency alert to every personal emergency contact,
with your current location when it can be fetched, over the chat channel
when available & SMS otherwise.`,
	Run: func(cmd *cobra.Command, args []string) {
		runAlert(serverConfig())
	},
}

func init() {
	rootCmd.AddCommand(alertCmd)
}

func runAlert(config *viper.Viper) {
	serverConfig := shared.ServerConfig{}
	cobra.CheckErr(config.Unmarshal(&serverConfig))

	// Resolve the same db directory the server uses, so the one-shot
	// alert sees the contacts managed through the API.
	rootDir, err := os.UserHomeDir()
	cobra.CheckErr(err)
	configDir := filepath.Join(rootDir, "haven")
	if isDevEnv {
		rootDir, err = os.Getwd()
		cobra.CheckErr(err)
		configDir = filepath.Join(rootDir, "dev")
	}

	kv, err := store.NewSqliteKV(serverConfig.Sqlite.PassPhrase, configDir)
	cobra.CheckErr(err)

	dispatcher := dispatch.NewDispatcher(
		registry.NewRegistry(kv),
		location.NewHTTPLocator(serverConfig.Haven.Alert.LocationEndpoint),
		channel.NewTwilioOpener(serverConfig.Twilio),
		haptics.LogNotifier{},
	)

	alert, err := dispatcher.Send(context.Background())
	if err != nil {
		fmt.Println(colors.Red(fmt.Sprintf("alert not sent: %v", err)))
		os.Exit(1)
	}

	fmt.Println(colors.Green(
		fmt.Sprintf("alert handed off to %v channel for %v recipient(s)", alert.Channel, len(alert.Recipients))))
}
