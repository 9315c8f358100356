package cmd

import (
	"fmt"

	"github.com/AkashSundaramoorthi/Haven/server/auth"
	"github.com/spf13/cobra"
)

// pinCmd represents the pin command
var pinCmd = &cobra.Command{
	Use:   "pin [PIN]",
	Short: "Hash an owner PIN for the server config",
	Long: `Prints the bcrypt hash of the given PIN. Put the hash in
'haven.ownerPinHash' in your server config to protect the API.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		hash, err := auth.HashPin(args[0])
		cobra.CheckErr(err)

		fmt.Println(hash)
	},
}

func init() {
	rootCmd.AddCommand(pinCmd)
}
