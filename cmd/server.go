package cmd

import (
	"strings"

	devConfig "github.com/Daskott/addressbook/dev/config"
	"github.com/Daskott/addressbook/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serverConfigFile string

func createServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start an addressbook server",
		Long: `The addressbook server exposes the contacts API, schedules birthday
reminders and, when enabled, backs up the sqlite db to google storage`,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := serverConfig(serverConfigFile, isDevEnv)
			if err != nil {
				return err
			}

			server.Start(config, isDevEnv)
			return nil
		},
	}

	cmd.Flags().StringVar(&serverConfigFile, "config", "", "config file for the server (required unless --dev)")

	return cmd
}

// serverConfig loads the server config from 'configFile', or from the
// built-in dev config in dev mode
func serverConfig(configFile string, devMode bool) (*viper.Viper, error) {
	config := viper.New()
	config.SetEnvPrefix("ADDRESSBOOK")
	config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	config.AutomaticEnv() // read in environment variables that match

	if devMode && configFile == "" {
		config.SetConfigType("yaml")
		if err := config.ReadConfig(strings.NewReader(devConfig.SERVER_YML)); err != nil {
			return nil, formattedError("error reading dev server config: %v", err)
		}
		return config, nil
	}

	if configFile == "" {
		return nil, formattedError("--config is required when not in dev mode")
	}

	config.SetConfigFile(configFile)
	if err := config.ReadInConfig(); err != nil {
		return nil, formattedError("error reading server config file: %v", err)
	}

	return config, nil
}
