package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Daskott/addressbook/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerConfig(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "server.yml")
	err := os.WriteFile(configFile, []byte(`
database:
  driver: postgres
  postgres:
    dsn: "host=db user=addressbook dbname=addressbook"
addressbook:
  privateKeyPem: "pem"
  cron:
    timeZone: "UTC"
  listener:
    port: 8080
`), 0600)
	require.Nil(t, err)

	cases := []struct {
		description  string
		configFile   string
		devMode      bool
		expectError  bool
		expectedPort int
		expectedDb   string
	}{
		{
			description:  "Should use the built-in config in dev mode",
			devMode:      true,
			expectedPort: 3000,
			expectedDb:   "sqlite",
		},
		{
			description:  "Should prefer an explicit config file in dev mode",
			configFile:   configFile,
			devMode:      true,
			expectedPort: 8080,
			expectedDb:   "postgres",
		},
		{
			description:  "Should read the config file",
			configFile:   configFile,
			expectedPort: 8080,
			expectedDb:   "postgres",
		},
		{
			description: "Should require a config file outside dev mode",
			expectError: true,
		},
		{
			description: "Should fail when the config file is missing",
			configFile:  filepath.Join(t.TempDir(), "missing.yml"),
			expectError: true,
		},
	}

	for _, tc := range cases {
		config, err := serverConfig(tc.configFile, tc.devMode)
		if tc.expectError {
			assert.NotNil(t, err, tc.description)
			continue
		}
		require.Nil(t, err, tc.description)

		parsed := shared.ServerConfig{}
		require.Nil(t, config.Unmarshal(&parsed), tc.description)
		assert.Equal(t, tc.expectedPort, parsed.Addressbook.Listener.Port, tc.description)
		assert.Equal(t, tc.expectedDb, parsed.Database.Driver, tc.description)
	}
}
