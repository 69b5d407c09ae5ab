package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/marcus/qn/internal/output"
	"github.com/marcus/qn/internal/remoteclient"
	"github.com/marcus/qn/internal/syncconfig"
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:     "auth",
	Short:   "Manage sync server credentials",
	GroupID: "sync",
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store the sync server URL and auth key",
	RunE: func(cmd *cobra.Command, args []string) error {
		url, _ := cmd.Flags().GetString("url")
		key, _ := cmd.Flags().GetString("key")
		if url == "" || key == "" {
			output.Error("both --url and --key are required")
			return fmt.Errorf("missing credentials")
		}

		deviceID, err := syncconfig.GetDeviceID()
		if err != nil {
			output.Error("generate device id: %v", err)
			return err
		}

		// Verify before persisting so a typo'd key fails loudly now.
		client := remoteclient.New(url, key, deviceID)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := client.HealthCheck(ctx); err != nil {
			output.Warning("server not reachable right now: %v", err)
		} else if _, err := client.FetchAll(ctx); err != nil {
			output.Error("credential check failed: %v", err)
			return err
		}

		creds := &syncconfig.AuthCredentials{
			AuthKey:   key,
			ServerURL: url,
			DeviceID:  deviceID,
		}
		if err := syncconfig.SaveAuth(creds); err != nil {
			output.Error("save credentials: %v", err)
			return err
		}

		cfg, err := syncconfig.LoadConfig()
		if err != nil {
			output.Error("load config: %v", err)
			return err
		}
		cfg.Sync.URL = url
		cfg.Sync.Enabled = true
		if err := syncconfig.SaveConfig(cfg); err != nil {
			output.Error("save config: %v", err)
			return err
		}

		output.Success("logged in to %s (device %s)", url, deviceID[:8])
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove stored credentials and disable sync",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := syncconfig.ClearAuth(); err != nil {
			output.Error("clear credentials: %v", err)
			return err
		}
		cfg, err := syncconfig.LoadConfig()
		if err == nil && cfg.Sync.Enabled {
			cfg.Sync.Enabled = false
			if err := syncconfig.SaveConfig(cfg); err != nil {
				output.Warning("disable sync in config: %v", err)
			}
		}
		output.Success("logged out")
		return nil
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := syncconfig.LoadAuth()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		if creds == nil || creds.AuthKey == "" {
			output.Info("not logged in")
			return nil
		}
		output.Info("server:  %s", creds.ServerURL)
		output.Info("device:  %s", creds.DeviceID)
		output.Info("key:     %s...", creds.AuthKey[:min(8, len(creds.AuthKey))])
		return nil
	},
}

func init() {
	authLoginCmd.Flags().String("url", "", "Sync server base URL")
	authLoginCmd.Flags().String("key", "", "Shared auth key")
	authCmd.AddCommand(authLoginCmd, authLogoutCmd, authStatusCmd)
	rootCmd.AddCommand(authCmd)
}
