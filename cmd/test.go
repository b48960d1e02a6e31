package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test connections to TMDB and the optional services",
	Long:  `Test the connection to TMDB and to every enabled integration.`,
	Args:  cobra.NoArgs,
	RunE:  runTest,
}

func runTest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	fmt.Println("Testing connection to TMDB...")
	if err := tmdbClient.TestConnection(ctx); err != nil {
		return fmt.Errorf("TMDB connection failed: %w", err)
	}
	fmt.Println("✓ Connection successful!")

	genres, err := tmdbClient.Genres(ctx)
	if err != nil {
		return fmt.Errorf("failed to get genres: %w", err)
	}
	fmt.Printf("- Genres available: %d\n", len(genres))

	if radarrClient != nil {
		fmt.Printf("\nTesting connection to Radarr at %s...\n", cfg.Radarr.URL)
		if err := radarrClient.TestConnection(ctx); err != nil {
			fmt.Printf("✗ Radarr connection failed: %v\n", err)
		} else {
			fmt.Println("✓ Radarr connection successful!")
			if movies, err := radarrClient.Library(ctx); err == nil {
				fmt.Printf("- Movies in library: %d\n", len(movies))
			}
		}
	} else {
		fmt.Printf("\nRadarr integration: %s\n", integrationStatus(cfg.Radarr.Enabled))
	}

	if overseerrClient != nil {
		fmt.Printf("\nTesting connection to Overseerr at %s...\n", cfg.Overseerr.URL)
		if err := overseerrClient.TestConnection(ctx); err != nil {
			fmt.Printf("✗ Overseerr connection failed: %v\n", err)
		} else {
			fmt.Println("✓ Overseerr connection successful!")
		}
	} else {
		fmt.Printf("\nOverseerr integration: %s\n", integrationStatus(cfg.Overseerr.Enabled))
	}

	if tautulliClient != nil {
		fmt.Printf("\nTesting connection to Tautulli at %s...\n", cfg.Tautulli.URL)
		if err := tautulliClient.TestConnection(ctx); err != nil {
			fmt.Printf("✗ Tautulli connection failed: %v\n", err)
		} else {
			fmt.Println("✓ Tautulli connection successful!")
			fmt.Printf("- Minimum watch percent: %.0f%%\n", cfg.Tautulli.MinWatchPercent)
		}
	} else {
		fmt.Printf("\nTautulli integration: %s\n", integrationStatus(cfg.Tautulli.Enabled))
	}

	return nil
}

// integrationStatus describes a service that has no client
func integrationStatus(enabled bool) string {
	if enabled {
		return "Enabled, but the client could not be created (see log)"
	}
	return "Disabled"
}
