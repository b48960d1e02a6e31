// Package tautulli reads Plex play history from Tautulli so that movies the
// household has already watched can be marked in search results.
//
//	client, err := tautulli.NewClient("http://localhost:8181", apiKey, logger)
//	if err != nil {
//		return err
//	}
//
//	watched, err := client.WatchStatusByTMDBID(ctx, 85)
//
// History rows without a TMDB id (older Plex agents) are skipped.
package tautulli
