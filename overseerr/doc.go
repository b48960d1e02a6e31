// Package overseerr provides a client for the parts of the Overseerr API that
// streamify uses: reading movie requests to badge search results, and
// submitting new movie requests by TMDB id.
//
// # Usage
//
//	client, err := overseerr.NewClient(
//		"https://overseerr.example.com",
//		"your-api-key",
//		logger,
//		overseerr.WithTimeout(30*time.Second),
//		overseerr.WithPageSize(100),
//	)
//	if err != nil {
//		return err
//	}
//
//	requests, err := client.GetMovieRequestsByTMDBID(ctx)
//	if err != nil {
//		return err
//	}
//
//	created, err := client.RequestMovie(ctx, 603)
//
// # Error Handling
//
// Non-2xx responses are returned as *APIError, which can be classified:
//
//	var apiErr *overseerr.APIError
//	if errors.As(err, &apiErr) && apiErr.IsConflict() {
//		// already requested
//	}
//
// Transport failures wrap ErrNoConnection and invalid arguments to NewClient
// wrap ErrInvalidConfig.
package overseerr
