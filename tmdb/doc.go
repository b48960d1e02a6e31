// Package tmdb provides a client for the catalog endpoints of The Movie Database API.
//
// The client covers the four lookups the discovery surfaces need: popular movies,
// title search, movies filtered by genre and the genre list. Every call is a single
// attempt. There is no retry and no response caching, so each call maps onto exactly
// one outbound request.
//
// # Usage
//
//	logger := zerolog.New(os.Stderr)
//	client, err := tmdb.NewClient(
//		"your-api-key",
//		logger,
//		tmdb.WithTimeout(10*time.Second),
//		tmdb.WithRateLimit(4, 8),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	page, err := client.SearchMovies(ctx, "blade runner", 1)
//	if err != nil {
//		fmt.Println(tmdb.UserMessage(err))
//	}
//
// # Error Handling
//
// Every failure is returned as an *Error carrying the operation that failed. The
// Message method yields a fixed, human readable message per operation, which is what
// the presentation layer shows. Non-200 responses are additionally classified by an
// *APIError:
//
//	var apiErr *tmdb.APIError
//	if errors.As(err, &apiErr) && apiErr.IsUnauthorized() {
//		// bad api key
//	}
package tmdb
