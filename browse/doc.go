// Package browse turns three independently edited inputs (search text, genre and
// minimum rating) into one result set.
//
// # Query selection
//
// Each settled query issues exactly one catalog call:
//
//   - non-empty search text (after trimming) searches by title
//   - otherwise a selected genre lists that genre
//   - otherwise the popular list is fetched
//
// A minimum rating is then applied locally, keeping movies rated at or above the
// threshold in their original order.
//
// # Sessions
//
// A Session debounces edits: every change restarts a quiet period (500ms by
// default) and only the query present when it elapses is fetched. Nothing is
// fetched when the query has returned to its defaults. Each fetch gets a
// generation number and results from superseded fetches are dropped, so a slow
// early response never replaces a later one.
//
//	session := browse.NewSession(client, browse.WithLogger(logger))
//	defer session.Close()
//
//	stop := session.Watch(func(state browse.State) {
//		fmt.Print(render.FormatState(state, opts))
//	})
//	defer stop()
//
//	if err := session.Initialize(ctx); err != nil {
//		// state.Error holds the message to show; Retry reloads
//	}
//	session.SetSearchText("alien")
package browse
