// Package resilience groups the fault tolerance helpers used by the fetch and
// summarization paths:
//   - circuitbreaker wraps github.com/sony/gobreaker for feed and article downloads
//   - retry provides a fixed attempt loop (WithBackoff) and the outcome-driven
//     Policy used by the hosted summarization backend
//
//	cb := circuitbreaker.New(circuitbreaker.FeedFetchConfig())
//	feed, err := circuitbreaker.Do(cb, func() (*gofeed.Feed, error) {
//	    return parser.ParseURLWithContext(url, ctx)
//	})
//
//	err := retry.WithBackoff(ctx, retry.FeedFetchConfig(), func() error {
//	    return performOperation()
//	})
package resilience
