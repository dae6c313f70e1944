package metrics

import "time"

// RecordFetchRun records the duration of a full fetch run.
func RecordFetchRun(duration time.Duration) {
	FetchRunDuration.Observe(duration.Seconds())
}

// RecordFeedFetch records the time taken to read one feed.
func RecordFeedFetch(feed string, duration time.Duration) {
	FeedFetchDuration.WithLabelValues(feed).Observe(duration.Seconds())
}

// RecordFeedFetchError records a feed skipped because it could not be read.
func RecordFeedFetchError(feed string) {
	FeedFetchErrors.WithLabelValues(feed).Inc()
}

// RecordArticleFetched records an article accepted into a batch.
func RecordArticleFetched(source string) {
	ArticlesFetchedTotal.WithLabelValues(source).Inc()
}

// RecordEntrySkipped records an entry dropped from a batch. Reason is
// "error" or "duplicate".
func RecordEntrySkipped(reason string) {
	EntriesSkippedTotal.WithLabelValues(reason).Inc()
}

// RecordContentFetchSuccess records a successful extraction and its size in
// characters.
func RecordContentFetchSuccess(duration time.Duration, size int) {
	ContentFetchAttemptsTotal.WithLabelValues("success").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
	ContentFetchSize.Observe(float64(size))
}

// RecordContentFetchFailed records a failed extraction.
func RecordContentFetchFailed(duration time.Duration) {
	ContentFetchAttemptsTotal.WithLabelValues("failure").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
}

// RecordArticleSummarized records the result of summarizing one article.
// Status is "success", "failure" or "skipped".
func RecordArticleSummarized(status string) {
	ArticlesSummarizedTotal.WithLabelValues(status).Inc()
}

// RecordSummarizationDuration records the time one summarization took.
func RecordSummarizationDuration(duration time.Duration) {
	SummarizationDuration.Observe(duration.Seconds())
}

// RecordPersistenceWrite records a collection write. Kind is "json" or
// "digest"; a nil err counts as success.
func RecordPersistenceWrite(kind, file string, count int, err error) {
	if err != nil {
		PersistenceWritesTotal.WithLabelValues(kind, "failure").Inc()
		return
	}
	PersistenceWritesTotal.WithLabelValues(kind, "success").Inc()
	if kind == "json" {
		StoredArticles.WithLabelValues(file).Set(float64(count))
	}
}

// RecordCircuitState records a breaker entering state, where level is the
// gauge value for that state.
func RecordCircuitState(breaker, state string, level int) {
	CircuitBreakerState.WithLabelValues(breaker).Set(float64(level))
	CircuitBreakerTransitions.WithLabelValues(breaker, state).Inc()
}
