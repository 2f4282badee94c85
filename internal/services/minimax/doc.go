// Package minimax talks to the MiniMax generation API: asynchronous video
// generation (first/last frame conditioning), asynchronous speech synthesis,
// and file retrieval for finished artifacts.
//
// Submissions return a provider job id immediately; completion is observed by
// polling the matching status endpoint. The client performs no retries of its
// own. Transport failures surface as errors so the awaiting layer can apply
// its transient-retry policy.
package minimax
