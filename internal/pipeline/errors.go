// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import "errors"

// The four abort conditions plus cancellation. Everything else the stages
// encounter degrades in place and never surfaces here.
var (
	// ErrNotFound means primary discovery found no relevant evidence.
	ErrNotFound = errors.New("no biographical evidence found")

	// ErrFictionalSubject means the fictional-character heuristic fired,
	// either at discovery or as a generation-time refusal.
	ErrFictionalSubject = errors.New("subject appears to be fictional")

	// ErrNoSources means the post-filter source pool came up empty.
	ErrNoSources = errors.New("no usable sources after filtering")

	// ErrGenerationFailed means the model call errored or its output could
	// not be repaired into a valid timeline. This stage has no fallback.
	ErrGenerationFailed = errors.New("event generation failed")

	// ErrCancelled reports cooperative cancellation observed at a stage
	// boundary, distinct from failure so callers can tell a user-initiated
	// stop from a genuine error.
	ErrCancelled = errors.New("research cancelled")
)
