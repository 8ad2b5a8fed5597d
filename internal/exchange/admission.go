package exchange

import (
	"context"
	"log"
	"time"
)

// checkSubmissionStatus decides whether the identity may submit this week.
// One counted submission is allowed per window ending at the next Monday
// 00:00 UTC; older records stay in the store for the gallery but do not
// block. Store errors fail open: availability wins over strict enforcement,
// the error is kept on the status for observability only.
func checkSubmissionStatus(ctx context.Context, store Store, identityHash string, now time.Time) SubmissionStatus {
	last, err := store.LatestSubmission(ctx, identityHash)
	if err != nil {
		log.Printf("album-exchange: submission status lookup: %v", err)
		return SubmissionStatus{CanSubmit: true, Error: "error checking status"}
	}
	if last == nil {
		return SubmissionStatus{CanSubmit: true}
	}

	boundary := nextResetTime(now)
	if last.CreatedAt.Before(boundary.Add(-submissionWindow)) {
		return SubmissionStatus{CanSubmit: true}
	}

	return SubmissionStatus{
		CanSubmit:     false,
		RemainingTime: formatRemaining(now, boundary),
	}
}
