package services

import "context"

// persistentContext keeps values but drops cancellation, so follow-up work
// (attachment cleanup, mail) finishes after the HTTP client goes away.
func persistentContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return context.WithoutCancel(ctx)
}
