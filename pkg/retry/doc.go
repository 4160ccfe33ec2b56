// Package retry wraps calls to remote collaborators, such as HTTP embedding
// services, with bounded exponential backoff.
//
//	vectors, err := retry.DoWithResult(ctx, cfg, func() ([][]float32, error) {
//	    return client.embed(ctx, texts)
//	})
//
// A Retryable predicate narrows retries to transient failures; errors wrapped
// with NonRetryable stop immediately.
package retry
