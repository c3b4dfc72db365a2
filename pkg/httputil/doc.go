// Package httputil provides HTTP utilities for outbound service clients.
//
// # Retry
//
// [Retry] runs a call with exponential backoff for transient failures.
// Callers mark an error as transient with [Retryable]; anything else stops
// the loop immediately:
//
//	err := httputil.Retry(ctx, httputil.DefaultPolicy, func(attempt int) error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return httputil.Retryable(err)
//	    }
//	    ...
//	})
//
// The judgment engine client treats network errors, 5xx and 429 responses as
// retryable.
package httputil
