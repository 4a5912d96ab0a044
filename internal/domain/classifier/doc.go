/*
Package classifier talks to the remote URL reputation service.

# Contract

Classify never returns an error. The verdict is one of:

  - needs-configuration, when the credential is empty (no request is made)
  - uncertain, on transport failure, timeout, non-2xx status, a body that
    is not a JSON object, or an open circuit breaker
  - a definitive verdict mapped from the provider fields
    malicious, is_blocked_by_user_rule, blocking_rule_details and info

Each call makes at most one request. Retries are disabled on both the
resty client and the pooled retryablehttp transport underneath it.

# Wire format

	POST {base}/check
	Authorization: Bearer <credential>
	{"url": "https://example.com"}

	-> {"malicious": false, "is_blocked_by_user_rule": false,
	    "blocking_rule_details": null, "info": "clean"}

	POST {base}/managed_profiles/validate-token
	{"token": "..."}

	-> {"valid": true}

# Caching

The client does not cache. NewCached adds an optional go-cache layer in
front of any Classifier that keeps definitive verdicts only.
*/
package classifier
