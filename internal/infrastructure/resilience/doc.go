/*
Package resilience provides a circuit breaker for calls to remote services.

The guard puts its classifier client behind a breaker so that a dead
reputation service fails fast into an "uncertain" verdict instead of
stalling every navigation for the full request timeout.

# States

  - Closed: calls pass through and outcomes are counted
  - Open: calls fail immediately with ErrCircuitOpen
  - Half-Open: up to MaxRequests trial calls decide whether to close

Transitions:

	Closed --[ReadyToTrip]--> Open --[Timeout]--> Half-Open --[successes]--> Closed
	                                                  |
	                                              [failure]
	                                                  v
	                                                Open

# Usage

	breaker := resilience.New("classifier", resilience.Settings{
		Timeout: 30 * time.Second,
		ReadyToTrip: func(c resilience.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
	})

	verdict, err := resilience.Execute(breaker, func() (Verdict, error) {
		return client.check(ctx, url)
	})

Outcomes are tagged with a generation number. A call that finishes after
the breaker has moved on does not affect the new generation's counts.
*/
package resilience
