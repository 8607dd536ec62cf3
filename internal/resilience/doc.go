// Package resilience groups the fault-tolerance helpers wrapped around
// outbound calls made during ingestion. Adapters retry through a breaker
// so that an open breaker ends the retry loop at once:
//
//	b := circuitbreaker.New(circuitbreaker.Provider("newsapi"))
//	err := retry.Do(ctx, retry.Provider(), b.Name(), func() error {
//	    body, err = circuitbreaker.Do(b, func() ([]byte, error) {
//	        return fetch(ctx)
//	    })
//	    return err
//	})
package resilience
