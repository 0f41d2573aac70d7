// Package entropy acquires random bytes from an external, rate-limited
// quantum random number service.
//
// A Service performs exactly one request and reports the outcome as a
// Response, which is either a Success carrying the bytes or a Failure
// carrying the reason. Source layers the acquisition policy on top: a bounded
// number of attempts separated by a fixed delay, and a rate gate shared by
// every request it issues so the service's minimum request interval is never
// violated, retries included.
//
// Time is read and spent through a Clock, so tests drive retries and the rate
// gate without real sleeps.
package entropy
