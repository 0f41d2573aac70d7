// Package timeouts defines shared timing constants used across commands.
package timeouts

import "time"

// EntropyRequest caps a single HTTP round trip to the entropy service.
const EntropyRequest = 30 * time.Second

// EntropyMinInterval is the documented minimum spacing between two requests
// to the ANU QRNG service (one request per minute).
const EntropyMinInterval = time.Minute

// EntropyRetryDelay is the default pause between failed attempts. It is kept
// above EntropyMinInterval so a retry never lands inside the rate window.
const EntropyRetryDelay = 65 * time.Second
