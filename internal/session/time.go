package session

import "time"

// timeNow is a package-level variable for testability.
// Tests replace this to control response latencies.
var timeNow = time.Now
