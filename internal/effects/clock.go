package effects

import "github.com/jonboulle/clockwork"

// Clock provides wall-clock time and deferred callbacks. Resets scheduled
// through it run on their own goroutine, as with time.AfterFunc.
type Clock = clockwork.Clock
