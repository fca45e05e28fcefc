// Package proc configures engine subprocesses so a cancelled synthesis takes
// its whole process tree with it.
package proc

import "time"

// waitDelay bounds how long Wait blocks on pipes after the process is killed.
const waitDelay = 2 * time.Second
