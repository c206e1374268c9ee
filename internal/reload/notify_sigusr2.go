//go:build !windows
// +build !windows

package reload

import (
	"os"
	"os/signal"
	"syscall"
)

// subscribe turns SIGUSR2 into rules reload requests.
func (n *Notifier) subscribe() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGUSR2)
	go func() {
		for range c {
			n.Notify()
		}
	}()
}
