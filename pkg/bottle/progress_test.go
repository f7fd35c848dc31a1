package bottle

import (
	"fmt"
	"sync"
	"testing"
)

func TestNoProgressSatisfiesInterface(t *testing.T) {
	var p Progress = NoProgress{}
	p.Start("tree", "https://example.com/tree.tar.gz", 1024)
	p.SetCurrent("tree", 512)
	p.Finish("tree")
}

func TestBarProgressFinishWithoutStartIsSafe(t *testing.T) {
	b := NewBarProgress()
	b.Finish("never-started")
}

// TestBarProgressConcurrentAccessDoesNotRace drives Start/SetCurrent/Finish
// for several packages from concurrent goroutines against one shared
// BarProgress, mirroring the installer's bounded-parallel download phase.
// Without BarProgress.mu this reliably panics with "concurrent map writes"
// under -race, and often even without it.
func TestBarProgressConcurrentAccessDoesNotRace(t *testing.T) {
	b := NewBarProgress()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		name := fmt.Sprintf("pkg-%d", i)
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			b.Start(name, "https://example.com/"+name, 1024)
			b.SetCurrent(name, 512)
			b.Finish(name)
		}(name)
	}
	wg.Wait()
}
