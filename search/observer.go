package search

import "github.com/lixenwraith/pathviz/grid"

// Step describes one completed expansion
type Step struct {
	Current  *grid.Cell
	Expanded int // Cells expanded so far, including Current
	OpenSize int // Cells waiting in the frontier
}

// Observer is notified after every expansion
// It observes only; nothing it does affects the search result
type Observer interface {
	OnStep(Step)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(Step)

func (f ObserverFunc) OnStep(s Step) { f(s) }

type multiObserver []Observer

func (m multiObserver) OnStep(s Step) {
	for _, o := range m {
		o.OnStep(s)
	}
}

// Multi fans a step out to every non-nil observer in order
func Multi(observers ...Observer) Observer {
	out := make(multiObserver, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

type nopObserver struct{}

func (nopObserver) OnStep(Step) {}
