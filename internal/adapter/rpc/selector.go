package rpc

import (
	"fmt"
	"math/rand/v2"

	"miniwallet/internal/domain/entity"
)

// Selection is the endpoint picking strategy of a connect run.
type Selection string

const (
	// SelectRandom picks uniformly among endpoints not yet tried in the current run.
	SelectRandom Selection = "random"
	// SelectSequential walks the endpoints in document order.
	SelectSequential Selection = "sequential"
)

// ParseSelection validates a configured strategy name.
func ParseSelection(s string) (Selection, error) {
	switch Selection(s) {
	case SelectRandom, "":
		return SelectRandom, nil
	case SelectSequential:
		return SelectSequential, nil
	}
	return "", fmt.Errorf("unknown endpoint selection %q", s)
}

// picker yields endpoints for successive attempts of one connect run.
type picker struct {
	selection Selection
	all       []entity.Endpoint
	pool      []entity.Endpoint
	next      int
	intn      func(int) int
}

func newPicker(selection Selection, endpoints []entity.Endpoint, intn func(int) int) *picker {
	if intn == nil {
		intn = rand.IntN
	}
	return &picker{selection: selection, all: endpoints, intn: intn}
}

func (p *picker) pick() entity.Endpoint {
	if p.selection == SelectSequential {
		ep := p.all[p.next%len(p.all)]
		p.next++
		return ep
	}
	if len(p.pool) == 0 {
		p.pool = append(p.pool[:0], p.all...)
	}
	i := p.intn(len(p.pool))
	ep := p.pool[i]
	p.pool = append(p.pool[:i], p.pool[i+1:]...)
	return ep
}
