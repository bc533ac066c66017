package pipeline

import (
	"fmt"
	"sync"
)

type (
	dataBatch[T any] struct {
		seqNo int
		data  []T
	}

	seqnode[T any] struct {
		kind       NodeKind
		channel    chan dataBatch[T]
		waitGroup  sync.WaitGroup
		filters    []Filter[T]
		receivers  []Receiver[T]
		finalizers []Finalizer
	}
)

// Ord creates an ordered node with the given filters.
func Ord[T any](filters ...Filter[T]) Node[T] {
	return &seqnode[T]{kind: Ordered, filters: filters}
}

func (node *seqnode[T]) TryMerge(next Node[T]) bool {
	if nxt, merge := next.(*seqnode[T]); merge && (len(nxt.filters) > 0) {
		if nxt.kind == Ordered {
			node.kind = Ordered
		}
		node.filters = append(node.filters, nxt.filters...)
		node.receivers = append(node.receivers, nxt.receivers...)
		node.finalizers = append(node.finalizers, nxt.finalizers...)
		return true
	}
	return false
}

func (node *seqnode[T]) Begin(p *Pipeline[T], index int, dataSize *int) (keep bool) {
	node.receivers, node.finalizers = ComposeFilters(p, node.kind, dataSize, node.filters)
	node.filters = nil
	if keep = (len(node.receivers) > 0) || (len(node.finalizers) > 0); !keep {
		return
	}
	node.channel = make(chan dataBatch[T])
	node.waitGroup.Add(1)
	switch node.kind {
	case Sequential:
		go node.sequential(p, index)
	case Ordered:
		go node.ordered(p, index)
	default:
		panic(fmt.Sprintf("invalid node kind in a sequential pipeline node: %v", node.kind))
	}
	return
}

func (node *seqnode[T]) sequential(p *Pipeline[T], index int) {
	defer node.waitGroup.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case batch, ok := <-node.channel:
			if !ok {
				return
			}
			feed(p, node.receivers, index, batch.seqNo, batch.data)
		}
	}
}

// ordered stashes batches that arrive early until all their predecessors
// have been processed.
func (node *seqnode[T]) ordered(p *Pipeline[T], index int) {
	defer node.waitGroup.Done()
	stash := make(map[int][]T)
	run := 0
	for {
		select {
		case <-p.ctx.Done():
			return
		case batch, ok := <-node.channel:
			switch {
			case !ok:
				return
			case batch.seqNo < run:
				p.Err(fmt.Errorf("invalid receive order in an ordered pipeline node: batch %v after %v", batch.seqNo, run))
				return
			case batch.seqNo > run:
				stash[batch.seqNo] = batch.data
				continue
			}
			feed(p, node.receivers, index, batch.seqNo, batch.data)
			for run++; ; run++ {
				data, ok := stash[run]
				if !ok || p.canceled() {
					break
				}
				delete(stash, run)
				feed(p, node.receivers, index, run, data)
			}
		}
	}
}

func (node *seqnode[T]) Feed(p *Pipeline[T], _ int, seqNo int, data []T) {
	select {
	case <-p.ctx.Done():
	case node.channel <- dataBatch[T]{seqNo, data}:
	}
}

func (node *seqnode[T]) End(p *Pipeline[T]) {
	close(node.channel)
	node.waitGroup.Wait()
	finalize(p, node.finalizers)
	node.receivers = nil
	node.finalizers = nil
}
