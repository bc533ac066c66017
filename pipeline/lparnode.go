package pipeline

import (
	"runtime"
	"sync"
)

type lparnode[T any] struct {
	limit      int
	channel    chan dataBatch[T]
	waitGroup  sync.WaitGroup
	filters    []Filter[T]
	receivers  []Receiver[T]
	finalizers []Finalizer
}

// LimitedPar creates a parallel node with the given filters. The node
// uses at most limit goroutines at the same time. If limit is <= 0,
// runtime.GOMAXPROCS(0) is used instead. For unlimited nodes, use Par.
func LimitedPar[T any](limit int, filters ...Filter[T]) Node[T] {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	if limit == 1 {
		return &seqnode[T]{kind: Sequential, filters: filters}
	}
	return &lparnode[T]{limit: limit, filters: filters}
}

func (node *lparnode[T]) TryMerge(next Node[T]) bool {
	if nxt, merge := next.(*lparnode[T]); merge && (nxt.limit == node.limit) {
		node.filters = append(node.filters, nxt.filters...)
		node.receivers = append(node.receivers, nxt.receivers...)
		node.finalizers = append(node.finalizers, nxt.finalizers...)
		return true
	}
	return false
}

// Begin starts limit workers that share one channel.
func (node *lparnode[T]) Begin(p *Pipeline[T], index int, dataSize *int) (keep bool) {
	node.receivers, node.finalizers = ComposeFilters(p, Parallel, dataSize, node.filters)
	node.filters = nil
	if keep = (len(node.receivers) > 0) || (len(node.finalizers) > 0); !keep {
		return
	}
	node.channel = make(chan dataBatch[T])
	node.waitGroup.Add(node.limit)
	for i := 0; i < node.limit; i++ {
		go func() {
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
		}()
	}
	return
}

func (node *lparnode[T]) Feed(p *Pipeline[T], _ int, seqNo int, data []T) {
	select {
	case <-p.ctx.Done():
	case node.channel <- dataBatch[T]{seqNo, data}:
	}
}

func (node *lparnode[T]) End(p *Pipeline[T]) {
	close(node.channel)
	node.waitGroup.Wait()
	finalize(p, node.finalizers)
	node.receivers = nil
	node.finalizers = nil
}
