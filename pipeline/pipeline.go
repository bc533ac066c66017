/*
Package pipeline provides means to construct and execute parallel
pipelines over typed data.

A Pipeline feeds batches of data through several functions that can be
specified to be executed in encounter order, in parallel, or in parallel
with a bounded number of goroutines, where a bound of one runs batches
sequentially in arbitrary order. Ordered and parallel stages can
arbitrarily alternate.

A Pipeline consists of a Source object, and several Node objects.
Slices, index ranges, and bufio.Scanner objects can act as sources, and
other kinds of Source objects can be added by user programs.

Node objects consist of filters, which are pairs of receiver and
finalizer functions. Each batch is passed to each receiver function,
which can transform and modify the batch for the next receiver function
in the pipeline. Each finalizer function is called once when all
batches have been passed through all receiver functions.

Pipelines do not have an explicit representation for sinks. Instead,
filters can use side effects to generate results.

A panic in a receiver is recovered and recorded as an error of the
pipeline, together with the stack trace of the panicking goroutine. The
first error cancels the pipeline, and Run returns all recorded errors
once every goroutine of the pipeline has terminated.
*/
package pipeline

import (
	"context"
	"runtime"
	"sync"

	"go.uber.org/multierr"

	"github.com/exascience/parpat/internal"
)

type (
	/*
	  A Node represents a sequence of filters which are together executed
	  either in encounter order, in arbitrary sequential order, or in
	  parallel.

	  The methods of this interface are implemented by the node types of
	  this package and called by pipelines, so that user programs are
	  typically not concerned with them.
	*/
	Node[T any] interface {
		// TryMerge tries to append the filters of node to the filters of
		// the current node, which succeeds if both nodes are of a
		// compatible kind.
		TryMerge(node Node[T]) (merged bool)

		// Begin informs this node that the pipeline is going to start to
		// feed batches of data to it. dataSize is the expected total size
		// of all batches, or negative if unknown, and may be updated for
		// subsequent nodes. A node that returns false is removed from the
		// pipeline.
		Begin(p *Pipeline[T], index int, dataSize *int) (keep bool)

		// Feed is called for each batch of data. After the batch has been
		// processed, the node must call p.FeedForward with the same index
		// and sequence number, even if the batch became empty.
		Feed(p *Pipeline[T], index int, seqNo int, data []T)

		// End is called after all batches have been passed to Feed. It
		// waits for the node's goroutines, and calls the finalizers of its
		// filters if the pipeline did not fail.
		End(p *Pipeline[T])
	}

	/*
	  A Pipeline is a parallel pipeline that can feed batches of data
	  fetched from a source through several nodes that are ordered,
	  sequential, or parallel.

	  The zero Pipeline is valid and empty.

	  A Pipeline must not be copied after first use.
	*/
	Pipeline[T any] struct {
		mutex      sync.RWMutex
		err        error
		ctx        context.Context
		cancel     context.CancelFunc
		source     Source[T]
		nodes      []Node[T]
		nofBatches int
	}
)

/*
Err records or gets the errors of this pipeline.

If err is nil, Err returns the errors recorded so far, combined with
multierr. Otherwise err is added to the recorded errors, the pipeline is
canceled, and the combined errors are returned.

Err is safe to be invoked from different goroutines.
*/
func (p *Pipeline[T]) Err(err error) error {
	if err == nil {
		p.mutex.RLock()
		err = p.err
		p.mutex.RUnlock()
		return err
	}
	p.mutex.Lock()
	p.err = multierr.Append(p.err, err)
	err = p.err
	p.mutex.Unlock()
	if p.cancel != nil {
		p.cancel()
	}
	return err
}

// Context returns this pipeline's context.
func (p *Pipeline[T]) Context() context.Context {
	return p.ctx
}

// Cancel stops this pipeline without recording an error. Finalizers
// still run.
func (p *Pipeline[T]) Cancel() {
	p.cancel()
}

// Source sets the data source for this pipeline. Only the last call
// before Run is effective.
func (p *Pipeline[T]) Source(source Source[T]) {
	p.source = source
}

// Add appends nodes to the end of this pipeline.
func (p *Pipeline[T]) Add(nodes ...Node[T]) {
	for _, node := range nodes {
		if l := len(p.nodes); (l == 0) || !p.nodes[l-1].TryMerge(node) {
			p.nodes = append(p.nodes, node)
		}
	}
}

/*
NofBatches sets or gets the number of batches that are created from the
data source for this pipeline, if the expected total size of the source
is known.

If n < 1, NofBatches returns the current setting, choosing a default
that takes runtime.GOMAXPROCS(0) into account if there is none.

If the total size of the source is unknown, the pipeline starts with a
small batch size and increases it for every subsequent batch.
*/
func (p *Pipeline[T]) NofBatches(n int) (nofBatches int) {
	if n < 1 {
		nofBatches = p.nofBatches
		if nofBatches < 1 {
			nofBatches = 2 * runtime.GOMAXPROCS(0)
			p.nofBatches = nofBatches
		}
	} else {
		nofBatches = n
		p.nofBatches = n
	}
	return
}

const (
	batchInc     = 1024
	maxBatchSize = 0x2000000
)

func nextBatchSize(batchSize int) (result int) {
	result = batchSize + batchInc
	if result > maxBatchSize {
		result = maxBatchSize
	}
	return
}

func (p *Pipeline[T]) canceled() bool {
	select {
	case <-p.ctx.Done():
		return true
	default:
		return false
	}
}

/*
RunWithContext executes the pipeline under a child context of ctx.

It prepares the data source, tells each node that batches are going to
be sent by calling Begin, fetches batches from the source and sends them
to the first node until the source is depleted or the pipeline is
canceled, and finally calls End on every node. It returns the errors
recorded during execution.
*/
func (p *Pipeline[T]) RunWithContext(ctx context.Context) error {
	if err := p.Err(nil); err != nil {
		return err
	}
	p.ctx, p.cancel = context.WithCancel(ctx)
	defer p.cancel()
	if p.source == nil {
		return p.Err(errNoSource)
	}
	dataSize := p.source.Prepare(p.ctx)
	filteredSize := dataSize
	for index := 0; index < len(p.nodes); {
		if p.nodes[index].Begin(p, index, &filteredSize) {
			index++
		} else {
			p.nodes = append(p.nodes[:index], p.nodes[index+1:]...)
		}
	}
	if len(p.nodes) > 0 {
		batchSize := batchInc
		if dataSize >= 0 {
			batchSize = ((dataSize - 1) / p.NofBatches(0)) + 1
			if batchSize < 1 {
				batchSize = 1
			}
		}
		for seqNo := 0; !p.canceled() && (p.source.Fetch(batchSize) > 0); seqNo++ {
			p.nodes[0].Feed(p, 0, seqNo, p.source.Data())
			if err := p.source.Err(); err != nil {
				p.Err(err)
			}
			if dataSize < 0 {
				batchSize = nextBatchSize(batchSize)
			}
		}
	}
	for _, node := range p.nodes {
		node.End(p)
	}
	return p.Err(nil)
}

// Run executes the pipeline with RunWithContext(context.Background()).
func (p *Pipeline[T]) Run() error {
	return p.RunWithContext(context.Background())
}

/*
FeedForward must be called in the Feed method of a node to forward a
potentially modified data batch to the next node in the pipeline, with
the same index and seqNo that Feed received.
*/
func (p *Pipeline[T]) FeedForward(index int, seqNo int, data []T) {
	if index++; index < len(p.nodes) {
		p.nodes[index].Feed(p, index, seqNo, data)
	}
}

func feed[T any](p *Pipeline[T], receivers []Receiver[T], index int, seqNo int, data []T) {
	if err := internal.Catch(func() error {
		for _, receive := range receivers {
			data = receive(seqNo, data)
		}
		return nil
	}); err != nil {
		p.Err(err)
		return
	}
	p.FeedForward(index, seqNo, data)
}

func finalize[T any](p *Pipeline[T], finalizers []Finalizer) {
	if p.Err(nil) != nil {
		return
	}
	if err := internal.Catch(func() error {
		for _, f := range finalizers {
			f()
		}
		return nil
	}); err != nil {
		p.Err(err)
	}
}
