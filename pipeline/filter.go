package pipeline

// A NodeKind represents the different kinds of nodes.
type NodeKind int

const (
	// Ordered nodes receive batches in encounter order.
	Ordered NodeKind = iota

	// Sequential nodes receive batches in arbitrary sequential order.
	Sequential

	// Parallel nodes receive batches in parallel.
	Parallel
)

/*
A Filter is a function that returns a Receiver and a Finalizer to be
added to a node. It receives a pipeline, the kind of node it will be
added to, and the expected total data size that the receiver will be
asked to process, which is negative if unknown. A filter that changes
the total size for subsequent filters updates dataSize.

Either the receiver or the finalizer or both can be nil, in which case
they will not be added to the current node.
*/
type Filter[T any] func(pipeline *Pipeline[T], kind NodeKind, dataSize *int) (Receiver[T], Finalizer)

// A Receiver is called for every data batch, and returns a potentially
// modified data batch. The seqNo parameter indicates the order in which
// the batch was encountered at the pipeline's data source.
type Receiver[T any] func(seqNo int, data []T) (filteredData []T)

// A Finalizer is called once after the corresponding receiver has been
// called for all data batches in the current pipeline.
type Finalizer func()

// ComposeFilters calls filters in order and collects the non-nil
// receivers and finalizers they return. It is used in Node
// implementations.
func ComposeFilters[T any](pipeline *Pipeline[T], kind NodeKind, dataSize *int, filters []Filter[T]) (receivers []Receiver[T], finalizers []Finalizer) {
	for _, filter := range filters {
		receiver, finalizer := filter(pipeline, kind, dataSize)
		if receiver != nil {
			receivers = append(receivers, receiver)
		}
		if finalizer != nil {
			finalizers = append(finalizers, finalizer)
		}
	}
	return
}
