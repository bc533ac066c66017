/*
Package parpat runs the same data-parallel reduction under thirteen
concurrency strategies, so that their throughput and their results can
be compared on identical input.

A Task owns a dataset and exposes one method per strategy. Every
strategy blocks until all of its workers have terminated and returns the
task's metric, for example the number of primes in the dataset. Tasks
are created by name through a registry that the tasks subpackage
populates.

The subpackages provide the building blocks:

parpat/partition splits index ranges into contiguous parts, either up
front or on demand.

parpat/parallel provides divide-and-conquer loops, reductions, fork/join,
and dedicated workers.

parpat/sync provides a split-locked concurrent map, a concurrent bag,
and a pool of element buffers.

parpat/pipeline provides typed parallel pipelines.

parpat/sort provides parallel sorting algorithms.

parpat/executor implements the thirteen strategies once, for counting
and for key reductions.

parpat/tasks implements the task variants and registers them.

parpat/bench times strategies, parpat/storage persists the results, and
parpat/datagen writes input files for the file-backed tasks. The
parbench command in cmd/parbench ties them together.

The parallel building blocks have been influenced to various extents by
ideas from Cilk and Threading Building Blocks. See
http://supertech.csail.mit.edu/papers/steal.pdf for some theoretical
background.
*/
package parpat
