package pipeline_test

import (
	"bufio"
	"fmt"
	"io"
	"runtime"
	"slices"
	"strings"

	"github.com/exascience/parpat/pipeline"
	"github.com/exascience/parpat/sync"
)

func WordCount(r io.Reader) (*sync.Map[string, int], error) {
	result := sync.NewMap[string, int](16*runtime.GOMAXPROCS(0), nil)
	scanner := pipeline.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	var p pipeline.Pipeline[string]
	p.Source(scanner)
	p.Add(
		pipeline.Par(pipeline.Receive(
			func(_ int, data []string) []string {
				var uniqueWords []string
				for _, s := range data {
					count, _ := result.Modify(s, func(value int, _ bool) (int, bool) {
						return value + 1, true
					})
					if count == 1 {
						uniqueWords = append(uniqueWords, s)
					}
				}
				return uniqueWords
			},
		)),
		pipeline.Ord(pipeline.ReceiveAndFinalize(
			func(_ int, data []string) []string {
				// print unique words as encountered first at the source
				for _, s := range data {
					fmt.Print(s, " ")
				}
				return data
			},
			func() { fmt.Println(".") },
		)),
	)
	return result, p.Run()
}

func Example_wordCount() {
	r := strings.NewReader("The big black bug bit the big black bear but the big black bear bit the big black bug back")
	counts, err := WordCount(r)
	if err != nil {
		fmt.Println(err)
		return
	}
	var words []string
	counts.Range(func(word string, _ int) bool {
		words = append(words, word)
		return true
	})
	slices.Sort(words)
	for _, word := range words {
		count, _ := counts.Load(word)
		fmt.Println(word, count)
	}

	// Output:
	// The big black bug bit the bear but back .
	// The 1
	// back 1
	// bear 2
	// big 4
	// bit 2
	// black 4
	// bug 2
	// but 1
	// the 3
}
