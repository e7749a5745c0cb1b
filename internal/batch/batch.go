// Package batch splits ordered work into bounded, ordered chunks.
package batch

import "fmt"

// TitleBatchSize is the number of titles sent to the model in one request.
const TitleBatchSize = 200

// Split returns items in consecutive chunks of at most size elements.
// Concatenating the chunks yields items again. The chunks share items'
// backing array. Split panics if size is not positive.
func Split[T any](items []T, size int) [][]T {
	if size < 1 {
		panic(fmt.Sprintf("batch: invalid size %d", size))
	}
	if len(items) == 0 {
		return nil
	}

	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end:end])
	}
	return chunks
}
