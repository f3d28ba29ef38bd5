package text

// Batch partitions items into consecutive groups of at most size elements.
// Order is preserved within and across batches; boundaries carry no meaning
// beyond bounding the footprint of downstream embedding calls. A size < 1
// yields a single batch.
func Batch[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size < 1 {
		return [][]T{items}
	}

	batches := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[start:end])
	}
	return batches
}
