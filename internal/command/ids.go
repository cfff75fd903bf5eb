package command

// NextID returns the next free integer key for an ID-keyed collection:
// 1 for an empty map, max(existing)+1 otherwise. Callers must serialize
// invocations themselves; the allocator assumes a single active writer.
func NextID[T any](m map[int]T) int {
	next := 1
	for id := range m {
		if id >= next {
			next = id + 1
		}
	}
	return next
}
