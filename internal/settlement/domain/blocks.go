package settlement

import "sort"

// PartitionBlocks keeps completed sessions ordered by number and groups them
// into consecutive blocks of size. Remaining sessions are returned as pending.
func PartitionBlocks(sessions []SessionRecord, size int) ([][]SessionRecord, []SessionRecord) {
	if size <= 0 {
		return nil, nil
	}
	completed := make([]SessionRecord, 0, len(sessions))
	for _, s := range sessions {
		if s.Completed {
			completed = append(completed, s)
		}
	}
	sort.SliceStable(completed, func(i, j int) bool {
		return completed[i].Number < completed[j].Number
	})

	full := len(completed) / size
	blocks := make([][]SessionRecord, 0, full)
	for i := 0; i < full; i++ {
		blocks = append(blocks, completed[i*size:(i+1)*size])
	}
	pending := completed[full*size:]
	if len(pending) == 0 {
		pending = nil
	}
	return blocks, pending
}
