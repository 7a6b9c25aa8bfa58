package zctc

// writeSample performs §4.6's terminal selection and backtrace for one
// sample: it walks each of the top K beams from node back to root,
// emitting (token, frame) pairs in reverse, and writes them
// right-aligned into the caller's per-sample output slices. Beams
// beyond however many actually survived are padded with empty beams
// (the root, depth 0), and every unused prefix position is explicitly
// zeroed so the guarantee holds regardless of what garbage the
// caller's buffer previously held (§6.2).
func writeSample(a *arena, entries []beamEntry, beamWidth, seqLen int, labels, timesteps []int32, seqPos []int32) {
	for k := 0; k < beamWidth; k++ {
		ref := a.root()
		if k < len(entries) {
			ref = entries[k].ref
		}

		depth := int(a.dereference(ref).depth)
		start := seqLen - depth
		seqPos[k] = int32(start)

		row := labels[k*seqLen : (k+1)*seqLen]
		tsRow := timesteps[k*seqLen : (k+1)*seqLen]

		for pos := 0; pos < start; pos++ {
			row[pos] = 0
			tsRow[pos] = 0
		}

		pos := seqLen - 1
		for cur := ref; pos >= start; pos-- {
			n := a.dereference(cur)
			row[pos] = n.token
			tsRow[pos] = n.frame
			cur = n.parent
		}
	}
}
