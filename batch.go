package zctc

import (
	"fmt"
	"sync"
)

// Batch is one call's input: a [B,T,V] posterior tensor in
// probability space (post-softmax, §6.2), its companion per-frame
// descending-probability index, and each sample's valid frame count.
type Batch struct {
	Logits    []float32 // row-major [B,T,V]
	SortedIdx []int32   // row-major [B,T,V]
	SeqLens   []int32   // [B]
	B, T, V   int
}

// Output is the caller-owned set of buffers Decode populates (§3
// Output buffers). Labels and Timesteps are right-aligned per beam;
// SeqPos[b,k] records where beam k's content starts within sample b's
// row.
type Output struct {
	Labels    []int32 // row-major [B,K,T]
	Timesteps []int32 // row-major [B,K,T]
	SeqPos    []int32 // row-major [B,K]
}

// workerPool is a fixed-size pool of goroutines, long-lived across
// Decode calls (§4.7, §5): Decode submits one job per sample and
// blocks until all of this call's jobs have run, but the goroutines
// themselves keep running, parked on jobs, ready for the next call.
type workerPool struct {
	jobs chan func()
}

func newWorkerPool(n int) *workerPool {
	wp := &workerPool{jobs: make(chan func())}
	for i := 0; i < n; i++ {
		go wp.loop()
	}
	return wp
}

func (wp *workerPool) loop() {
	for fn := range wp.jobs {
		fn()
	}
}

// run hands fn to the pool, blocking until a worker takes it, and
// returns without waiting for fn to complete; the caller is
// responsible for knowing when fn has completed (Decode uses a
// sync.WaitGroup for that, per job).
func (wp *workerPool) run(fn func()) {
	wp.jobs <- fn
}

// close stops every worker goroutine. A Decoder whose pool has been
// closed must not be used for further Decode calls.
func (wp *workerPool) close() {
	close(wp.jobs)
}

// Close releases the Decoder's worker goroutines. It is optional: a
// Decoder that is simply garbage collected leaks its (idle) goroutines
// until process exit, which is harmless for typical long-lived use,
// but long-running services that create and discard many Decoders
// should call Close.
func (d *Decoder) Close() {
	d.workers.close()
}

// Decode partitions batch.B samples across the worker pool (§4.7),
// runs the single-sample decoder (§4.4) for each, and writes the
// top-K beams of every sample into out (§4.6, §6.2). hotwords is
// shared read-only across all workers for this call; it may be nil or
// empty to disable hot-word boosting entirely.
//
// Decode returns a Shape error (§7) without doing any work if the
// batch and output buffers are not sized consistently with batch.B,
// batch.T, batch.V and the decoder's configured BeamWidth. If an
// individual sample's decode fails, Decode returns a *DecodeError
// naming that sample; every other sample's worker still runs to
// completion and its results are written to out, since samples decode
// independently (§4.7).
func (d *Decoder) Decode(batch Batch, out Output, hotwords []HotwordSpec) error {
	if err := validateBatch(batch); err != nil {
		return err
	}

	beamWidth := d.cfg.BeamWidth
	if err := validateOutput(batch, out, beamWidth); err != nil {
		return err
	}

	sc := d.newScorer(hotwords)

	var wg sync.WaitGroup
	wg.Add(batch.B)

	errs := make([]error, batch.B)
	for b := 0; b < batch.B; b++ {
		b := b
		d.workers.run(func() {
			defer wg.Done()
			errs[b] = d.decodeAndWriteSample(batch, out, sc, b, beamWidth)
		})
	}

	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return &DecodeError{SampleIndex: i, Err: err}
		}
	}
	return nil
}

// decodeAndWriteSample runs one sample end to end: build its posterior
// view, decode it, backtrace the surviving beams into out's slice for
// sample b, and release the sample's arena. A panic recovered from
// this sample's worker (e.g. an arena/beam invariant violation) is
// reported as a Resource error rather than crashing the whole batch's
// worker pool.
func (d *Decoder) decodeAndWriteSample(batch Batch, out Output, sc *scorer, b, beamWidth int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: recovered panic decoding sample %d: %v", ErrResource, b, r)
		}
	}()

	frameStride := batch.T * batch.V
	probs := batch.Logits[b*frameStride : (b+1)*frameStride]
	sortedIdx := batch.SortedIdx[b*frameStride : (b+1)*frameStride]
	frames := int(batch.SeqLens[b])

	pv := newPosteriorView(probs, sortedIdx, batch.V, frames)

	ws := newSampleWorkspace(d.pool, batch.V)
	a, entries := d.decodeSample(ws, sc, pv)
	defer a.release()

	rowStride := beamWidth * batch.T
	labels := out.Labels[b*rowStride : (b+1)*rowStride]
	timesteps := out.Timesteps[b*rowStride : (b+1)*rowStride]
	seqPos := out.SeqPos[b*beamWidth : (b+1)*beamWidth]

	writeSample(a, entries, beamWidth, batch.T, labels, timesteps, seqPos)
	return nil
}

// validateBatch checks the §7 Shape-error conditions on batch itself.
func validateBatch(b Batch) error {
	if b.B <= 0 || b.T <= 0 || b.V <= 0 {
		return errShape("batch dimensions must be positive, got B=%d T=%d V=%d", b.B, b.T, b.V)
	}
	want := b.B * b.T * b.V
	if len(b.Logits) != want {
		return errShape("logits has %d elements, want %d (B*T*V)", len(b.Logits), want)
	}
	if len(b.SortedIdx) != want {
		return errShape("sortedIdx has %d elements, want %d (B*T*V)", len(b.SortedIdx), want)
	}
	if len(b.SeqLens) != b.B {
		return errShape("seqLens has %d elements, want %d (B)", len(b.SeqLens), b.B)
	}
	for i, n := range b.SeqLens {
		if n < 0 || int(n) > b.T {
			return errShape("seqLens[%d]=%d out of range [0,%d]", i, n, b.T)
		}
	}
	return nil
}

// validateOutput checks the §7 Shape-error conditions on out given
// batch's dimensions and the decoder's configured beam width.
func validateOutput(b Batch, out Output, beamWidth int) error {
	want := b.B * beamWidth * b.T
	if len(out.Labels) != want {
		return errShape("labels has %d elements, want %d (B*K*T)", len(out.Labels), want)
	}
	if len(out.Timesteps) != want {
		return errShape("timesteps has %d elements, want %d (B*K*T)", len(out.Timesteps), want)
	}
	if len(out.SeqPos) != b.B*beamWidth {
		return errShape("seqPos has %d elements, want %d (B*K)", len(out.SeqPos), b.B*beamWidth)
	}
	return nil
}
