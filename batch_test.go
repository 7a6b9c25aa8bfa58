package zctc

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateBatch_RejectsMismatchedLogits(t *testing.T) {
	t.Parallel()

	b := Batch{
		Logits:    make([]float32, 3), // should be B*T*V = 4
		SortedIdx: make([]int32, 4),
		SeqLens:   []int32{2},
		B:         1, T: 2, V: 2,
	}
	err := validateBatch(b)
	if err == nil || !strings.Contains(err.Error(), "shape error") {
		t.Fatalf("validateBatch err = %v, want a shape error", err)
	}
	if !errors.Is(err, ErrShape) {
		t.Errorf("validateBatch err = %v, want errors.Is(err, ErrShape)", err)
	}
}

// TestDecode_RejectsMismatchedShapes_IsErrShape pins Decode's top-level
// shape-validation error to the ErrShape sentinel, not just its message.
func TestDecode_RejectsMismatchedShapes_IsErrShape(t *testing.T) {
	t.Parallel()

	d := newTestDecoder(t, Config{
		ThreadCount: 1,
		BlankID:     0,
		CutoffTopN:  1,
		CutoffProb:  0.999,
		MinTokProb:  -100,
		BeamWidth:   1,
		Vocab:       []string{"<blank>", "a"},
	})

	batch := Batch{
		Logits:    []float32{0.1, 0.9},
		SortedIdx: []int32{1, 0},
		SeqLens:   []int32{1},
		B:         1, T: 1, V: 2,
	}
	out := Output{
		Labels:    make([]int32, 99), // deliberately wrong size
		Timesteps: make([]int32, 1),
		SeqPos:    make([]int32, 1),
	}

	err := d.Decode(batch, out, nil)
	if !errors.Is(err, ErrShape) {
		t.Fatalf("Decode err = %v, want errors.Is(err, ErrShape)", err)
	}
}

// TestDecodeAndWriteSample_RecoversPanicAsResourceError exercises the
// per-sample panic-recovery path directly: an out buffer too small for
// the configured beam width makes slicing the sample's output rows go
// out of range, and decodeAndWriteSample must recover that into a
// plain error chaining ErrResource rather than letting the worker
// goroutine crash the process. Decode itself wraps that error in a
// *DecodeError naming the failing sample (see
// TestDecodeError_ErrorAndUnwrap).
func TestDecodeAndWriteSample_RecoversPanicAsResourceError(t *testing.T) {
	t.Parallel()

	d := newTestDecoder(t, Config{
		ThreadCount:      1,
		BlankID:          0,
		CutoffTopN:       2,
		CutoffProb:       0.999,
		MinTokProb:       -100,
		BeamWidth:        2,
		MaxBeamDeviation: -1e9,
		Vocab:            []string{"<blank>", "a"},
	})

	batch := Batch{
		Logits:    []float32{0.1, 0.9},
		SortedIdx: []int32{1, 0},
		SeqLens:   []int32{1},
		B:         1, T: 1, V: 2,
	}
	out := Output{
		Labels:    make([]int32, 1), // too small for BeamWidth=2
		Timesteps: make([]int32, 1),
		SeqPos:    make([]int32, 1),
	}

	sc := d.newScorer(nil)
	err := d.decodeAndWriteSample(batch, out, sc, 0, d.cfg.BeamWidth)
	if err == nil {
		t.Fatal("expected a recovered-panic error for an undersized out buffer")
	}
	if !errors.Is(err, ErrResource) {
		t.Errorf("err = %v, want errors.Is(err, ErrResource)", err)
	}
}

// TestDecodeError_ErrorAndUnwrap checks that a DecodeError of the kind
// Decode builds from a failed sample (see the sibling test above)
// names its sample and chains to the wrapped sentinel through Unwrap.
func TestDecodeError_ErrorAndUnwrap(t *testing.T) {
	t.Parallel()

	de := &DecodeError{SampleIndex: 2, Err: ErrResource}

	if got := de.Error(); !strings.Contains(got, "sample 2") {
		t.Errorf("Error() = %q, want it to mention sample 2", got)
	}
	if !errors.Is(de, ErrResource) {
		t.Errorf("errors.Is(de, ErrResource) = false, want true")
	}
}

func TestValidateBatch_RejectsSeqLenOutOfRange(t *testing.T) {
	t.Parallel()

	b := Batch{
		Logits:    make([]float32, 4),
		SortedIdx: make([]int32, 4),
		SeqLens:   []int32{3}, // > T
		B:         1, T: 2, V: 2,
	}
	if err := validateBatch(b); err == nil {
		t.Error("expected an error when a seqLen exceeds T")
	}
}

func TestValidateOutput_RejectsMismatchedSeqPos(t *testing.T) {
	t.Parallel()

	b := Batch{B: 2, T: 3, V: 2}
	out := Output{
		Labels:    make([]int32, 2*4*3),
		Timesteps: make([]int32, 2*4*3),
		SeqPos:    make([]int32, 3), // should be B*K = 8
	}
	if err := validateOutput(b, out, 4); err == nil {
		t.Error("expected an error for a mis-sized SeqPos buffer")
	}
}

// TestDecode_BatchOfMultipleSamplesAreIndependent verifies that two
// samples with different posteriors in the same batch decode to their
// own, independent results — exercising the worker-pool dispatch path
// across more than one job.
func TestDecode_BatchOfMultipleSamplesAreIndependent(t *testing.T) {
	t.Parallel()

	d := newTestDecoder(t, Config{
		ThreadCount:      2,
		BlankID:          0,
		CutoffTopN:       2,
		CutoffProb:       0.999,
		MinTokProb:       -100,
		BeamWidth:        2,
		MaxBeamDeviation: -1e9,
		Vocab:            []string{"<blank>", "a", "b"},
	})

	const T, V, K, B = 1, 3, 2, 2
	batch := Batch{
		// sample 0 favors token 'a' (id 1); sample 1 favors token 'b' (id 2).
		Logits:    []float32{0.1, 0.8, 0.1, 0.1, 0.1, 0.8},
		SortedIdx: []int32{1, 0, 2, 2, 0, 1},
		SeqLens:   []int32{1, 1},
		B:         B, T: T, V: V,
	}
	out := Output{
		Labels:    make([]int32, B*K*T),
		Timesteps: make([]int32, B*K*T),
		SeqPos:    make([]int32, B*K),
	}

	if err := d.Decode(batch, out, nil); err != nil {
		t.Fatalf("Decode: %v", err)
	}

	sample0Top := out.Labels[0*K*T : 0*K*T+T]
	sample1Top := out.Labels[1*K*T : 1*K*T+T]

	if sample0Top[0] != 1 {
		t.Errorf("sample 0 top label = %v, want token 1 ('a')", sample0Top)
	}
	if sample1Top[0] != 2 {
		t.Errorf("sample 1 top label = %v, want token 2 ('b')", sample1Top)
	}
}

func TestDecode_RunsRepeatedlyOnTheSameDecoder(t *testing.T) {
	t.Parallel()

	d := newTestDecoder(t, Config{
		ThreadCount:      1,
		BlankID:          0,
		CutoffTopN:       2,
		CutoffProb:       0.999,
		MinTokProb:       -100,
		BeamWidth:        1,
		MaxBeamDeviation: -1e9,
		Vocab:            []string{"<blank>", "a"},
	})

	batch := Batch{
		Logits:    []float32{0.1, 0.9},
		SortedIdx: []int32{1, 0},
		SeqLens:   []int32{1},
		B:         1, T: 1, V: 2,
	}

	for i := 0; i < 3; i++ {
		out := Output{
			Labels:    make([]int32, 1),
			Timesteps: make([]int32, 1),
			SeqPos:    make([]int32, 1),
		}
		if err := d.Decode(batch, out, nil); err != nil {
			t.Fatalf("Decode call %d: %v", i, err)
		}
		if out.Labels[0] != 1 {
			t.Errorf("call %d: label = %d, want 1", i, out.Labels[0])
		}
	}
}
