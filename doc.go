// Package zctc implements a high-throughput CTC (Connectionist Temporal
// Classification) prefix-beam-search decoder.
//
// The decoder turns a batch of acoustic-model frame posteriors into the
// most likely token sequences per sample. It supports:
//
//   - per-frame top-k / cumulative-probability candidate pruning,
//   - prefix-beam search with separate ends-in-blank and
//     ends-in-non-blank path probabilities,
//   - optional external n-gram language-model rescoring,
//   - optional lexicon constraints expressed as a token-level FST,
//   - optional hot-word boosting via a small auxiliary FST,
//   - batch-level parallelism across samples via a fixed worker pool.
//
// Model inference, tensor handling at the language boundary, n-gram
// scoring internals, and FST file parsing for formats other than the
// one in internal/fst are intentionally out of scope; they are reached
// only through the narrow interfaces in config.go, lm.go and hotword.go.
package zctc
