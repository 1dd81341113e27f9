// Package markdown loads markdown files from a directory tree into records
// ready for the embeddings store.
//
// The pipeline is three straight-line stages: a directory scanner that
// enumerates .md/.markdown files, a frontmatter extractor that splits an
// optional leading "---" metadata block from the body, and a segmenter that
// slices the body at heading or paragraph boundaries subject to a minimum
// length. Per-file read failures are recorded and skipped; they never abort
// a batch.
package markdown
