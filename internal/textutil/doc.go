// Package textutil provides the text helpers shared by the curator
// pipeline: normalized title comparison, display casing, keyword matching,
// and sentence clipping for model-supplied notes.
package textutil
