// Package render turns a parsed reference page into output for people: an
// HTML fragment for embedding, or a colored terminal view.
package render
