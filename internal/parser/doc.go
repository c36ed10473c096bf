// Package parser turns generator-produced API reference markdown into a
// DocPage model. The structurer is a pure function: it never fails and never
// touches the file system, so it is safe to call from any goroutine.
package parser
