// Package textutil holds small string helpers shared by the renderer and
// the CLI: filesystem-safe token names for cached GIFs and display
// truncation for table output.
package textutil
