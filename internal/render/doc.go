// Package render draws fingerspelling GIFs from the ISL image dataset.
//
// Every frame is a white canvas with one sign sample, the current letter in
// large blue type above it, and the word being spelled plus progress below.
// After each word the last frame is held for a few extra frames. Letter and
// token GIFs are cached in the GIF directory; combined GIFs are built on
// demand.
package render
