// Package signs reads the static ISL image dataset: one folder per letter or
// digit holding sample photos of the hand sign.
package signs
