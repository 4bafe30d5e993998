// Package rate provides the fixed-window Redis counter that throttles
// refresh rotations per identity.
package rate
