package controller

import "github.com/BiologIC-Colin/CameraSlider/motion"

// commandKind discriminates the kind of queue entry a command is.
type commandKind int

const (
	cmdHome commandKind = iota
	cmdJog
	cmdRunProfile
	cmdPrime
)

// command is the unexported queue entry the worker consumes in FIFO
// order. Callers never see this type directly; they go through the
// Enqueue* methods.
type command struct {
	kind     commandKind
	distance float64 // Jog
	speed    float64 // Jog
	profile  *motion.Profile
}
