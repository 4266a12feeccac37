// Package blobs animates translucent pills rising diagonally across the
// screen. Blob state lives in an ark ECS world owned by SceneState.
package blobs

// Position is the blob center in world units.
type Position struct {
	X, Y float32
}

// Blob holds per-blob motion parameters.
type Blob struct {
	Length float32 // base length scaled by 2^[-1, 1); sets the spawn depth and cull line
	Speed  float32 // world units per second
}
