package remote

type ApplyRequest struct {
	Effect int
	Image  []byte
}

type ApplyResponse struct {
	Image []byte
}

type EffectsResponse struct {
	Names []string
}

// Limits bounds what the Service accepts. Zero values mean the codec defaults.
type Limits struct {
	MaxPixels int
}
