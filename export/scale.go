package export

import "math"

// ScaleToFit clamps intrinsic pixel dimensions to the display bounds,
// preserving aspect ratio. The clamp is two-pass, width first and then
// height, each pass rounding independently. Collapsing the two passes into
// one scale by the most restrictive dimension rounds differently, so the
// order is part of the contract.
func ScaleToFit(width, height int) (int, int) {
	if width > MaxImageWidth {
		ratio := float64(MaxImageWidth) / float64(width)
		width = MaxImageWidth
		height = int(math.Round(float64(height) * ratio))
	}

	if height > MaxImageHeight {
		ratio := float64(MaxImageHeight) / float64(height)
		height = MaxImageHeight
		width = int(math.Round(float64(width) * ratio))
	}

	// extreme aspect ratios can round a dimension down to zero, which
	// produces degenerate extents in the document markup
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	return width, height
}
