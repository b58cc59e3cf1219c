package tensor

import "fmt"

// GatherPoints extracts, for each sample and each labeled point, the feature
// vector at that point's (row, column) across all channels.
//
// feature has shape (B, C, H, W); ys and xs are Int64 tensors of shape
// (B, P) holding row and column coordinates on the downsampled grid. The
// result has shape (B, P, C). This is a pure gather: points are assumed
// aligned to the feature grid, no interpolation.
func GatherPoints(feature, ys, xs *Tensor) *Tensor {
	if len(feature.Shape()) != 4 {
		panic(fmt.Sprintf("GatherPoints: want 4-dimensional (B, C, H, W) feature, got shape %v", feature.Shape()))
	}
	if ys.DType() != Int64 || xs.DType() != Int64 {
		panic(fmt.Sprintf("GatherPoints: point coordinates must be int64, got %s and %s", ys.DType(), xs.DType()))
	}
	if len(ys.Shape()) != 2 || !ys.Shape().Equal(xs.Shape()) {
		panic(fmt.Sprintf("GatherPoints: point shapes must match as (B, P), got %v and %v", ys.Shape(), xs.Shape()))
	}

	batch, channels, height, width := feature.Shape()[0], feature.Shape()[1], feature.Shape()[2], feature.Shape()[3]
	if ys.Shape()[0] != batch {
		panic(fmt.Sprintf("GatherPoints: batch mismatch, feature %d vs points %d", batch, ys.Shape()[0]))
	}
	points := ys.Shape()[1]

	out := MustNew(Shape{batch, points, channels}, Float32)
	src, dst := feature.AsFloat32(), out.AsFloat32()
	ysData, xsData := ys.AsInt64(), xs.AsInt64()

	for b := 0; b < batch; b++ {
		for p := 0; p < points; p++ {
			y := int(ysData[b*points+p])
			x := int(xsData[b*points+p])
			if y < 0 || y >= height || x < 0 || x >= width {
				panic(fmt.Sprintf("GatherPoints: point (%d, %d) outside feature extent %dx%d", y, x, height, width))
			}
			for c := 0; c < channels; c++ {
				dst[(b*points+p)*channels+c] = src[((b*channels+c)*height+y)*width+x]
			}
		}
	}
	return out
}
