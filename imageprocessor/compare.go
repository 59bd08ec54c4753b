package imageprocessor

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// RGB holds a mean color, one value per channel in RGB order.
type RGB struct {
	R float64
	G float64
	B float64
}

// AverageColor decodes an image and returns the mean value of each color
// channel over all pixels.
func AverageColor(path string) (RGB, error) {
	img := gocv.IMRead(path, gocv.IMReadColor)
	if img.Empty() {
		return RGB{}, newImageLoadError("failed to load image", path)
	}
	defer img.Close()

	// Mean() reports channels in OpenCV's BGR order
	mean := img.Mean()
	return RGB{R: mean.Val3, G: mean.Val2, B: mean.Val1}, nil
}

// MeanAbsDiff fully compares two images: the smaller one is resized up to the
// larger one's dimensions (a pure resolution difference must not block a
// match), both are converted to a common color model (BGRA if either carries
// an alpha channel, BGR otherwise) and the mean absolute per-channel pixel
// difference is returned.
func MeanAbsDiff(pathA, pathB string) (float64, error) {
	a := gocv.IMRead(pathA, gocv.IMReadUnchanged)
	if a.Empty() {
		return 0, newImageLoadError("failed to load image", pathA)
	}
	defer a.Close()

	b := gocv.IMRead(pathB, gocv.IMReadUnchanged)
	if b.Empty() {
		return 0, newImageLoadError("failed to load image", pathB)
	}
	defer b.Close()

	// Unify color model before any pixel math
	wantAlpha := a.Channels() == 4 || b.Channels() == 4

	ua, err := toCommonModel(a, wantAlpha)
	if err != nil {
		return 0, fmt.Errorf("cannot convert %s: %v", pathA, err)
	}
	defer ua.Close()

	ub, err := toCommonModel(b, wantAlpha)
	if err != nil {
		return 0, fmt.Errorf("cannot convert %s: %v", pathB, err)
	}
	defer ub.Close()

	// Resize the smaller image (by pixel count) to the larger's dimensions
	big, small := ua, ub
	if pixelCount(ub) > pixelCount(ua) {
		big, small = ub, ua
	}

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(small, &resized, image.Point{X: big.Cols(), Y: big.Rows()}, 0, 0, gocv.InterpolationLinear)

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(big, resized, &diff)

	// Average the per-channel means into one scalar difference
	mean := diff.Mean()
	channels := float64(diff.Channels())
	if channels == 0 {
		return 0, fmt.Errorf("comparison produced an empty result")
	}
	total := mean.Val1
	if diff.Channels() > 1 {
		total += mean.Val2 + mean.Val3
	}
	if diff.Channels() > 3 {
		total += mean.Val4
	}

	return total / channels, nil
}

// toCommonModel returns a copy of img in BGR, or BGRA when wantAlpha is set
func toCommonModel(img gocv.Mat, wantAlpha bool) (gocv.Mat, error) {
	out := gocv.NewMat()

	switch img.Channels() {
	case 1:
		if wantAlpha {
			gocv.CvtColor(img, &out, gocv.ColorGrayToBGRA)
		} else {
			gocv.CvtColor(img, &out, gocv.ColorGrayToBGR)
		}
	case 3:
		if wantAlpha {
			gocv.CvtColor(img, &out, gocv.ColorBGRToBGRA)
		} else {
			img.CopyTo(&out)
		}
	case 4:
		if wantAlpha {
			img.CopyTo(&out)
		} else {
			gocv.CvtColor(img, &out, gocv.ColorBGRAToBGR)
		}
	default:
		out.Close()
		return gocv.NewMat(), fmt.Errorf("unsupported channel count %d", img.Channels())
	}

	return out, nil
}

func pixelCount(img gocv.Mat) int {
	return img.Cols() * img.Rows()
}

// Helper function to create standardized image load errors
func newImageLoadError(message, path string) error {
	return fmt.Errorf("%s: %s", message, path)
}
