package libav

import (
	"context"
	"fmt"

	"github.com/asticode/go-astiav"
	"github.com/xaionaro-go/scrollrate/logger"
)

// softwareScaler converts decoded frames into a pixel format that can be
// represented as a Go image.
type softwareScaler struct {
	*astiav.SoftwareScaleContext
	dst *astiav.Frame
}

func newSoftwareScaler(
	ctx context.Context,
	src *astiav.Frame,
	dstPixFmt astiav.PixelFormat,
) (*softwareScaler, error) {
	swsCtx, err := astiav.CreateSoftwareScaleContext(
		src.Width(),
		src.Height(),
		src.PixelFormat(),
		src.Width(),
		src.Height(),
		dstPixFmt,
		astiav.NewSoftwareScaleContextFlags(astiav.SoftwareScaleContextFlagBilinear),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to create a software scale context: %w", err)
	}
	s := &softwareScaler{
		SoftwareScaleContext: swsCtx,
		dst:                  astiav.AllocFrame(),
	}
	logger.Debugf(ctx, "new %s", s)
	return s, nil
}

func (s *softwareScaler) String() string {
	return fmt.Sprintf(
		"SoftwareScaler(%dx%d:%s -> %dx%d:%s)",
		s.SoftwareScaleContext.SourceWidth(),
		s.SoftwareScaleContext.SourceHeight(),
		s.SoftwareScaleContext.SourcePixelFormat(),
		s.SoftwareScaleContext.DestinationWidth(),
		s.SoftwareScaleContext.DestinationHeight(),
		s.SoftwareScaleContext.DestinationPixelFormat(),
	)
}

// fits reports whether the scaler was configured for frames like f.
func (s *softwareScaler) fits(f *astiav.Frame) bool {
	return s.SoftwareScaleContext.SourceWidth() == f.Width() &&
		s.SoftwareScaleContext.SourceHeight() == f.Height() &&
		s.SoftwareScaleContext.SourcePixelFormat() == f.PixelFormat()
}

// scaleFrame returns the converted frame; it stays valid until the next call.
func (s *softwareScaler) scaleFrame(
	ctx context.Context,
	src *astiav.Frame,
) (_ret *astiav.Frame, _err error) {
	logger.Tracef(ctx, "scaleFrame")
	defer func() { logger.Tracef(ctx, "/scaleFrame: %v", _err) }()
	s.dst.Unref()
	s.dst.SetWidth(s.SoftwareScaleContext.DestinationWidth())
	s.dst.SetHeight(s.SoftwareScaleContext.DestinationHeight())
	s.dst.SetPixelFormat(s.SoftwareScaleContext.DestinationPixelFormat())
	if err := s.dst.AllocBuffer(1); err != nil {
		return nil, fmt.Errorf("unable to allocate a buffer for the converted frame: %w", err)
	}
	if err := s.SoftwareScaleContext.ScaleFrame(src, s.dst); err != nil {
		return nil, fmt.Errorf("unable to scale a frame: %w", err)
	}
	return s.dst, nil
}

func (s *softwareScaler) Free() {
	s.dst.Free()
	s.SoftwareScaleContext.Free()
}
