// source.go implements a FrameSource on top of libav demuxing and decoding.

// Package libav serves video frames decoded from a file by libav (FFmpeg).
package libav

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"reflect"
	"time"

	"github.com/asticode/go-astiav"
	"github.com/asticode/go-astikit"
	"github.com/davecgh/go-spew/spew"
	"github.com/xaionaro-go/scrollrate/avconv"
	"github.com/xaionaro-go/scrollrate/framesource"
	"github.com/xaionaro-go/scrollrate/logger"
	"github.com/xaionaro-go/scrollrate/types"
	"github.com/xaionaro-go/unsafetools"
	"github.com/xaionaro-go/xsync"
)

// Source decodes frames on demand. Monotonically increasing access is
// cheap; going backwards (or far forward) costs a seek to the preceding key
// frame and decoding from there.
type Source struct {
	locker xsync.Mutex
	closer *astikit.Closer
	Path   string
	Config Config

	formatContext *astiav.FormatContext
	stream        *astiav.Stream
	codecContext  *astiav.CodecContext
	packet        *astiav.Packet
	frame         *astiav.Frame
	scaler        *softwareScaler

	metadata    types.VideoMetadata
	streamStart time.Duration

	// lastIndex is the index of the most recently decoded frame, -1 right
	// after opening or seeking.
	lastIndex   int
	draining    bool
	eof         bool
	cached      image.Image
	cachedIndex int

	counters types.SourceCounters
}

var _ framesource.FrameSource = (*Source)(nil)

func Open(
	ctx context.Context,
	path string,
	cfg Config,
) (_ret *Source, _err error) {
	ctx = logger.CtxWithField(ctx, "input", path)
	logger.Debugf(ctx, "Open(ctx, '%s', %#+v)", path, cfg)
	defer func() { logger.Debugf(ctx, "/Open(ctx, '%s', %#+v): %v", path, cfg, _err) }()

	s := &Source{
		closer:      astikit.NewCloser(),
		Path:        path,
		Config:      cfg,
		lastIndex:   -1,
		cachedIndex: -1,
	}
	defer func() {
		if _err != nil {
			if err := s.closer.Close(); err != nil {
				logger.Errorf(ctx, "unable to release resources: %v", err)
			}
		}
	}()

	s.formatContext = astiav.AllocFormatContext()
	if s.formatContext == nil {
		return nil, fmt.Errorf("unable to allocate a format context")
	}
	s.closer.Add(s.formatContext.Free)

	if err := s.formatContext.OpenInput(path, nil, nil); err != nil {
		return nil, fmt.Errorf("unable to open input '%s': %w", path, err)
	}
	s.closer.Add(s.formatContext.CloseInput)

	if err := s.formatContext.FindStreamInfo(nil); err != nil {
		return nil, fmt.Errorf("unable to get stream info: %w", err)
	}

	for _, stream := range s.formatContext.Streams() {
		logger.Debugf(ctx, "input stream #%d: %#+v", stream.Index(), spew.Sdump(unsafetools.FieldByNameInValue(reflect.ValueOf(stream.CodecParameters()), "c").Elem().Elem().Interface()))
	}

	if cfg.StreamIndex.IsSet() {
		s.stream = avconv.FindStreamByIndex(ctx, s.formatContext, cfg.StreamIndex.Get())
		if s.stream == nil {
			return nil, fmt.Errorf("there is no stream #%d in '%s'", cfg.StreamIndex.Get(), path)
		}
		if mediaType := s.stream.CodecParameters().MediaType(); mediaType != astiav.MediaTypeVideo {
			return nil, fmt.Errorf("stream #%d is not a video stream: %v", cfg.StreamIndex.Get(), mediaType)
		}
	} else {
		s.stream = avconv.FindFirstStream(ctx, s.formatContext, astiav.MediaTypeVideo)
		if s.stream == nil {
			return nil, fmt.Errorf("there are no video streams in '%s'", path)
		}
	}

	if err := s.initDecoder(ctx); err != nil {
		return nil, err
	}

	s.packet = astiav.AllocPacket()
	s.closer.Add(s.packet.Free)
	s.frame = astiav.AllocFrame()
	s.closer.Add(s.frame.Free)

	if err := s.initMetadata(ctx); err != nil {
		return nil, err
	}
	logger.Debugf(ctx, "opened '%s': %s", path, s.metadata)
	return s, nil
}

func (s *Source) initDecoder(ctx context.Context) error {
	codecParams := s.stream.CodecParameters()
	codec := astiav.FindDecoder(codecParams.CodecID())
	if codec == nil {
		return fmt.Errorf("unable to find a decoder for codec %v", codecParams.CodecID())
	}

	s.codecContext = astiav.AllocCodecContext(codec)
	if s.codecContext == nil {
		return fmt.Errorf("unable to allocate a codec context for %v", codecParams.CodecID())
	}
	s.closer.Add(s.codecContext.Free)

	if err := codecParams.ToCodecContext(s.codecContext); err != nil {
		return fmt.Errorf("unable to copy the codec parameters: %w", err)
	}
	s.codecContext.SetFramerate(s.formatContext.GuessFrameRate(s.stream, nil))

	if err := s.codecContext.Open(codec, nil); err != nil {
		return fmt.Errorf("unable to open the decoder: %w", err)
	}
	logger.Debugf(ctx, "decoder: %s", codec.Name())
	return nil
}

func (s *Source) initMetadata(ctx context.Context) error {
	codecParams := s.stream.CodecParameters()
	md := types.VideoMetadata{
		Width:  codecParams.Width(),
		Height: codecParams.Height(),
	}

	fpsOverridden := s.Config.FPSOverride != nil && !s.Config.FPSOverride.IsZero()
	switch {
	case fpsOverridden:
		md.FPS = s.Config.FPSOverride.Float64()
	default:
		md.FPS = avconv.FrameRate(s.formatContext.GuessFrameRate(s.stream, nil))
		if md.FPS <= 0 {
			md.FPS = avconv.FrameRate(s.stream.AvgFrameRate())
		}
		if md.FPS <= 0 {
			md.FPS = avconv.FrameRate(s.stream.RFrameRate())
		}
	}
	if md.FPS <= 0 || math.IsInf(md.FPS, 0) || math.IsNaN(md.FPS) {
		return fmt.Errorf("unable to detect the frame rate of stream #%d, please provide it explicitly", s.stream.Index())
	}

	s.streamStart = avconv.Duration(s.stream.StartTime(), s.stream.TimeBase())
	if s.streamStart == avconv.NoDuration {
		s.streamStart = 0
	}

	md.Duration = avconv.Duration(s.stream.Duration(), s.stream.TimeBase())
	if md.Duration == avconv.NoDuration || md.Duration <= 0 {
		md.Duration = avconv.ContainerDuration(s.formatContext.Duration())
	}
	hasDuration := md.Duration != avconv.NoDuration && md.Duration > 0

	if fpsOverridden && hasDuration {
		// frame indexes are derived from pts at the overridden rate, so the
		// container's frame count would not describe them
		md.FrameCount = framesInDuration(md.Duration, md.FPS)
		logger.Debugf(ctx, "frame rate overridden to %v: %d frames over %v", md.FPS, md.FrameCount, md.Duration)
	} else {
		md.FrameCount = int(s.stream.NbFrames())
		if md.FrameCount <= 0 {
			count, err := s.countPackets(ctx)
			if err != nil {
				return fmt.Errorf("unable to count the frames: %w", err)
			}
			md.FrameCount = count
		}
		if md.FrameCount <= 0 && hasDuration {
			md.FrameCount = framesInDuration(md.Duration, md.FPS)
		}
	}
	if md.FrameCount <= 0 {
		return fmt.Errorf("unable to detect the amount of frames in stream #%d", s.stream.Index())
	}

	if md.Duration == avconv.NoDuration || md.Duration <= 0 {
		md.Duration = time.Duration(float64(md.FrameCount) / md.FPS * float64(time.Second))
	}

	s.metadata = md
	return nil
}

func framesInDuration(d time.Duration, fps float64) int {
	return int(math.Floor(d.Seconds() * fps))
}

// countPackets reads the whole stream once and rewinds it. For video
// streams every packet carries exactly one frame.
func (s *Source) countPackets(ctx context.Context) (int, error) {
	logger.Debugf(ctx, "the container does not report the amount of frames, counting packets")
	var count int
	for {
		err := s.formatContext.ReadFrame(s.packet)
		if errors.Is(err, astiav.ErrEof) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("unable to read a packet: %w", err)
		}
		s.counters.PacketsRead.Inc()
		if s.packet.StreamIndex() == s.stream.Index() {
			count++
		}
		s.packet.Unref()
	}
	logger.Debugf(ctx, "counted %d packets", count)
	if err := s.seekLocked(ctx, 0, 0); err != nil {
		return 0, fmt.Errorf("unable to rewind: %w", err)
	}
	return count, nil
}

func (s *Source) String() string {
	return fmt.Sprintf("libav(%s)", s.Path)
}

func (s *Source) Metadata() types.VideoMetadata {
	return s.metadata
}

func (s *Source) FrameAt(
	ctx context.Context,
	index int,
) (types.FrameResult, error) {
	return xsync.DoA2R2(xsync.WithNoLogging(ctx, true), &s.locker, s.frameAtLocked, ctx, index)
}

func (s *Source) frameAtLocked(
	ctx context.Context,
	index int,
) (_ret types.FrameResult, _err error) {
	logger.Tracef(ctx, "frameAtLocked(ctx, %d)", index)
	defer func() { logger.Tracef(ctx, "/frameAtLocked(ctx, %d): %v %v", index, _ret.Found, _err) }()

	if s.formatContext == nil {
		return types.FrameResult{FrameIndex: -1}, fmt.Errorf("the source is closed")
	}
	if result, ok := framesource.CheckIndex(s.metadata, index); !ok {
		s.counters.CountResult(result)
		return result, nil
	}
	if s.cached != nil && s.cachedIndex == index {
		result := types.FrameFound(index, s.cached)
		s.counters.CountResult(result)
		return result, nil
	}

	if index <= s.lastIndex || index-s.lastIndex > s.Config.maxForwardDecode() {
		if err := s.seekLocked(ctx, index, s.metadata.FrameTime(index)); err != nil {
			return types.FrameResult{FrameIndex: -1}, err
		}
	}

	for !s.eof {
		select {
		case <-ctx.Done():
			return types.FrameResult{FrameIndex: -1}, ctx.Err()
		default:
		}

		decodedIndex, err := s.decodeNextLocked(ctx)
		if errors.Is(err, io.EOF) {
			s.eof = true
			break
		}
		if err != nil {
			return types.FrameResult{FrameIndex: -1}, err
		}
		s.lastIndex = decodedIndex
		if decodedIndex < index {
			s.frame.Unref()
			continue
		}

		img, err := s.toImageLocked(ctx)
		s.frame.Unref()
		if err != nil {
			return types.FrameResult{FrameIndex: -1}, fmt.Errorf("unable to convert frame %d into Go's format: %w", decodedIndex, err)
		}
		if decodedIndex != index {
			logger.Debugf(ctx, "frame %d is missing in the stream, serving frame %d instead", index, decodedIndex)
		}

		s.cached, s.cachedIndex = img, index
		result := types.FrameFound(index, img)
		s.counters.CountResult(result)
		return result, nil
	}

	result := types.FrameNotFound(types.AccessKindEndOfStream, float64(index), float64(s.metadata.FrameCount))
	logger.Debugf(ctx, "%s", result.Notice)
	s.counters.CountResult(result)
	return result, nil
}

// toImageLocked converts s.frame into a Go image, going through RGBA if
// the pixel format has no Go counterpart.
func (s *Source) toImageLocked(ctx context.Context) (image.Image, error) {
	f := s.frame
	img, err := f.Data().GuessImageFormat()
	if err != nil {
		logger.Tracef(ctx, "no Go image for pixel format %s: %v", f.PixelFormat(), err)
		if s.scaler != nil && !s.scaler.fits(f) {
			s.scaler.Free()
			s.scaler = nil
		}
		if s.scaler == nil {
			s.scaler, err = newSoftwareScaler(ctx, f, astiav.PixelFormatRgba)
			if err != nil {
				return nil, err
			}
		}
		f, err = s.scaler.scaleFrame(ctx, f)
		if err != nil {
			return nil, err
		}
		img, err = f.Data().GuessImageFormat()
		if err != nil {
			return nil, fmt.Errorf("unable to guess the image format: %w", err)
		}
	}
	if err := f.Data().ToImage(img); err != nil {
		return nil, err
	}
	return img, nil
}

// seekLocked moves the demuxer to the key frame preceding the given frame
// (presented at t) and resets the decoder.
func (s *Source) seekLocked(ctx context.Context, index int, t time.Duration) error {
	ts := avconv.FromDuration(s.streamStart+t, s.stream.TimeBase())
	logger.Debugf(ctx, "seeking to frame %d (ts: %d)", index, ts)
	if err := s.formatContext.SeekFrame(s.stream.Index(), ts, astiav.NewSeekFlags(astiav.SeekFlagBackward)); err != nil {
		return fmt.Errorf("unable to seek to frame %d: %w", index, err)
	}
	s.codecContext.FlushBuffers()
	s.counters.Seeks.Inc()
	s.lastIndex = -1
	s.draining = false
	s.eof = false
	return nil
}

// decodeNextLocked leaves the next decoded frame in s.frame and returns its
// index; io.EOF means the stream is fully drained.
func (s *Source) decodeNextLocked(ctx context.Context) (int, error) {
	for {
		err := s.codecContext.ReceiveFrame(s.frame)
		switch {
		case err == nil:
			s.counters.FramesDecoded.Inc()
			return s.frameIndexOf(s.frame), nil
		case errors.Is(err, astiav.ErrEof):
			return 0, io.EOF
		case errors.Is(err, astiav.ErrEagain):
			if s.draining {
				return 0, io.EOF
			}
		default:
			return 0, fmt.Errorf("unable to receive a frame: %w", err)
		}

		err = s.formatContext.ReadFrame(s.packet)
		switch {
		case err == nil:
		case errors.Is(err, astiav.ErrEof):
			logger.Tracef(ctx, "reached the end of the input, draining the decoder")
			s.draining = true
			if err := s.codecContext.SendPacket(nil); err != nil && !errors.Is(err, astiav.ErrEof) {
				return 0, fmt.Errorf("unable to drain the decoder: %w", err)
			}
			continue
		default:
			return 0, fmt.Errorf("unable to read a packet: %w", err)
		}
		s.counters.PacketsRead.Inc()

		if s.packet.StreamIndex() != s.stream.Index() {
			s.packet.Unref()
			continue
		}
		logger.Tracef(ctx, "received a packet (pts:%d, dts:%d, size:%d)", s.packet.Pts(), s.packet.Dts(), len(s.packet.Data()))
		err = s.codecContext.SendPacket(s.packet)
		s.packet.Unref()
		if err != nil {
			return 0, fmt.Errorf("unable to send a packet to the decoder: %w", err)
		}
	}
}

func (s *Source) frameIndexOf(f *astiav.Frame) int {
	ts := avconv.Duration(f.Pts(), s.stream.TimeBase())
	if ts == avconv.NoDuration {
		return s.lastIndex + 1
	}
	return int(math.Round((ts - s.streamStart).Seconds() * s.metadata.FPS))
}

func (s *Source) GetStats() types.SourceStatistics {
	return s.counters.ToStats()
}

func (s *Source) Close(ctx context.Context) error {
	return xsync.DoA1R1(ctx, &s.locker, s.closeLocked, ctx)
}

func (s *Source) closeLocked(ctx context.Context) error {
	if s.formatContext == nil {
		return nil
	}
	logger.Debugf(ctx, "closing %s: %#+v", s, s.counters.ToStats())
	s.formatContext = nil
	s.cached = nil
	if s.scaler != nil {
		s.scaler.Free()
		s.scaler = nil
	}
	if err := s.closer.Close(); err != nil {
		return fmt.Errorf("unable to release the resources: %w", err)
	}
	return nil
}
