package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/observability"
	"github.com/xaionaro-go/scrollrate/config"
	"github.com/xaionaro-go/scrollrate/framesource"
	"github.com/xaionaro-go/scrollrate/framesource/libav"
	"github.com/xaionaro-go/scrollrate/sampler"
	"github.com/xaionaro-go/scrollrate/shift"
	"github.com/xaionaro-go/scrollrate/types"
	"github.com/xaionaro-go/typing"
)

const (
	exitCodeNotConverged = 3
)

type statsGetter interface {
	GetStats() types.SourceStatistics
}

func main() {

	// parse the input

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "syntax: %s [flags] <video-file>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "        %s [flags] --images '<glob>' --fps <rate>\n", os.Args[0])
		pflag.PrintDefaults()
	}

	flags := pflag.CommandLine
	loggerLevel := logger.LevelWarning
	flags.Var(&loggerLevel, "log-level", "Log level")
	netPprofAddr := flags.String("net-pprof-listen-addr", "", "an address to listen for incoming net/pprof connections")
	configPath := flags.String("config", "", "path to a YAML config file; flags override its values")
	imagesGlob := flags.String("images", "", "read the frames from the image files matching the glob (sorted by name) instead of a video")
	fps := flags.String("fps", "", "override the frame rate, e.g. '30', '30000/1001' or '~29.97'")
	streamIndex := flags.Int("stream-index", 0, "the video stream to read (default: the first one)")
	startFrame := flags.Int("start-frame", 0, "the first frame to sample")
	endFrame := flags.Int("end-frame", 0, "the last frame to sample (default: the last frame of the video)")
	startTime := flags.Duration("start-time", 0, "the instant to start sampling from (instead of --start-frame)")
	endTime := flags.Duration("end-time", 0, "the instant to stop sampling at (instead of --end-frame)")
	samplesPerSecond := flags.Float64("samples-per-second", 1, "how many frames to sample per second of video")
	cropTop := flags.Int("crop-top", 0, "the first row of the region to analyze")
	cropBottom := flags.Int("crop-bottom", 0, "the row after the last row of the region to analyze")
	cropLeft := flags.Int("crop-left", 0, "the first column of the region to analyze")
	cropRight := flags.Int("crop-right", 0, "the column after the last column of the region to analyze")
	binarizeThreshold := flags.Uint8("binarize-threshold", shift.DefaultBinarizeThreshold, "pixels brighter than this are foreground")
	voteThreshold := flags.Int("vote-threshold", shift.DefaultVoteThreshold, "stop as soon as a shift was measured this many times")
	preprocessorName := flags.String("preprocessor", config.PreprocessorBild, "image processing backend: bild or cv")
	strict := flags.Bool("strict", false, fmt.Sprintf("exit with code %d if the shift rate could not be determined definitely", exitCodeNotConverged))
	pflag.Parse()

	var inputPath string
	switch {
	case *imagesGlob != "" && len(pflag.Args()) == 0:
	case *imagesGlob == "" && len(pflag.Args()) == 1:
		inputPath = pflag.Arg(0)
	default:
		pflag.Usage()
		os.Exit(1)
	}

	// init the context

	ctx := withLogger(context.Background(), loggerLevel)
	ctx, cancelFn := context.WithCancel(ctx)
	defer cancelFn()
	defer belt.Flush(ctx)

	if *netPprofAddr != "" {
		observability.Go(ctx, func(ctx context.Context) {
			logger.Error(ctx, http.ListenAndServe(*netPprofAddr, nil))
		})
	}

	// build the configuration

	cfg, err := config.Load(*configPath)
	assertNoError(ctx, err)

	setIfChanged(flags, "fps", &cfg.Input.FPS, *fps)
	setPtrIfChanged(flags, "stream-index", &cfg.Input.StreamIndex, *streamIndex)
	setPtrIfChanged(flags, "start-frame", &cfg.Sampling.StartFrame, *startFrame)
	setPtrIfChanged(flags, "end-frame", &cfg.Sampling.EndFrame, *endFrame)
	setPtrIfChanged(flags, "start-time", &cfg.Sampling.StartTime, *startTime)
	setPtrIfChanged(flags, "end-time", &cfg.Sampling.EndTime, *endTime)
	setIfChanged(flags, "samples-per-second", &cfg.Sampling.SamplesPerSecond, *samplesPerSecond)
	setPtrIfChanged(flags, "crop-top", &cfg.Crop.Top, *cropTop)
	setPtrIfChanged(flags, "crop-bottom", &cfg.Crop.Bottom, *cropBottom)
	setPtrIfChanged(flags, "crop-left", &cfg.Crop.Left, *cropLeft)
	setPtrIfChanged(flags, "crop-right", &cfg.Crop.Right, *cropRight)
	setIfChanged(flags, "binarize-threshold", &cfg.Rate.BinarizeThreshold, *binarizeThreshold)
	setIfChanged(flags, "vote-threshold", &cfg.Rate.VoteThreshold, *voteThreshold)
	setIfChanged(flags, "preprocessor", &cfg.Preprocessor, *preprocessorName)
	assertNoError(ctx, cfg.Validate())
	logger.Debugf(ctx, "config: %#+v", cfg)

	prep, err := newPreprocessor(cfg.Preprocessor)
	assertNoError(ctx, err)

	// open the input

	frameRate, err := cfg.Input.FrameRate()
	assertNoError(ctx, err)

	var src framesource.FrameSource
	if *imagesGlob != "" {
		if frameRate == nil {
			logger.Fatalf(ctx, "--fps is required when reading image files")
		}
		logger.Debugf(ctx, "reading images '%s'...", *imagesGlob)
		src, err = framesource.NewImageSequenceFromGlob(ctx, *imagesGlob, frameRate.Float64())
	} else {
		logger.Debugf(ctx, "opening '%s'...", inputPath)
		libavCfg := libav.Config{
			FPSOverride:      frameRate,
			MaxForwardDecode: cfg.Input.MaxForwardDecode,
		}
		if cfg.Input.StreamIndex != nil {
			libavCfg.StreamIndex = typing.Opt(*cfg.Input.StreamIndex)
		}
		src, err = libav.Open(ctx, inputPath, libavCfg)
	}
	assertNoError(ctx, err)

	s, err := sampler.New(ctx, src)
	assertNoError(ctx, err)
	defer func() {
		if err := s.Close(ctx); err != nil {
			logger.Errorf(ctx, "unable to close the input: %v", err)
		}
	}()
	logger.Infof(ctx, "input: %s", s.Metadata())

	// sample and measure

	if cfg.Sampling.ByTime() {
		start, end := cfg.Sampling.TimeRange()
		err = s.GenerateByTime(ctx, start, end, cfg.Sampling.SamplesPerSecond, true)
	} else {
		start, end := cfg.Sampling.FrameRange()
		err = s.GenerateByFrames(ctx, start, end, cfg.Sampling.SamplesPerSecond, true)
	}
	assertNoError(ctx, err)
	schedule, _ := s.Schedule()
	logger.Infof(ctx, "sampling %s", schedule)

	startedAt := time.Now()
	result, err := shift.FindRate(ctx, s.Samples(), prep, cfg.RateParams())
	assertNoError(ctx, err)

	summary := fmt.Sprintf("compared %s pairs out of %s frames in %v",
		humanize.Comma(int64(result.Pairs)),
		humanize.Comma(int64(result.Frames)),
		time.Since(startedAt).Round(time.Millisecond),
	)
	if stats, ok := src.(statsGetter); ok {
		st := stats.GetStats()
		summary += fmt.Sprintf(" (decoded %s frames, %d seeks)", humanize.Comma(int64(st.FramesDecoded)), st.Seeks)
	}
	logger.Infof(ctx, "%s; standings: %v", summary, result.Standings)

	fmt.Println(result.Shift)
	if !result.Definite && *strict {
		belt.Flush(ctx)
		os.Exit(exitCodeNotConverged)
	}
}

func assertNoError(ctx context.Context, err error) {
	if err != nil {
		logger.Fatal(ctx, err)
	}
}

func setIfChanged[T any](flags *pflag.FlagSet, name string, dst *T, value T) {
	if flags.Changed(name) {
		*dst = value
	}
}

func setPtrIfChanged[T any](flags *pflag.FlagSet, name string, dst **T, value T) {
	if flags.Changed(name) {
		*dst = &value
	}
}
