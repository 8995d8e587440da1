// Package main contains the hevcrec executable.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/judocare/hevcrec"
	"github.com/judocare/hevcrec/internal/conf"
	"github.com/judocare/hevcrec/internal/logger"
	"github.com/judocare/hevcrec/pkg/base"
	"github.com/judocare/hevcrec/pkg/container"
	"github.com/judocare/hevcrec/pkg/liberrors"
	"github.com/judocare/hevcrec/pkg/rtph265"
	"github.com/judocare/hevcrec/pkg/segment"
)

// set with -ldflags "-X main.xxx=yyy"
var (
	version    = "v0.0.0"
	cameraPort = "554"
	cameraAuth = ""
)

type arguments struct {
	dataPath string
	camera   string
	matID    int
	posID    int
}

func parseArguments(args []string) (arguments, error) {
	if len(args) != 4 {
		return arguments{}, fmt.Errorf("expected 4 arguments, got %d", len(args))
	}

	a := arguments{
		dataPath: args[0],
		camera:   args[1],
	}

	if a.dataPath == "" {
		return arguments{}, fmt.Errorf("data path is empty")
	}
	if a.camera == "" {
		return arguments{}, fmt.Errorf("camera is empty")
	}

	var err error
	a.matID, err = strconv.Atoi(args[2])
	if err != nil {
		return arguments{}, fmt.Errorf("invalid mat id '%s'", args[2])
	}

	a.posID, err = strconv.Atoi(args[3])
	if err != nil {
		return arguments{}, fmt.Errorf("invalid position id '%s'", args[3])
	}

	return a, nil
}

func (a arguments) serviceName() string {
	return fmt.Sprintf("JUDOCARE-MAT%d.%d", a.matID, a.posID)
}

// vcsRevision returns the short VCS revision embedded by the Go toolchain, if any.
func vcsRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}

	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" {
			if len(setting.Value) > 7 {
				return setting.Value[:7]
			}
			return setting.Value
		}
	}

	return ""
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(),
		"usage: %s [flags] <data path> <camera> <mat id> <position id>\n", filepath.Base(os.Args[0]))
	flag.PrintDefaults()
}

func main() {
	var confPath string
	var printVersion bool

	flag.StringVar(&confPath, "config", "", "path of a YAML configuration file")
	flag.BoolVar(&printVersion, "version", false, "print the version of the application and exit")
	flag.Usage = usage
	flag.Parse()

	if printVersion {
		fmt.Printf("hevcrec version %s (%s) %s/%s\n", version, vcsRevision(), runtime.GOOS, runtime.GOARCH)
		os.Exit(0)
	}

	args, err := parseArguments(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERR: %v\n", err)
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := conf.Load(confPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERR: %v\n", err)
		os.Exit(1)
	}

	l, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERR: %v\n", err)
		os.Exit(1)
	}

	l = l.With().
		Str("camera", args.camera).
		Str("run", uuid.NewString()).
		Logger()

	l.Info().
		Str("version", version).
		Str("revision", vcsRevision()).
		Str("platform", runtime.GOOS+"/"+runtime.GOARCH).
		Str("go", runtime.Version()).
		Str("service", args.serviceName()).
		Msg("hevcrec")

	err = run(args, cfg, l)
	if err != nil {
		l.Fatal().Err(err).Msg("recorder failed")
	}

	l.Info().Msg("recorder stopped")
}

func run(args arguments, cfg *conf.Conf, l zerolog.Logger) error {
	port, err := strconv.Atoi(cameraPort)
	if err != nil {
		return fmt.Errorf("invalid camera port '%s'", cameraPort)
	}

	dir := filepath.Join(args.dataPath, args.camera)

	err = os.MkdirAll(dir, 0o755)
	if err != nil {
		return err
	}

	recovered, err := segment.RecoverStale(dir, cfg.Segment.TempSuffix)
	if err != nil {
		return err
	}
	for _, path := range recovered {
		l.Warn().Str("path", path).Msg("stale segment recovered")
	}

	client := &hevcrec.Client{
		Host:           args.camera,
		Port:           port,
		Credentials:    cameraAuth,
		UserAgent:      cfg.RTSP.UserAgent,
		ReadTimeout:    cfg.RTSP.ReadTimeout,
		RequestTimeout: cfg.RTSP.RequestTimeout,
		OnRequest: func(req *base.Request) {
			l.Debug().Str("method", string(req.Method)).Str("url", req.URL.String()).Msg("request")
		},
		OnResponse: func(res *base.Response) {
			l.Debug().Int("status", int(res.StatusCode)).Str("message", res.StatusMessage).Msg("response")
		},
	}

	// the stream is stopped with Interrupt, in order to send a TEARDOWN request
	err = client.Start(context.Background())
	if err != nil {
		return err
	}
	defer client.Close()

	desc, err := client.Negotiate()
	if err != nil {
		return err
	}

	encoding, err := hevcrec.FindVideoEncoding(desc.Body)
	switch {
	case err != nil:
		l.Warn().Err(err).Msg("unable to read the stream description")
	case encoding != hevcrec.VideoEncoding:
		l.Warn().Str("encoding", encoding).Msgf("video encoding is not %s", hevcrec.VideoEncoding)
	}

	l.Info().Str("url", client.URL().String()).Str("session", client.Session()).Msg("stream started")

	rec := &hevcrec.Recorder{
		Source:   client,
		BasePath: args.dataPath,
		Camera:   args.camera,
		Writer: &container.MPEGTS{
			ServiceProvider: cfg.Segment.Provider,
			ServiceName:     args.serviceName(),
		},
		NetworkBufferSize:    cfg.Buffers.Network,
		AccessUnitBufferSize: cfg.Buffers.AccessUnit,
		TempSuffix:           cfg.Segment.TempSuffix,
		OnSegmentOpen: func(s *segment.Segment) {
			l.Info().Str("path", s.TempPath).Msg("segment opened")
		},
		OnSegmentFinalize: func(s *segment.Segment) {
			l.Info().
				Str("path", s.FinalPath).
				Int("frames", s.Frames).
				Int64("bytes", s.Bytes).
				Dur("duration", time.Duration(s.Frames)*time.Second/rtph265.FrameRate).
				Msg("segment finalized")
		},
		OnDiscontinuity: func(prev uint32, cur uint32) {
			l.Warn().Uint32("previous", prev).Uint32("current", cur).Msg("discontinuity")
		},
		OnStats: func(bytesPerSecond int) {
			l.Debug().Int("bytes_per_second", bytesPerSecond).Msg("bitrate")
		},
		OnPacketsLost: func(count uint64) {
			l.Warn().Uint64("count", count).Msg("RTP packets lost")
		},
	}

	err = rec.Initialize()
	if err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var g errgroup.Group
	stopped := make(chan struct{})

	g.Go(func() error {
		select {
		case sig := <-sigCh:
			l.Info().Str("signal", sig.String()).Msg("received signal, shutting down")
			client.Interrupt()
		case <-stopped:
		}
		return nil
	})

	g.Go(func() error {
		defer close(stopped)

		err := rec.Run()

		var terr liberrors.ErrClientTerminated
		if errors.As(err, &terr) {
			return nil
		}
		return err
	})

	err = g.Wait()

	closeErr := rec.Close()

	l.Info().
		Uint64("bytes_received", client.BytesReceived()).
		Int("dropped_access_units", rec.DroppedAccessUnits()).
		Uint64("packets_lost", rec.PacketsLost()).
		Msg("stream stopped")

	if err != nil {
		return err
	}
	return closeErr
}
