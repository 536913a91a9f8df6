package main

//go-build: CGO_ENABLED=0

// dmxsim emulates the transmitter device over TCP so the bridge and the
// console can be exercised without hardware: point them at a TCP-backed
// pty (e.g. socat) and watch the virtual universe.

import (
	"context"
	"flag"
	"net"
	"time"

	"github.com/golang/glog"

	"github.com/stagelink/dmxbridge/pkg/config"
	"github.com/stagelink/dmxbridge/pkg/device"
	"github.com/stagelink/dmxbridge/pkg/dmx"
	"github.com/stagelink/dmxbridge/pkg/runner"
)

var (
	listenAddr string
	configFile string
	statsEvery time.Duration
)

func init() {
	flag.StringVar(&listenAddr, "listen", ":7330", "TCP address of the virtual device.")
	flag.StringVar(&configFile, "config", "", "Path to configuration file.")
	flag.DurationVar(&statsEvery, "stats", 5*time.Second, "Stats reporting interval.")
}

type simServer struct {
	addr         string
	baud         int
	testChannels int
	testHold     time.Duration
}

func (s *simServer) Name() string {
	return "dmxsim"
}

func (s *simServer) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	glog.Infof("virtual device listening on %s", s.addr)
	return runner.RunWithContextCloser(ctx, ln, func() error {
		for {
			conn, err := ln.Accept()
			if err != nil {
				select {
				case <-ctx.Done():
					return nil
				default:
					return err
				}
			}
			go s.serve(ctx, conn)
		}
	})
}

// serve runs one device control loop per host connection, mirroring the
// firmware: self test, banner, then poll until the stream ends.
func (s *simServer) serve(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	glog.Infof("host connected from %v", conn.RemoteAddr())

	universe := dmx.NewUniverse()
	if err := device.SelfTest(universe, s.testChannels, s.testHold); err != nil {
		glog.Errorf("self test: %v", err)
		return
	}
	if err := device.Banner(conn, s.baud); err != nil {
		glog.Warningf("banner: %v", err)
		return
	}

	src := device.NewStreamSource(conn)
	d := device.NewDispatcher(src, universe)
	d.Indicator = device.IndicatorFunc(func(on bool) {
		glog.V(2).Infof("indicator %v", on)
	})

	ticker := time.NewTicker(device.DefaultPollInterval)
	defer ticker.Stop()
	statsTicker := time.NewTicker(statsEvery)
	defer statsTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.Poll()
			if src.Err() != nil {
				st := d.Stats()
				glog.Infof("host gone from %v: bytes=%d frames=%d rejected=%d",
					conn.RemoteAddr(), st.Bytes, st.FramesCompleted, st.FramesRejected)
				return
			}
		case <-statsTicker.C:
			st := d.Stats()
			glog.Infof("bytes=%d frames=%d rejected=%d writes=%d active=%v",
				st.Bytes, st.FramesCompleted, st.FramesRejected, st.ChannelWrites, universe.Active())
		}
	}
}

func main() {
	flag.Parse()

	cfg, err := config.Load(configFile)
	if err != nil {
		glog.Exit(err)
	}
	if err := cfg.Validate(); err != nil {
		glog.Exit(err)
	}

	srv := &simServer{
		addr:         listenAddr,
		baud:         cfg.Serial.Baud,
		testChannels: cfg.Device.TestChannels,
		testHold:     time.Duration(cfg.Device.TestHoldMS) * time.Millisecond,
	}
	if err := runner.NewRunner().HandleSignals().Go(srv).Wait(); err != nil {
		glog.Exit(err)
	}
}
