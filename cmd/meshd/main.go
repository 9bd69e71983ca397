package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/keke1008/meshd/internal/discovery"
	"github.com/keke1008/meshd/internal/framebuf"
	"github.com/keke1008/meshd/internal/hwserial"
	"github.com/keke1008/meshd/internal/linkaddr"
	"github.com/keke1008/meshd/internal/linksock"
	"github.com/keke1008/meshd/internal/metrics"
	"github.com/keke1008/meshd/internal/neighbor"
	"github.com/keke1008/meshd/internal/netcore"
	"github.com/keke1008/meshd/internal/serialmedium"
	"github.com/keke1008/meshd/internal/timeutil"
	"github.com/keke1008/meshd/internal/uhfmedium"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// hostClock turns the process start into the monotonic millisecond oracle
// the cooperative core requires; it is the only place in this daemon that
// calls time.Now (spec: protocol logic itself never does).
type hostClock struct{ start time.Time }

func (c hostClock) Now() timeutil.Instant {
	return timeutil.Instant(uint32(time.Since(c.start).Milliseconds()))
}

func main() {
	cfg, showVersion := parseFlags()
	if showVersion {
		fmt.Printf("meshd %s (commit %s, built %s)\n", version, commit, date)
		return
	}
	if cfg == nil {
		os.Exit(2)
	}
	l := setupLogger(cfg.logFormat, cfg.logLevel)

	self := linkaddr.UHFAddress(byte(cfg.nodeID))
	selfCost := neighbor.Cost(cfg.nodeCost)
	clock := hostClock{start: time.Now()}
	now := clock.Now()

	pool := framebuf.NewPool(cfg.shortBuffers, cfg.largeBuffers)
	neighbors := neighbor.NewTable()
	broker := linksock.NewBroker(neighbors)

	neighborSvc := neighbor.NewService(now, self, selfCost, cfg.autoDiscovery, neighbors, broker.Socket(netcore.ProtocolRoutingNeighbor), pool)
	discEngine := discovery.NewEngine(now, self, selfCost, neighbors, broker.Socket(netcore.ProtocolRoutingReactive), pool, timeutil.DefaultRand{})

	var closers []func() error

	if cfg.serialEnable {
		port, err := hwserial.Open(cfg.serialDev, cfg.serialBaud, cfg.serialReadTO)
		if err != nil {
			l.Error("serial_open_error", "error", err)
			os.Exit(1)
		}
		l.Info("serial_open", "device", cfg.serialDev, "baud", cfg.serialBaud)
		stream := hwserial.NewStream(port)
		closers = append(closers, stream.Close)
		serialLocal := linkaddr.SerialAddress(byte(cfg.nodeID))
		serialDriver := serialmedium.NewDriver(stream, stream, broker, pool, &serialLocal)
		go runMedium(cfg.tickInterval, func() { serialDriver.Execute() })
	}

	if cfg.uhfEnable {
		port, err := hwserial.Open(cfg.uhfDev, cfg.uhfBaud, cfg.uhfReadTO)
		if err != nil {
			l.Error("uhf_open_error", "error", err)
			os.Exit(1)
		}
		l.Info("uhf_open", "device", cfg.uhfDev, "baud", cfg.uhfBaud)
		stream := hwserial.NewStream(port)
		closers = append(closers, stream.Close)
		uhfDriver := uhfmedium.NewDriver(stream, stream, broker, pool, timeutil.DefaultRand{})
		go runMedium(cfg.tickInterval, func() { uhfDriver.Execute(clock.Now()) })
	}

	metrics.SetReadinessFunc(func() bool { return true })
	if cfg.metricsAddr != "" {
		metrics.InitBuildInfo(version, commit, date)
		metricsSrv := metrics.StartHTTP(cfg.metricsAddr)
		defer func() { _ = metricsSrv.Close() }()
	}

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(cfg.tickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				t := clock.Now()
				neighborSvc.Execute(t)
				discEngine.Execute(t)
				drainNotifications(l, neighborSvc)
			}
		}
	}()

	s := <-sigCh
	l.Info("shutdown_signal", "signal", s.String())
	neighborSvc.SendGoodbye()
	close(done)
	for _, closer := range closers {
		_ = closer()
	}
}

// runMedium drives a media driver's Execute on its own tick loop; each
// medium advances independently since none of them share mutable state
// outside the broker, which is safe for concurrent single-writer-per-queue
// access (spec §4.4).
func runMedium(interval time.Duration, execute func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		execute()
	}
}

func drainNotifications(l interface {
	Info(msg string, args ...any)
}, svc *neighbor.Service) {
	for {
		n, ok := svc.Poll()
		if !ok {
			return
		}
		switch n.Kind {
		case neighbor.NeighborUpdated:
			l.Info("neighbor_updated", "id", n.ID, "link_cost", n.LinkCost)
		case neighbor.NeighborRemoved:
			l.Info("neighbor_removed", "id", n.ID)
		}
	}
}
