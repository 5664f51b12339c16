// Server for TOPIN GPS trackers: accepts TCP connections, decodes frames,
// resolves Wi-Fi/LBS positions, and appends traffic and position records to
// the log sink.
package main

import (
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/intelcon-group/topin-server/internal/config"
	"github.com/intelcon-group/topin-server/internal/engine"
	"github.com/intelcon-group/topin-server/internal/geolocate"
	"github.com/intelcon-group/topin-server/internal/logsink"
	"github.com/intelcon-group/topin-server/pkg/jimi/encoder"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	sink, err := logsink.NewFileSink(cfg.LogDir)
	if err != nil {
		log.Fatalf("logsink: %v", err)
	}
	defer sink.Close()

	var locator geolocate.Locator
	if cfg.GMapsAPIKey == "" {
		log.Println("GMAPS_API_KEY not set: wifi_positioning frames will receive empty stage-2 coordinates")
		locator = geolocate.StaticLocator{Err: fmt.Errorf("geolocation disabled: GMAPS_API_KEY not set")}
	} else {
		locator = geolocate.NewHTTPLocator(cfg.GMapsAPIKey)
	}

	eng := engine.New(nil, encoder.New())

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		log.Fatalf("listen: %v", err)
	}
	defer listener.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutting down")
		listener.Close()
		os.Exit(0)
	}()

	log.Printf("listening on :%d (logs: %s)", cfg.Port, cfg.LogDir)

	for {
		netConn, err := listener.Accept()
		if err != nil {
			log.Printf("accept: %v", err)
			continue
		}
		go serve(netConn, eng, locator, sink, cfg)
	}
}

func serve(netConn net.Conn, eng *engine.Engine, locator geolocate.Locator, sink logsink.Sink, cfg config.Config) {
	conn := engine.NewConn(netConn, eng, locator, sink,
		engine.WithBufferSize(cfg.BufferSize),
		engine.WithGeolocationTimeout(cfg.GeolocationTimeout),
	)

	peer := netConn.RemoteAddr().String()
	log.Printf("[%s] connected", peer)

	if err := conn.Serve(); err != nil {
		log.Printf("[%s] closed: %v", peer, err)
		return
	}
	log.Printf("[%s] closed", peer)
}
