package engine

import (
	"context"
	"encoding/hex"
	"errors"
	"io"
	"net"
	"time"

	"github.com/intelcon-group/topin-server/internal/engineerr"
	"github.com/intelcon-group/topin-server/internal/geolocate"
	"github.com/intelcon-group/topin-server/internal/logsink"
	"github.com/intelcon-group/topin-server/internal/session"
	"github.com/intelcon-group/topin-server/internal/splitter"
)

// ConnOptions configures a Conn. Zero value is invalid; use
// DefaultConnOptions as a base.
type ConnOptions struct {
	// ReadTimeout bounds each blocking socket read; exceeding it closes the
	// connection per §5's suspension-point rule.
	ReadTimeout time.Duration
	// WriteTimeout bounds each blocking reply write.
	WriteTimeout time.Duration
	// GeolocationTimeout bounds the geolocation collaborator call issued
	// after a wifi_positioning stage-1 flush.
	GeolocationTimeout time.Duration
	// BufferSize is the per-Read() chunk size.
	BufferSize int
}

// ConnOption is a functional option for ConnOptions.
type ConnOption func(*ConnOptions)

// DefaultConnOptions returns the spec's stated defaults: 4096-byte receive
// buffer, 5-minute read timeout, 10-second write/geolocation timeouts.
func DefaultConnOptions() ConnOptions {
	return ConnOptions{
		ReadTimeout:        5 * time.Minute,
		WriteTimeout:       10 * time.Second,
		GeolocationTimeout: 10 * time.Second,
		BufferSize:         4096,
	}
}

// WithReadTimeout overrides the read deadline.
func WithReadTimeout(d time.Duration) ConnOption {
	return func(o *ConnOptions) { o.ReadTimeout = d }
}

// WithWriteTimeout overrides the write deadline.
func WithWriteTimeout(d time.Duration) ConnOption {
	return func(o *ConnOptions) { o.WriteTimeout = d }
}

// WithGeolocationTimeout overrides the geolocation call deadline.
func WithGeolocationTimeout(d time.Duration) ConnOption {
	return func(o *ConnOptions) { o.GeolocationTimeout = d }
}

// WithBufferSize overrides the per-read chunk size.
func WithBufferSize(n int) ConnOption {
	return func(o *ConnOptions) {
		if n > 0 {
			o.BufferSize = n
		}
	}
}

// Conn drives one accepted TCP connection: it reads, splits, and feeds
// frames through Engine.Step, writes replies, resolves pending geolocation
// requests, and appends every inbound/outbound frame plus position record
// to the log sink. This is the impure counterpart to Step, grounded on the
// teacher's DeviceSession/handleConnection pair in cmd/tcp-server/main.go.
type Conn struct {
	netConn net.Conn
	engine  *Engine
	locator geolocate.Locator
	sink    logsink.Sink
	opts    ConnOptions

	session *session.Session
}

// NewConn creates a Conn ready to Serve netConn.
func NewConn(netConn net.Conn, eng *Engine, locator geolocate.Locator, sink logsink.Sink, opts ...ConnOption) *Conn {
	o := DefaultConnOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Conn{
		netConn: netConn,
		engine:  eng,
		locator: locator,
		sink:    sink,
		opts:    o,
		session: session.New(netConn.RemoteAddr().String()),
	}
}

// Session returns the connection's current session state, for callers that
// want to inspect or register it (e.g. an external command dispatcher).
func (c *Conn) Session() *session.Session {
	return c.session
}

// Serve reads and processes frames until the session closes, the peer
// disconnects, or a fatal error occurs. It always closes netConn before
// returning.
func (c *Conn) Serve() error {
	defer c.netConn.Close()

	buf := make([]byte, 0, c.opts.BufferSize)
	readBuf := make([]byte, c.opts.BufferSize)

	for {
		if err := c.netConn.SetReadDeadline(time.Now().Add(c.opts.ReadTimeout)); err != nil {
			return engineerr.NewIOError("set read deadline", err)
		}

		n, err := c.netConn.Read(readBuf)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				return engineerr.NewTimeoutError("read", err)
			}
			return engineerr.NewIOError("read", err)
		}
		if n == 0 {
			continue
		}
		buf = append(buf, readBuf[:n]...)

		frames, residue, splitErr := splitter.Split(buf)
		buf = append(buf[:0], residue...)
		if splitErr != nil {
			return engineerr.NewFrameError(0, "malformed frame", splitErr)
		}

		for _, f := range frames {
			keepAlive, err := c.handleFrame(f)
			if err != nil {
				return err
			}
			if !keepAlive {
				return nil
			}
		}
	}
}

func (c *Conn) handleFrame(f splitter.RawFrame) (bool, error) {
	if err := c.logFrame(logsink.DirectionIn, f.Raw); err != nil {
		return false, err
	}

	outcome, err := c.engine.Step(c.session, f.Opcode, f.Payload)
	if err != nil {
		return false, err
	}

	for _, reply := range outcome.Outbound {
		if err := c.writeFrame(reply); err != nil {
			return false, err
		}
	}

	if outcome.PendingGeolocation != nil {
		ctx, cancel := context.WithTimeout(context.Background(), c.opts.GeolocationTimeout)
		fix, geoErr := c.locator.Locate(ctx, outcome.PendingGeolocation.Evidence)
		cancel()
		if geoErr != nil {
			geoErr = engineerr.NewGeolocationError(geoErr)
		}

		stage2, pos := c.engine.FinishWiFiPositioning(fix, geoErr)
		if err := c.writeFrame(stage2); err != nil {
			return false, err
		}
		if err := c.logPosition(pos); err != nil {
			return false, err
		}
	}

	if outcome.Position != nil {
		if err := c.logPosition(*outcome.Position); err != nil {
			return false, err
		}
	}

	return outcome.KeepAlive && c.session.State != session.Closing, nil
}

func (c *Conn) writeFrame(data []byte) error {
	if err := c.netConn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout)); err != nil {
		return engineerr.NewIOError("set write deadline", err)
	}
	if _, err := c.netConn.Write(data); err != nil {
		return engineerr.NewIOError("write", err)
	}
	return c.logFrame(logsink.DirectionOut, data)
}

func (c *Conn) logFrame(dir logsink.Direction, raw []byte) error {
	err := c.sink.WriteInfo(logsink.InfoRecord{
		Timestamp: time.Now().UTC(),
		PeerAddr:  c.session.PeerAddr,
		IMEI:      c.session.IMEI,
		Direction: dir,
		HexFrame:  hex.EncodeToString(raw),
	})
	if err != nil {
		return engineerr.NewIOError("log info", err)
	}
	return nil
}

func (c *Conn) logPosition(pos session.Position) error {
	err := c.sink.WriteLocation(logsink.LocationRecord{
		Timestamp: time.Now().UTC(),
		PeerAddr:  c.session.PeerAddr,
		IMEI:      c.session.IMEI,
		Position:  pos,
	})
	if err != nil {
		return engineerr.NewIOError("log location", err)
	}
	return nil
}
