package rfidsvc

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.bug.st/serial"

	"github.com/durusapp/durus/core"
)

// uidPrefix marks card frames on the serial line; the reader firmware emits
// one "UID:<hex>" line per badge swipe.
const uidPrefix = "UID:"

// Handler receives each card UID read off the serial line.
type Handler func(uid string)

// Reader listens on a serial port for RFID badge reads and hands the UIDs to
// a Handler. It reconnects with backoff when the port drops.
type Reader struct {
	port    string
	baud    int
	handler Handler
	logger  core.Logger
}

func NewReader(handler Handler, logger core.Logger) *Reader {
	conf := core.Conf.RFID
	return &Reader{
		port:    conf.Port,
		baud:    conf.Baud,
		handler: handler,
		logger:  logger,
	}
}

// Run blocks reading the port until ctx is done.
func (r *Reader) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		port, err := serial.Open(r.port, &serial.Mode{BaudRate: r.baud})
		if err != nil {
			r.logger.Warn(fmt.Sprintf("opening RFID port %s: %v; retrying in %s", r.port, err, backoff), err)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second
		r.logger.Info(fmt.Sprintf("RFID reader connected on %s", r.port))

		done := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				port.Close()
			case <-done:
			}
		}()

		err = r.scan(port)
		close(done)
		port.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.logger.Warn(fmt.Sprintf("RFID port %s dropped: %v; reconnecting", r.port, err), err)
	}
}

// scan reads frames off the port until it fails.
func (r *Reader) scan(port io.Reader) error {
	sc := bufio.NewScanner(port)
	for sc.Scan() {
		if uid, ok := ParseFrame(sc.Text()); ok {
			r.handler(uid)
		}
	}
	if err := sc.Err(); err != nil {
		return errors.Wrap(err, "reading serial port")
	}
	return errors.New("serial port closed")
}

// ParseFrame extracts the card UID from one serial line. Lines that are not
// card frames (boot banners, blank lines) are skipped.
func ParseFrame(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, uidPrefix) {
		return "", false
	}
	uid := strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(line, uidPrefix)))
	if uid == "" {
		return "", false
	}
	for _, r := range uid {
		if !isHex(r) {
			return "", false
		}
	}
	return uid, true
}

func isHex(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'A' && r <= 'F')
}
