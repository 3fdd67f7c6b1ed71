package rfidsvc

import (
	"log"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	logsvc "github.com/durusapp/durus/services/logger"
)

func TestParseFrame(t *testing.T) {
	tests := []struct {
		name string
		line string
		uid  string
		ok   bool
	}{
		{name: "valid frame", line: "UID:04A1B2C3", uid: "04A1B2C3", ok: true},
		{name: "lowercase hex", line: "UID:04a1b2c3", uid: "04A1B2C3", ok: true},
		{name: "surrounding whitespace", line: "  UID:04A1B2C3 \r", uid: "04A1B2C3", ok: true},
		{name: "space after prefix", line: "UID: 04A1B2C3", uid: "04A1B2C3", ok: true},
		{name: "empty line", line: ""},
		{name: "boot banner", line: "RFID reader v1.2 ready"},
		{name: "prefix only", line: "UID:"},
		{name: "non-hex uid", line: "UID:04A1-B2C3"},
		{name: "garbage", line: "\x00\xffUID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uid, ok := ParseFrame(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.uid, uid)
		})
	}
}

func TestScan(t *testing.T) {
	var uids []string
	r := &Reader{
		handler: func(uid string) { uids = append(uids, uid) },
		logger:  logsvc.NewStdLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags)),
	}

	input := strings.NewReader("booting...\nUID:04A1B2C3\nnoise\nUID:DEADBEEF\n")
	err := r.scan(input)
	assert.Error(t, err) // the stream ending is a failure from the reader's view
	assert.Equal(t, []string{"04A1B2C3", "DEADBEEF"}, uids)
}
