package device

import (
	"fmt"
	"io"
	"time"

	"github.com/stagelink/dmxbridge/pkg/dmx"
)

// DefaultTestChannels is how many channels the boot pattern raises.
const DefaultTestChannels = 100

// DefaultTestHold is how long the boot pattern stays lit.
const DefaultTestHold = 500 * time.Millisecond

// SelfTest clears the universe, raises channels 1..testChannels to full,
// holds, and clears them again. It confirms the DMX line is alive before
// the device starts accepting frames.
func SelfTest(tx dmx.Transmitter, testChannels int, hold time.Duration) error {
	if testChannels <= 0 || testChannels > dmx.MaxChannels {
		testChannels = DefaultTestChannels
	}
	for ch := uint16(1); ch <= dmx.MaxChannels; ch++ {
		if err := tx.Write(ch, 0); err != nil {
			return err
		}
	}
	for ch := uint16(1); ch <= uint16(testChannels); ch++ {
		if err := tx.Write(ch, 0xff); err != nil {
			return err
		}
	}
	time.Sleep(hold)
	for ch := uint16(1); ch <= uint16(testChannels); ch++ {
		if err := tx.Write(ch, 0); err != nil {
			return err
		}
	}
	return nil
}

// Banner writes the ready banner to the host link.
func Banner(w io.Writer, baud int) error {
	_, err := fmt.Fprintf(w, "DMX_READY\r\nChannels:%d\r\nSerial@%d\r\n", dmx.MaxChannels, baud)
	return err
}
