package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	"github.com/golang/glog"
	"go.bug.st/serial"

	"github.com/stagelink/dmxbridge/pkg/console"
)

var (
	portName string
	baud     int
)

func init() {
	flag.StringVar(&portName, "port", "/dev/ttyUSB0", "Serial port of the transmitter device.")
	flag.IntVar(&baud, "baud", 250000, "Baud rate.")
}

func main() {
	flag.Parse()

	port, err := serial.Open(portName, &serial.Mode{BaudRate: baud})
	if err != nil {
		glog.Exitf("open %s: %v", portName, err)
	}
	defer port.Close()

	if err := console.New(port).Run(); err != nil {
		glog.Exit(err)
	}
}
