package main

import (
	"time"

	"github.com/gloworm-vision/encodersine/hardware"
	"github.com/sirupsen/logrus"
)

// encodercheck checks an encoder is wired up: it prints its identity and then
// every count change and button press until killed.
func main() {
	logger := logrus.New()

	device, err := hardware.New(hardware.DefaultConfig())
	if err != nil {
		panic(err)
	}
	defer device.Close()

	enc := device.Encoder
	if err := enc.Begin(); err != nil {
		panic(err)
	}

	info, err := enc.RefreshBasicInfo()
	if err != nil {
		panic(err)
	}
	logger.Infof("PID: %#x VID: %#x version: %#x address: %#x", info.PID, info.VID, info.Version, info.Addr)

	gain, err := enc.GainCoefficient()
	if err != nil {
		panic(err)
	}
	logger.Infof("gain coefficient: %d", gain)

	last := -1
	for {
		count, err := enc.EncoderValue()
		if err != nil {
			logger.Warnf("unable to read count: %s", err)
		} else if int(count) != last {
			logger.Infof("count: %d", count)
			last = int(count)
		}

		if pressed, err := enc.DetectButtonDown(); err == nil && pressed {
			logger.Info("button pressed")
		}

		time.Sleep(time.Millisecond * 10)
	}
}
