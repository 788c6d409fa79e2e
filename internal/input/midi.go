package input

import (
	"fmt"
	"strconv"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"go.uber.org/zap"
)

const midiSource = "midi"

// MIDISource feeds note on and off messages from a hardware port.
// A driver has to be registered by the program, eg. rtmididrv.
type MIDISource struct {
	in     drivers.In
	stop   func()
	stream *Stream
	curve  Curve
	log    *zap.Logger
}

// findPort accepts a port number or a port name
func findPort(port string) (drivers.In, error) {
	if n, err := strconv.Atoi(port); err == nil {
		return midi.InPort(n)
	}
	return midi.FindInPort(port)
}

func OpenMIDI(port string, stream *Stream, curve Curve, log *zap.Logger) (*MIDISource, error) {
	in, err := findPort(port)
	if err != nil {
		return nil, fmt.Errorf("unable to find midi input %q: %w", port, err)
	}

	m := &MIDISource{in: in, stream: stream, curve: curve, log: log}
	stop, err := midi.ListenTo(in, m.handle, midi.HandleError(func(err error) {
		log.Warn("midi listener error", zap.String("port", in.String()), zap.Error(err))
	}))
	if err != nil {
		return nil, fmt.Errorf("unable to listen to %q: %w", in.String(), err)
	}
	m.stop = stop
	log.Info("midi input connected", zap.String("port", in.String()))
	return m, nil
}

func (m *MIDISource) handle(msg midi.Message, timestampms int32) {
	var ch, key, vel uint8
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		m.stream.Press(midiSource, int(key), m.curve.FromMIDI(vel))
	case msg.GetNoteEnd(&ch, &key):
		m.stream.Release(midiSource, int(key))
	}
}

func (m *MIDISource) Close() error {
	if m.stop != nil {
		m.stop()
	}
	m.stream.ReleaseAll(midiSource)
	return m.in.Close()
}

// Ports lists the available input port names
func Ports() []string {
	names := []string{}
	for _, in := range midi.GetInPorts() {
		names = append(names, in.String())
	}
	return names
}
