// Package audio owns microphone capture and the device-rate-to-model-rate
// resampling window. Capture is a thin wrapper over PortAudio; Resampler
// turns the raw frame stream into fixed-size, fixed-hop AudioChunks.
package audio

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/msto63/streamvox/internal/apperr"
	"github.com/msto63/streamvox/internal/logx"
)

// probeRates is the fixed set of sample rates Source tries, in preference order.
var probeRates = []float64{16000, 48000, 44100, 32000, 22050, 8000}

// SourceConfig configures device selection and buffering for Source.
type SourceConfig struct {
	DevicePreference string // substring to match against device names; "" or "default" picks the system default
	FramesPerBuffer  int
	Channels         int
}

// DefaultSourceConfig returns the standard capture configuration.
func DefaultSourceConfig() SourceConfig {
	return SourceConfig{FramesPerBuffer: 512, Channels: 1}
}

// Source streams PCM frames from an input device at whatever rate the
// device actually runs, reporting the chosen rate via Rate().
type Source struct {
	mu          sync.Mutex
	log         *logx.Logger
	cfg         SourceConfig
	stream      *portaudio.Stream
	rate        float64
	running     bool
	initialized bool
	out         chan []float32
	buf         []float32 // the buffer the open stream reads into
}

// NewSource initializes PortAudio and prepares (but does not start) capture.
func NewSource(cfg SourceConfig, log *logx.Logger) (*Source, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, apperr.New(apperr.Environment, "audio", "initialize", err)
	}
	return &Source{
		log:         log.WithComponent("audio.source"),
		cfg:         cfg,
		initialized: true,
		out:         make(chan []float32, 50),
	}, nil
}

// Start opens the input stream, probing rates and matching DevicePreference
// by substring, then begins the capture loop.
func (s *Source) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return apperr.New(apperr.Environment, "audio", "start", fmt.Errorf("capture already running"))
	}

	device, err := s.selectDevice()
	if err != nil {
		return err
	}

	stream, rate, err := s.openAtBestRate(device)
	if err != nil {
		return err
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		return apperr.New(apperr.Environment, "audio", "start", err)
	}

	s.stream = stream
	s.rate = rate
	s.running = true
	go s.captureLoop(ctx)
	return nil
}

func (s *Source) selectDevice() (*portaudio.DeviceInfo, error) {
	pref := strings.TrimSpace(s.cfg.DevicePreference)
	if pref == "" || strings.EqualFold(pref, "default") {
		dev, err := portaudio.DefaultInputDevice()
		if err != nil {
			return nil, apperr.New(apperr.Environment, "audio", "select_device", err)
		}
		return dev, nil
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, apperr.New(apperr.Environment, "audio", "list_devices", err)
	}
	for _, d := range devices {
		if d.MaxInputChannels > 0 && strings.Contains(strings.ToLower(d.Name), strings.ToLower(pref)) {
			return d, nil
		}
	}
	s.log.Warn("preferred device not found, falling back to default", logx.Fields{"preference": pref})
	dev, err := portaudio.DefaultInputDevice()
	if err != nil {
		return nil, apperr.New(apperr.Environment, "audio", "select_device", fmt.Errorf("device %q not found and no default available", pref)).WithField("preference", pref)
	}
	return dev, nil
}

func (s *Source) openAtBestRate(device *portaudio.DeviceInfo) (*portaudio.Stream, float64, error) {
	buffer := make([]float32, s.cfg.FramesPerBuffer)
	var lastErr error
	for _, rate := range probeRates {
		params := portaudio.StreamParameters{
			Input: portaudio.StreamDeviceParameters{
				Device:   device,
				Channels: s.cfg.Channels,
				Latency:  device.DefaultLowInputLatency,
			},
			SampleRate:      rate,
			FramesPerBuffer: s.cfg.FramesPerBuffer,
		}
		stream, err := portaudio.OpenStream(params, buffer)
		if err == nil {
			s.buf = buffer
			return stream, rate, nil
		}
		lastErr = err
	}
	return nil, 0, apperr.New(apperr.Environment, "audio", "open_stream", fmt.Errorf("no supported sample rate for device %q: %w", device.Name, lastErr))
}

func (s *Source) captureLoop(ctx context.Context) {
	s.mu.Lock()
	buffer := s.buf
	s.mu.Unlock()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		s.mu.Lock()
		stream := s.stream
		running := s.running
		s.mu.Unlock()
		if !running || stream == nil {
			return
		}

		if err := stream.Read(); err != nil {
			s.mu.Lock()
			stillRunning := s.running
			s.mu.Unlock()
			if !stillRunning {
				return
			}
			s.log.Error("capture read failed", logx.Fields{"error": err})
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
			close(s.out)
			return
		}

		samples := make([]float32, len(buffer))
		copy(samples, buffer)
		select {
		case s.out <- samples:
		default:
			s.log.Warn("capture output channel saturated, dropping frame", nil)
		}
	}
}

// Output returns the channel of raw device-rate PCM frames.
func (s *Source) Output() <-chan []float32 { return s.out }

// Rate returns the sample rate the device stream was opened at.
func (s *Source) Rate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rate
}

// Stop halts the capture stream but leaves PortAudio initialized.
func (s *Source) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}
	s.running = false
	if s.stream != nil {
		_ = s.stream.Stop()
		err := s.stream.Close()
		s.stream = nil
		if err != nil {
			return apperr.New(apperr.CaptureRuntime, "audio", "stop", err)
		}
	}
	return nil
}

// Close stops capture and terminates PortAudio.
func (s *Source) Close() error {
	if err := s.Stop(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		if err := portaudio.Terminate(); err != nil {
			return apperr.New(apperr.Environment, "audio", "terminate", err)
		}
		s.initialized = false
	}
	return nil
}

// DeviceInfo describes one enumerated input device.
type DeviceInfo struct {
	Name              string
	MaxInputChannels  int
	DefaultSampleRate float64
	IsDefault         bool
}

// ListInputDevices enumerates available input devices for diagnostics and
// the selftest subcommand.
func ListInputDevices() ([]DeviceInfo, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, apperr.New(apperr.Environment, "audio", "initialize", err)
	}
	defer portaudio.Terminate()

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, apperr.New(apperr.Environment, "audio", "list_devices", err)
	}
	def, _ := portaudio.DefaultInputDevice()
	var defName string
	if def != nil {
		defName = def.Name
	}

	var out []DeviceInfo
	for _, d := range devices {
		if d.MaxInputChannels > 0 {
			out = append(out, DeviceInfo{
				Name:              d.Name,
				MaxInputChannels:  d.MaxInputChannels,
				DefaultSampleRate: d.DefaultSampleRate,
				IsDefault:         d.Name == defName,
			})
		}
	}
	return out, nil
}
