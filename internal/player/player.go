package player

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog/log"

	"github.com/xiliourt/Lyrical-Sync/internal/track"
)

const (
	mprisPath        = "/org/mpris/MediaPlayer2"
	mprisPlayerIface = "org.mpris.MediaPlayer2.Player"
	mprisPrefix      = "org.mpris.MediaPlayer2."

	// drift beyond this between expected and reported position counts as a seek
	seekThresholdSeconds = 2.0
)

type Event int

const (
	EventTrackChanged Event = iota
	EventSeeked
	EventPlaybackStateChanged
)

type EventData struct {
	Type            Event
	Track           *track.Info
	PositionSeconds float64
	Playing         bool
}

type State struct {
	Track              *track.Info
	PositionSeconds    float64
	Playing            bool
	lastPositionUpdate time.Time
}

// DetectSeek compares newPosition with where playback should be if it had
// run uninterrupted since the last update.
func (s *State) DetectSeek(newPosition float64, now time.Time) bool {
	if s.lastPositionUpdate.IsZero() {
		return false
	}

	expected := s.PositionSeconds
	if s.Playing {
		expected += now.Sub(s.lastPositionUpdate).Seconds()
	}

	diff := newPosition - expected
	if diff < 0 {
		diff = -diff
	}

	return diff > seekThresholdSeconds
}

func (s *State) UpdatePosition(pos float64, now time.Time) {
	s.PositionSeconds = pos
	s.lastPositionUpdate = now
}

type Service struct {
	bus        *dbus.Conn
	service    string
	signalChan chan *dbus.Signal
	stopChan   chan struct{}
	stopOnce   sync.Once
	eventChan  chan EventData
	state      *State
	mu         sync.RWMutex
}

func NewService(bus *dbus.Conn, mprisService string) (*Service, error) {
	if bus == nil {
		return nil, errors.New("nil dbus connection")
	}
	if mprisService == "" {
		return nil, errors.New("empty mpris service name")
	}

	return newService(bus, mprisService), nil
}

func newService(bus *dbus.Conn, mprisService string) *Service {
	return &Service{
		bus:       bus,
		service:   mprisService,
		eventChan: make(chan EventData, 16),
		state:     &State{},
	}
}

// ServiceName expands a short player name such as "spotify" to its bus name.
func ServiceName(name string) string {
	if name == "" || strings.HasPrefix(name, mprisPrefix) {
		return name
	}
	return mprisPrefix + name
}

// List returns the MPRIS players currently on the session bus.
func List(bus *dbus.Conn) ([]string, error) {
	var names []string
	err := bus.BusObject().Call("org.freedesktop.DBus.ListNames", 0).Store(&names)
	if err != nil {
		return nil, fmt.Errorf("failed to list dbus names: %w", err)
	}

	var players []string
	for _, name := range names {
		if strings.HasPrefix(name, mprisPrefix) {
			players = append(players, name)
		}
	}

	return players, nil
}

// Identity is the player's human-readable name, or "" when unavailable.
func Identity(bus *dbus.Conn, serviceName string) string {
	obj := bus.Object(serviceName, mprisPath)
	variant, err := obj.GetProperty("org.mpris.MediaPlayer2.Identity")
	if err != nil {
		return ""
	}

	identity, ok := variant.Value().(string)
	if !ok {
		return ""
	}

	return identity
}

func (s *Service) Start() error {
	signalChan := make(chan *dbus.Signal, 10)
	s.signalChan = signalChan
	s.stopChan = make(chan struct{})

	s.bus.Signal(signalChan)

	matchPropertiesChanged := fmt.Sprintf(
		"type='signal',sender='%s',interface='org.freedesktop.DBus.Properties',member='PropertiesChanged',path='%s'",
		s.service, mprisPath,
	)
	matchSeeked := fmt.Sprintf(
		"type='signal',sender='%s',interface='%s',member='Seeked',path='%s'",
		s.service, mprisPlayerIface, mprisPath,
	)

	for _, rule := range []string{matchPropertiesChanged, matchSeeked} {
		err := s.bus.BusObject().Call("org.freedesktop.DBus.AddMatch", 0, rule).Err
		if err != nil {
			return fmt.Errorf("failed to add match %q: %w", rule, err)
		}
	}

	go s.signalLoop()

	return nil
}

func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		if s.stopChan != nil {
			close(s.stopChan)
		}
	})
}

func (s *Service) Events() <-chan EventData {
	return s.eventChan
}

func (s *Service) GetCurrentTrack() (*track.Info, error) {
	obj := s.bus.Object(s.service, mprisPath)

	prop, err := obj.GetProperty(mprisPlayerIface + ".Metadata")
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata property: %w", err)
	}

	metadata, ok := prop.Value().(map[string]dbus.Variant)
	if !ok {
		return nil, fmt.Errorf("unexpected metadata type %T", prop.Value())
	}

	return trackFromMetadata(metadata), nil
}

// GetCurrentPosition reads the player position with microsecond precision.
func (s *Service) GetCurrentPosition() (float64, error) {
	obj := s.bus.Object(s.service, mprisPath)

	prop, err := obj.GetProperty(mprisPlayerIface + ".Position")
	if err != nil {
		return 0, fmt.Errorf("failed to get position property: %w", err)
	}

	positionMicroseconds, ok := prop.Value().(int64)
	if !ok {
		return 0, fmt.Errorf("unexpected position type %T", prop.Value())
	}

	return microsToSeconds(positionMicroseconds), nil
}

func (s *Service) GetPlaying() (bool, error) {
	obj := s.bus.Object(s.service, mprisPath)

	prop, err := obj.GetProperty(mprisPlayerIface + ".PlaybackStatus")
	if err != nil {
		return false, fmt.Errorf("failed to get playback status: %w", err)
	}

	status, ok := prop.Value().(string)
	if !ok {
		return false, fmt.Errorf("unexpected playback status type %T", prop.Value())
	}

	return status == "Playing", nil
}

// Poll refreshes track and position, emitting events for a new track or a
// position jump.
func (s *Service) Poll() (float64, error) {
	trk, err := s.GetCurrentTrack()
	if err != nil {
		return 0, err
	}

	pos, err := s.GetCurrentPosition()
	if err != nil {
		return 0, err
	}

	now := time.Now()

	s.mu.Lock()
	currentTrack := s.state.Track
	seekDetected := s.state.DetectSeek(pos, now)
	s.state.UpdatePosition(pos, now)
	trackChanged := !trk.IsSameTrack(currentTrack)
	if trackChanged {
		s.state.Track = trk
	}
	s.mu.Unlock()

	switch {
	case trackChanged:
		s.emitEvent(EventData{Type: EventTrackChanged, Track: trk, PositionSeconds: pos})
	case seekDetected:
		s.emitEvent(EventData{Type: EventSeeked, PositionSeconds: pos})
	}

	return pos, nil
}

func (s *Service) GetState() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stateCopy := State{
		PositionSeconds: s.state.PositionSeconds,
		Playing:         s.state.Playing,
	}

	if s.state.Track != nil {
		trackCopy := *s.state.Track
		stateCopy.Track = &trackCopy
	}

	return stateCopy
}

func (s *Service) signalLoop() {
	for {
		select {
		case sig, ok := <-s.signalChan:
			if !ok {
				return
			}
			s.handleSignal(sig)
		case <-s.stopChan:
			s.bus.RemoveSignal(s.signalChan)
			return
		}
	}
}

func (s *Service) handleSignal(sig *dbus.Signal) {
	if sig == nil {
		return
	}

	switch sig.Name {
	case "org.freedesktop.DBus.Properties.PropertiesChanged":
		s.handlePropertiesChanged(sig)
	case mprisPlayerIface + ".Seeked":
		s.handleSeeked(sig)
	}
}

func (s *Service) handlePropertiesChanged(sig *dbus.Signal) {
	if len(sig.Body) < 2 {
		return
	}

	interfaceName, ok := sig.Body[0].(string)
	if !ok || interfaceName != mprisPlayerIface {
		return
	}

	changedProps, ok := sig.Body[1].(map[string]dbus.Variant)
	if !ok {
		return
	}

	if metadataVariant, exists := changedProps["Metadata"]; exists {
		if metadata, ok := metadataVariant.Value().(map[string]dbus.Variant); ok {
			info := trackFromMetadata(metadata)
			if info.IsValid() {
				s.mu.Lock()
				s.state.Track = info
				s.state.UpdatePosition(0, time.Now())
				s.mu.Unlock()

				s.emitEvent(EventData{Type: EventTrackChanged, Track: info})
			}
		}
	}

	if playbackVariant, exists := changedProps["PlaybackStatus"]; exists {
		if status, ok := playbackVariant.Value().(string); ok {
			playing := status == "Playing"
			s.mu.Lock()
			s.state.Playing = playing
			s.state.lastPositionUpdate = time.Now()
			s.mu.Unlock()

			s.emitEvent(EventData{Type: EventPlaybackStateChanged, Playing: playing})
		}
	}
}

func (s *Service) handleSeeked(sig *dbus.Signal) {
	if len(sig.Body) < 1 {
		return
	}

	positionMicroseconds, ok := sig.Body[0].(int64)
	if !ok {
		return
	}

	pos := microsToSeconds(positionMicroseconds)

	s.mu.Lock()
	s.state.UpdatePosition(pos, time.Now())
	s.mu.Unlock()

	s.emitEvent(EventData{Type: EventSeeked, PositionSeconds: pos})
}

func (s *Service) emitEvent(event EventData) {
	select {
	case s.eventChan <- event:
	default:
		log.Debug().Int("event", int(event.Type)).Msg("player event dropped, channel full")
	}
}

func trackFromMetadata(metadata map[string]dbus.Variant) *track.Info {
	return &track.Info{
		Title:           extractString(metadata, "xesam:title"),
		Artist:          extractArtist(metadata, "xesam:artist"),
		Album:           extractString(metadata, "xesam:album"),
		TrackID:         extractTrackID(metadata, "mpris:trackid"),
		DurationSeconds: extractDurationSeconds(metadata, "mpris:length"),
		ArtworkURL:      extractString(metadata, "mpris:artUrl"),
	}
}

func microsToSeconds(micros int64) float64 {
	if micros < 0 {
		return 0
	}
	return float64(micros) / 1_000_000
}

func extractString(metadata map[string]dbus.Variant, key string) string {
	variant, exists := metadata[key]
	if !exists {
		return ""
	}

	text, _ := variant.Value().(string)
	return text
}

// mpris:trackid should be an object path, but some players send a string
func extractTrackID(metadata map[string]dbus.Variant, key string) string {
	variant, exists := metadata[key]
	if !exists {
		return ""
	}

	switch typed := variant.Value().(type) {
	case dbus.ObjectPath:
		return string(typed)
	case string:
		return typed
	default:
		return ""
	}
}

func extractArtist(metadata map[string]dbus.Variant, key string) string {
	variant, exists := metadata[key]
	if !exists {
		return ""
	}

	switch typed := variant.Value().(type) {
	case []string:
		if len(typed) > 0 {
			return typed[0]
		}
		return ""
	case string:
		return typed
	default:
		return ""
	}
}

func extractDurationSeconds(metadata map[string]dbus.Variant, key string) float64 {
	variant, exists := metadata[key]
	if !exists {
		return 0
	}

	switch typed := variant.Value().(type) {
	case int64:
		return microsToSeconds(typed)
	case uint64:
		return float64(typed) / 1_000_000
	default:
		return 0
	}
}
