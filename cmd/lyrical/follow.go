package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/xiliourt/Lyrical-Sync/internal/artwork"
	"github.com/xiliourt/Lyrical-Sync/internal/clock"
	"github.com/xiliourt/Lyrical-Sync/internal/colors"
	"github.com/xiliourt/Lyrical-Sync/internal/logging"
	"github.com/xiliourt/Lyrical-Sync/internal/lyrics"
	"github.com/xiliourt/Lyrical-Sync/internal/player"
	"github.com/xiliourt/Lyrical-Sync/internal/source"
	"github.com/xiliourt/Lyrical-Sync/internal/track"
	"github.com/xiliourt/Lyrical-Sync/internal/ui"
)

var (
	startAt   float64
	watchFile bool
)

var followCmd = &cobra.Command{
	Use:   "follow <file>",
	Short: "follow lyrics against a playback clock",
	Long: `starts the interactive follower. without --mpris-service a local clock
starting at --start drives playback and can be paused and seeked:

  space  pause / resume      left/right  seek 5s
  up/down  sync offset 0.1s  0           reset offset
  enter  jump to line start  i           toggle header
  q      quit`,
	Args: cobra.ExactArgs(1),
	RunE: runFollow,
}

func init() {
	addFollowFlags(followCmd)
	rootCmd.AddCommand(followCmd)
}

func addFollowFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&startAt, "start", 0, "start position in seconds for the local clock")
	cmd.Flags().BoolVar(&watchFile, "watch", false, "reload lyrics when the file changes")
}

func runFollow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logFile, err := logging.OpenFile(cfg.LogFile)
	if err != nil {
		return err
	}
	defer logFile.Close()

	if err := logging.Setup(cfg.LogLevel, logFile); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer cancel()

	path := args[0]
	timeline, loadErr := loadTimeline(path, watchFile)

	modelCfg := ui.ModelConfig{
		Timeline:     timeline,
		Track:        track.FromPath(path),
		SyncOffset:   cfg.SyncOffset,
		HideHeader:   cfg.HideHeader,
		PollInterval: cfg.PollInterval,
		Err:          loadErr,
	}

	if cfg.MprisService != "" {
		bus, err := dbus.ConnectSessionBus()
		if err != nil {
			return fmt.Errorf("failed to connect to session bus: %w", err)
		}
		defer bus.Close()

		playerService, err := player.NewService(bus, player.ServiceName(cfg.MprisService))
		if err != nil {
			return fmt.Errorf("failed to create player service: %w", err)
		}

		if err := playerService.Start(); err != nil {
			log.Warn().Err(err).Msg("could not set up dbus signals, relying on polling")
		}
		defer playerService.Stop()

		if current, err := playerService.GetCurrentTrack(); err == nil && current.IsValid() {
			modelCfg.Track = current
		}

		modelCfg.Clock = clock.NewMPRIS(playerService)
		modelCfg.Player = playerService
	} else {
		modelCfg.Clock = clock.NewWall(startAt)
	}

	modelCfg.Palette = artwork.PaletteFor(modelCfg.Track, path)
	modelCfg.Artwork = func(info *track.Info) *colors.Palette {
		return artwork.PaletteFor(info, path)
	}

	p := tea.NewProgram(
		ui.NewModel(modelCfg),
		tea.WithAltScreen(),
	)

	if watchFile {
		go watchTimeline(ctx, p, path)
	}

	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running bubble tea: %w", err)
	}

	return nil
}

// loadTimeline never fails the follower: unreadable lyrics become an empty
// timeline. A file that does not exist yet is left absent when it will be
// watched, so the follower shows it is waiting.
func loadTimeline(path string, waiting bool) (*lyrics.Timeline, error) {
	var raw *string

	text, err := source.Load(path)
	switch {
	case err == nil:
		raw = &text
	case waiting && errors.Is(err, os.ErrNotExist):
		log.Info().Str("path", path).Msg("lyrics file not there yet, waiting")
		return nil, nil
	default:
		log.Warn().Err(err).Str("path", path).Msg("failed to load lyrics, continuing without them")
	}

	timeline := lyrics.ParseOptional(raw)
	log.Info().
		Str("path", path).
		Str("timeline", timeline.ID()).
		Int("lines", timeline.Len()).
		Msg("lyrics loaded")

	return timeline, err
}

func watchTimeline(ctx context.Context, p *tea.Program, path string) {
	err := source.Watch(ctx, path, func(u source.Update) {
		if u.Err != nil {
			p.Send(ui.TimelineLoadedMsg{Err: u.Err})
			return
		}
		p.Send(ui.TimelineLoadedMsg{Timeline: lyrics.Parse(u.Text)})
	})
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("lyrics watcher stopped")
	}
}
