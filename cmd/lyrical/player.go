package main

import (
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"

	"github.com/xiliourt/Lyrical-Sync/internal/lyrics"
	"github.com/xiliourt/Lyrical-Sync/internal/player"
)

var playerCmd = &cobra.Command{
	Use:   "player",
	Short: "mpris player utilities",
	Long:  `discover mpris-compatible music players to follow with --mpris-service.`,
}

var playerListCmd = &cobra.Command{
	Use:   "list",
	Short: "list available mpris players",
	Long:  `list all mpris-compatible music players currently running on the system.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := setupCommand(cmd); err != nil {
			return err
		}

		bus, err := dbus.ConnectSessionBus()
		if err != nil {
			return fmt.Errorf("failed to connect to session bus: %w", err)
		}
		defer bus.Close()

		services, err := player.List(bus)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()

		if len(services) == 0 {
			fmt.Fprintln(out, "no mpris players found")
			fmt.Fprintln(out, "\ncheck if your music player is running and supports mpris")
			return nil
		}

		fmt.Fprintf(out, "found %d mpris player(s):\n\n", len(services))
		for _, service := range services {
			if identity := player.Identity(bus, service); identity != "" {
				fmt.Fprintf(out, "  %s (%s)\n", service, identity)
			} else {
				fmt.Fprintf(out, "  %s\n", service)
			}
		}

		fmt.Fprintln(out, "\nuse --mpris-service flag to specify which player to use")

		return nil
	},
}

var playerCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "show currently playing track",
	Long:  `display information about the track playing in the --mpris-service player.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setupCommand(cmd)
		if err != nil {
			return err
		}
		if cfg.MprisService == "" {
			return errors.New("no player selected, pass --mpris-service or set LYRICAL_MPRIS_SERVICE")
		}

		bus, err := dbus.ConnectSessionBus()
		if err != nil {
			return fmt.Errorf("failed to connect to session bus: %w", err)
		}
		defer bus.Close()

		playerService, err := player.NewService(bus, player.ServiceName(cfg.MprisService))
		if err != nil {
			return fmt.Errorf("failed to connect to player: %w", err)
		}

		out := cmd.OutOrStdout()

		current, err := playerService.GetCurrentTrack()
		if err != nil {
			return err
		}
		if !current.IsValid() {
			fmt.Fprintln(out, "no track currently playing")
			return nil
		}

		fmt.Fprintf(out, "title:    %s\n", current.Title)
		fmt.Fprintf(out, "artist:   %s\n", current.Artist)
		if current.Album != "" {
			fmt.Fprintf(out, "album:    %s\n", current.Album)
		}
		if current.DurationSeconds > 0 {
			fmt.Fprintf(out, "duration: %s\n", lyrics.FormatDuration(current.DurationSeconds))
		}

		playing, err := playerService.GetPlaying()
		switch {
		case err != nil:
			fmt.Fprintf(out, "state:    unknown\n")
		case playing:
			fmt.Fprintf(out, "state:    playing\n")
		default:
			fmt.Fprintf(out, "state:    paused\n")
		}

		if pos, err := playerService.GetCurrentPosition(); err == nil {
			fmt.Fprintf(out, "position: %s\n", lyrics.FormatDuration(pos))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(playerCmd)

	playerCmd.AddCommand(playerListCmd)
	playerCmd.AddCommand(playerCurrentCmd)
}
