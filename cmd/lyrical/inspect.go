package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/xiliourt/Lyrical-Sync/internal/colors"
	"github.com/xiliourt/Lyrical-Sync/internal/lyrics"
	"github.com/xiliourt/Lyrical-Sync/internal/source"
)

var inspectAt float64

var inspectCmd = &cobra.Command{
	Use:   "inspect <file|->",
	Short: "print the parsed timeline",
	Long: `parse a lyrics file (or the lyrics tag of an audio file) and print its
timed lines. a path of - reads lrc text from stdin. with --at, evaluate the
timeline at that position and mark each line as past, active or upcoming.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := setupCommand(cmd); err != nil {
			return err
		}

		timeline, err := readTimeline(cmd.InOrStdin(), args[0])
		if err != nil {
			return err
		}
		log.Debug().Str("path", args[0]).Str("timeline", timeline.ID()).Int("lines", timeline.Len()).Msg("parsed lyrics")

		var ev *lyrics.Evaluation
		if cmd.Flags().Changed("at") {
			e := timeline.Evaluate(inspectAt)
			ev = &e
		}

		printTimeline(cmd.OutOrStdout(), timeline, ev)

		if ev != nil {
			printEvaluation(cmd.OutOrStdout(), timeline, inspectAt, *ev)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().Float64Var(&inspectAt, "at", 0, "evaluate the timeline at this position in seconds")
}

func readTimeline(stdin io.Reader, path string) (*lyrics.Timeline, error) {
	if path == "-" {
		return lyrics.ParseReader(stdin)
	}

	text, err := source.Load(path)
	if err != nil {
		return nil, err
	}
	return lyrics.Parse(text), nil
}

func printTimeline(w io.Writer, timeline *lyrics.Timeline, ev *lyrics.Evaluation) {
	palette := colors.DefaultPalette()
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(palette.Primary)).Bold(true)
	pastStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(palette.Dim))
	plainStyle := lipgloss.NewStyle()

	for i, line := range timeline.Lines() {
		text := line.Text
		if text == "" {
			text = "(pause)"
		}
		row := fmt.Sprintf("[%s] %s", lyrics.FormatTimestamp(line.TimeSeconds), text)

		if ev == nil {
			fmt.Fprintln(w, row)
			continue
		}

		switch ev.StateOf(i) {
		case lyrics.Active:
			fmt.Fprintln(w, activeStyle.Render("> "+row))
		case lyrics.Past:
			fmt.Fprintln(w, pastStyle.Render("  "+row))
		default:
			fmt.Fprintln(w, plainStyle.Render("  "+row))
		}
	}

	fmt.Fprintf(w, "%d lines\n", timeline.Len())
}

func printEvaluation(w io.Writer, timeline *lyrics.Timeline, at float64, ev lyrics.Evaluation) {
	fmt.Fprintln(w)

	if ev.ActiveIndex < 0 {
		fmt.Fprintf(w, "at %s: no active line\n", lyrics.FormatTimestamp(at))
		return
	}

	fmt.Fprintf(w, "at %s: line %d of %d active\n", lyrics.FormatTimestamp(at), ev.ActiveIndex+1, timeline.Len())
	fmt.Fprintf(w, "progress %.3f  fade %.3f  next %v\n", ev.Progress, ev.FadeFactor, ev.HasNext)

	tr := ev.Transition()
	fmt.Fprintf(w, "opacity %.3f  scale %.3f  blur %.3f\n", tr.Opacity, tr.Scale, tr.Blur)
}
