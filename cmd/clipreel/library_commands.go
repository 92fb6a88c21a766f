package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/PizzaHomicide/clipreel/internal/domain"
	"github.com/PizzaHomicide/clipreel/internal/ui/tui/util"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the playlists in the library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			playlists, err := store.List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(playlists) == 0 {
				_, _ = fmt.Fprintf(out, "No playlists in %s\n", store.Dir())
				return nil
			}

			rows := make([][]string, 0, len(playlists))
			for _, p := range playlists {
				rows = append(rows, []string{
					p.Name,
					strconv.Itoa(p.Len()),
					util.FormatClock(p.TotalDuration().Seconds()),
					describeInterstitial(p.Interstitial),
					yesNo(p.Loop),
				})
			}
			_, _ = fmt.Fprintln(out, renderTable(
				[]string{"Name", "Clips", "Length", "Interstitial", "Loop"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <playlist>",
		Short: "Show the clips of a playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			playlist, err := ctx.resolvePlaylist(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "%s (%d clips, %s)\n", playlist.Name, playlist.Len(),
				util.FormatClock(playlist.TotalDuration().Seconds()))
			_, _ = fmt.Fprintf(out, "Interstitial: %s\n", describeInterstitial(playlist.Interstitial))

			rows := make([][]string, 0, playlist.Len())
			for i, clip := range playlist.Clips {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					clip.Title,
					clip.VideoID,
					util.FormatClock(clip.StartOffset),
					util.FormatClock(clip.Duration),
					clip.Attribution,
				})
			}
			_, _ = fmt.Fprintln(out, renderTable(
				[]string{"#", "Title", "Video", "Start", "Length", "Attribution"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
}

func newMoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "move <playlist> <from> <to>",
		Short: "Move a clip to a new position and save the playlist",
		Long:  "Move a clip to a new position and save the playlist.  Positions are clip numbers as shown by `show`.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseClipNumber(args[1])
			if err != nil {
				return err
			}
			to, err := parseClipNumber(args[2])
			if err != nil {
				return err
			}

			playlist, err := ctx.resolvePlaylist(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := playlist.Move(from, to); err != nil {
				return fmt.Errorf("move clip %d to %d in %q: %w", from+1, to+1, playlist.Name, err)
			}

			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			if err := store.Save(cmd.Context(), playlist); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Moved clip %d to position %d in %s\n", from+1, to+1, playlist.Name)
			return nil
		},
	}
}

// parseClipNumber turns a 1-based clip number into an index
func parseClipNumber(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("clip number %q is not a number", s)
	}
	return n - 1, nil
}

func describeInterstitial(i domain.Interstitial) string {
	switch i.EffectiveKind() {
	case domain.InterstitialAudio:
		if i.DurationHint > 0 {
			return fmt.Sprintf("audio %s (%s)", i.AssetRef, util.FormatClock(i.DurationHint))
		}
		return "audio " + i.AssetRef
	case domain.InterstitialVideo:
		return fmt.Sprintf("video %s @ %s for %s", i.VideoID, util.FormatClock(i.StartOffset), util.FormatClock(i.Duration))
	default:
		return "none"
	}
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
