package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"flow-ai/chatcore/internal/model"
	"flow-ai/chatcore/internal/render"
	"flow-ai/chatcore/internal/search"
	"flow-ai/chatcore/internal/stream"
)

var (
	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
)

func newAskCmd(opts *options) *cobra.Command {
	var (
		webSearch bool
		html      bool
		live      bool
	)

	cmd := &cobra.Command{
		Use:   "ask <text>",
		Short: "Run one exchange against the upstream endpoint",
		Long: `Send a single user message upstream and print the assistant reply.

Nothing is stored. With --live every snapshot is printed as it arrives;
otherwise only the final reply is shown.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				return fmt.Errorf("nothing to ask")
			}
			out := cmd.OutOrStdout()

			coord := search.NewCoordinator(webSearch)
			report := searchReporter(out, coord)

			sess := stream.NewAccumulator(opts.upstream, coord).NewSession()
			history := []model.Message{model.NewTextMessage("cli", model.RoleUser, text)}

			snaps := make(chan model.Snapshot)
			errCh := make(chan error, 1)
			go func() { errCh <- sess.Run(cmd.Context(), history, snaps) }()

			var last model.Snapshot
			for snap := range snaps {
				last = snap
				report()
				if live && !snap.Failed {
					fmt.Fprintln(out, statusStyle.Render(fmt.Sprintf("... %d chars", len([]rune(snap.Text)))))
				}
			}
			runErr := <-errCh
			report()

			formatter := render.NewFormatter()
			if last.Failed {
				fmt.Fprintln(out, errorStyle.Render(last.Text))
			} else {
				fmt.Fprintln(out, labelStyle.Render("Assistant"))
				body := last.Text
				if html {
					body = formatter.Message(body)
				}
				fmt.Fprintln(out, body)
			}

			if results := coord.Snapshot().Results; results != "" {
				fmt.Fprintln(out)
				fmt.Fprintln(out, labelStyle.Render("Search results"))
				if html {
					results = formatter.SearchResults(results)
				}
				fmt.Fprintln(out, results)
			}
			fmt.Fprintln(out, statusStyle.Render("session "+sess.State().String()))

			if sess.State() == model.StateFailed {
				return runErr
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&webSearch, "search", false, "Enable web search for this exchange")
	cmd.Flags().BoolVar(&html, "html", false, "Print the reply and results as formatted HTML")
	cmd.Flags().BoolVar(&live, "live", false, "Print progress for every snapshot")
	return cmd
}

// searchReporter prints the searching indicator each time it has flipped
// since the previous call.
func searchReporter(out io.Writer, coord *search.Coordinator) func() {
	searching := false
	return func() {
		s := coord.Snapshot()
		if s.IsSearching == searching {
			return
		}
		searching = s.IsSearching
		if searching {
			fmt.Fprintln(out, statusStyle.Render("searching the web..."))
		} else {
			fmt.Fprintln(out, statusStyle.Render("search done"))
		}
	}
}
