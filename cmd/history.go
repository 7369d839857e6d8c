package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ayoubharati/dataware-chatbot/internal"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var historyPath string

var (
	listHeadStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	listIDStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	listTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse conversations archived with 'chat --save'",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived conversations",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openHistory()
		if err != nil {
			return err
		}
		defer h.Close()

		threads, err := h.ListThreads()
		if err != nil {
			return err
		}
		if len(threads) == 0 {
			fmt.Println("No archived conversations. Run 'chat --save' to start archiving.")
			return nil
		}

		w := tabwriter.NewWriter(lipgloss.DefaultRenderer().Output(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, listHeadStyle.Render("ID")+"\t"+
			listHeadStyle.Render("TITLE")+"\t"+
			listHeadStyle.Render("MESSAGES")+"\t"+
			listHeadStyle.Render("SAVED")+"\t")

		for _, t := range threads {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t\n",
				listIDStyle.Render(t.ID),
				listTitleStyle.Render(t.Title),
				t.MessageCount,
				t.SavedAt.Local().Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <thread-id>",
	Short: "Print one archived conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openHistory()
		if err != nil {
			return err
		}
		defer h.Close()

		thread, err := h.LoadThread(args[0])
		if err != nil {
			return err
		}
		if thread == nil {
			return fmt.Errorf("no archived conversation with id %q", args[0])
		}

		fmt.Println(listHeadStyle.Render(thread.Title))
		fmt.Println(listIDStyle.Render(fmt.Sprintf("%s · created %s · %d message(s)",
			thread.ID, thread.CreatedAt.Local().Format(time.RFC822), len(thread.Messages))))
		fmt.Println()

		for _, msg := range thread.Messages {
			label := questionStyle.Render("You")
			if msg.Role == internal.RoleAssistant {
				label = answerStyle.Render("Assistant")
			}
			fmt.Println(label)
			fmt.Println(answerBodyStyle.Render(msg.Content))
			if msg.Role == internal.RoleAssistant {
				renderPayload(msg)
			}
			fmt.Println(strings.Repeat("─", 40))
		}
		return nil
	},
}

// openHistory opens the archive at --history-db or the default location
func openHistory() (*internal.History, error) {
	path := historyPath
	if path == "" {
		var err error
		path, err = internal.DefaultHistoryPath()
		if err != nil {
			return nil, err
		}
	}
	return internal.OpenHistory(path)
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.PersistentFlags().StringVar(&historyPath, "history-db", "", "History database path (default ~/.dataware-chatbot/history.db)")
}
