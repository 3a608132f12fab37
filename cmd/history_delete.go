package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"jiralog/storage"

	"github.com/spf13/cobra"
)

var (
	historyDeleteAll  bool
	historyDeleteFile bool
)

var (
	deletePromptInput  io.Reader = os.Stdin
	deletePromptOutput io.Writer = os.Stdout
)

var historyDeleteCmd = &cobra.Command{
	Use:   "delete [ID]",
	Short: "Delete recorded work logs from the local history",
	Long: `Remove entries from the local history. Work logs in Jira are not touched.

With an ID, one entry is deleted. --all deletes every entry and --file deletes
the complete SQLite database file. Both require typing exactly "Y" at the
confirmation prompt.`,
	Example: `
  # Delete entry 12
  jiralog history delete 12

  # Delete all entries (requires interactive confirmation)
  jiralog history delete --all

  # Delete the complete SQLite file
  jiralog history delete --file --db ./history.db
`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		modes := 0
		if len(args) == 1 {
			modes++
		}
		if historyDeleteAll {
			modes++
		}
		if historyDeleteFile {
			modes++
		}
		if modes != 1 {
			return fmt.Errorf("pass exactly one of: an entry ID, --all, --file")
		}

		if historyDeleteFile {
			path := resolveHistoryPath(historyDBPath)
			if err := confirmOrAbort(fmt.Sprintf("Delete database file %q?", path)); err != nil {
				return err
			}
			if err := removeDatabaseFile(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted database file: %s\n", path)
			return nil
		}

		store, path, err := openHistory(historyDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		if historyDeleteAll {
			if err := confirmOrAbort(fmt.Sprintf("Delete all work logs in %q?", path)); err != nil {
				return err
			}
			deleted, err := store.DeleteAllWorklogs()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d work logs from history.\n", deleted)
			return nil
		}

		id, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid entry ID %q", args[0])
		}
		if err := store.DeleteWorklog(id); err != nil {
			if errors.Is(err, storage.ErrWorklogNotFound) {
				return fmt.Errorf("history entry %d not found", id)
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted history entry %d.\n", id)
		return nil
	},
}

func init() {
	historyCmd.AddCommand(historyDeleteCmd)

	historyDeleteCmd.Flags().BoolVar(&historyDeleteAll, "all", false, "Delete every history entry")
	historyDeleteCmd.Flags().BoolVar(&historyDeleteFile, "file", false, "Delete the complete SQLite database file")
}

func confirmOrAbort(question string) error {
	confirmed, err := confirmDeletePrompt(deletePromptInput, deletePromptOutput, question)
	if err != nil {
		return err
	}
	if !confirmed {
		return fmt.Errorf("delete aborted: confirmation was not 'Y'")
	}
	return nil
}

func confirmDeletePrompt(input io.Reader, output io.Writer, question string) (bool, error) {
	if input == nil {
		return false, fmt.Errorf("delete confirmation input is not available")
	}

	if output == nil {
		output = io.Discard
	}

	if _, err := fmt.Fprintf(output, "%s Type Y to confirm: ", question); err != nil {
		return false, fmt.Errorf("write delete confirmation prompt: %w", err)
	}

	line, err := bufio.NewReader(input).ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			line = strings.TrimSpace(line)
			return line == "Y", nil
		}
		return false, fmt.Errorf("read delete confirmation: %w", err)
	}
	return strings.TrimSpace(line) == "Y", nil
}

func removeDatabaseFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("database file not found: %s", path)
		}
		return fmt.Errorf("stat database file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("database path is a directory: %s", path)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete database file: %w", err)
	}
	return nil
}
