package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lazypower/habits/internal/client"
)

var invokeURL string

var invokeCmd = &cobra.Command{
	Use:   "invoke <command> [args-json]",
	Short: "Run a bridge command locally or against a running server",
	Long: `Run one command of the UI bridge and print its JSON result.

Without --url the command runs against the local database. With --url it is
sent to a running "habits serve".`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runInvoke,
}

func init() {
	invokeCmd.Flags().StringVar(&invokeURL, "url", "", "server URL (e.g. http://127.0.0.1:37778)")
}

func runInvoke(cmd *cobra.Command, args []string) error {
	var raw json.RawMessage
	if len(args) == 2 {
		raw = json.RawMessage(args[1])
	}

	if invokeURL != "" {
		out, err := client.New(invokeURL).Invoke(cmd.Context(), args[0], raw)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), out)
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.commands.Invoke(cmd.Context(), args[0], raw)
	if err != nil {
		return err
	}
	out, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return printJSON(cmd.OutOrStdout(), out)
}

func printJSON(w io.Writer, data []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	_, err := fmt.Fprintln(w, buf.String())
	return err
}
