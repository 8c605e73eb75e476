package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/epidash/backend/internal/service"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// apiError adds the server's message to a failed call
func apiError(what string, err error) error {
	return fmt.Errorf("failed to fetch %s: %s: %w", what, service.UserMessage(err), err)
}
