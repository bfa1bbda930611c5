package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"voice2sign/internal/stagecache"
)

// addJSONFlag registers --json on cmd and binds it to target.
func addJSONFlag(cmd *cobra.Command, target *bool, usage string) {
	cmd.Flags().BoolVar(target, "json", false, usage)
}

// writeJSON prints v as indented JSON. HTML escaping stays off so YouTube
// URLs keep their literal "&".
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// cachedVideo is one row of `cache list --json`.
type cachedVideo struct {
	VideoID string `json:"video_id"`
	stagecache.Info
}
