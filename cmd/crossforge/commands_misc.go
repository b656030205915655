package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crossforge/crossforge/pkg/runtime"
	"github.com/crossforge/crossforge/pkg/step"
	"github.com/crossforge/crossforge/pkg/xerrors"
)

// newInitCommand links a source tree into the build root, the Go
// equivalent of xbstrap init: it creates bootstrap.link pointing at
// src_root/bootstrap.yml.
func newInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init <src_root>",
		Short: "Link a source tree's bootstrap.yml into the current build root",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			srcRoot := args[0]
			manifestPath := filepath.Join(srcRoot, "bootstrap.yml")
			if _, err := os.Stat(manifestPath); err != nil {
				return xerrors.NewConfigError("%s does not contain a bootstrap.yml", srcRoot)
			}
			if _, err := os.Lstat("bootstrap.link"); err == nil {
				cmd.Println("warning: bootstrap.link already exists, skipping...")
				return nil
			}
			return os.Symlink(manifestPath, "bootstrap.link")
		},
	}
}

// newVersionCommand prints the build's version string.
func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the crossforge version",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.Println(version)
			return nil
		},
	}
}

// newExecuteManifestCommand decodes a serialized step.Manifest from -c or
// stdin and runs it directly on the host. This is the subcommand
// runtime.Dummy reinvokes the executor binary with; it must exit with the
// manifest command's own exit code, not a cobra-wrapped error.
func newExecuteManifestCommand() *cobra.Command {
	var inline string
	cmd := &cobra.Command{
		Use:    "execute-manifest",
		Short:  "Run a serialized step manifest (internal, used by the dummy runtime)",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload []byte
			var err error
			if inline != "" {
				payload = []byte(inline)
			} else {
				payload, err = io.ReadAll(os.Stdin)
				if err != nil {
					return &xerrors.IoError{Path: "<stdin>", Cause: err}
				}
			}

			var m step.Manifest
			if err := json.Unmarshal(payload, &m); err != nil {
				return xerrors.NewConfigError("malformed manifest: %v", err)
			}

			status, err := runtime.RunDirect(cmd.Context(), m)
			if err != nil {
				return err
			}
			if status.Signal != "" {
				fmt.Fprintln(os.Stderr, strings.TrimSpace("killed: "+status.Signal))
				os.Exit(1)
			}
			os.Exit(status.Code)
			return nil
		},
	}
	cmd.Flags().StringVarP(&inline, "manifest", "c", "", "manifest JSON, read from stdin if unset")
	return cmd
}
