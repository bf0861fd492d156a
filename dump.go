package main

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"hexplorer/internal/logging"
	"hexplorer/internal/preview"
	"hexplorer/internal/snapshot"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func dumpCmd() *cobra.Command {
	var (
		full     bool
		maxBytes int64
		stat      bool
		encoding  string
		logStderr bool
	)

	cmd := &cobra.Command{
		Use:   "dump FILE",
		Short: "Print the preview of a file",
		Long: `Print FILE the way the browser previews it: decoded text, or a hex dump
with addresses and a printable gutter when the file is binary.

By default only the first --max-bytes bytes are read. --full streams the
whole file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cfgErr := loadConfig(cmd)
			if err := logging.Setup(cfg.Log, logging.Options{Stderr: true, ForceStderr: logStderr}); err != nil {
				return err
			}
			defer logging.Close()
			log := logging.NewLogger("dump")
			if cfgErr != nil {
				log.WithError(cfgErr).Warn("using default configuration")
			}

			if encoding == "" {
				encoding = cfg.Preview.Encoding
			}
			if !cmd.Flags().Changed("max-bytes") {
				maxBytes = cfg.Preview.MaxBytes
			}

			path := args[0]
			if stat {
				info, err := snapshot.Stat(path)
				if err != nil {
					return err
				}
				printStat(cmd.ErrOrStderr(), info)
			}

			r, err := preview.NewRenderer(encoding)
			if err != nil {
				return err
			}

			if full {
				kind, err := r.Stream(cmd.OutOrStdout(), path)
				if err != nil {
					return err
				}
				log.WithField("path", path).WithField("kind", kind).Debug("streamed")
				return nil
			}

			p, err := r.Load(path, maxBytes)
			if err != nil {
				return err
			}
			out := bufio.NewWriter(cmd.OutOrStdout())
			if _, err := p.WriteTo(out); err != nil {
				return err
			}
			if err := out.Flush(); err != nil {
				return err
			}
			if p.Truncated {
				log.WithField("path", path).Infof("showing first %s of %s; use --full for the rest",
					humanize.Bytes(uint64(maxBytes)), humanize.Bytes(uint64(p.Size)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&full, "full", "a", false, "dump the whole file instead of a prefix")
	cmd.Flags().Int64VarP(&maxBytes, "max-bytes", "n", 0, "bytes to read (default from config)")
	cmd.Flags().BoolVar(&stat, "stat", false, "print size and timestamps to stderr first")
	cmd.Flags().StringVarP(&encoding, "encoding", "e", "", "text encoding (default from config)")
	cmd.Flags().BoolVar(&logStderr, "log-stderr", false, "log to stderr even when it is a terminal")
	return cmd
}

func printStat(w io.Writer, info *snapshot.Info) {
	fmt.Fprintf(w, "File Size:     %d bytes (%s)\n", info.Size, humanize.Bytes(uint64(info.Size)))
	fmt.Fprintf(w, "Last Accessed: %s\n", info.AccessTime.Format(time.ANSIC))
	fmt.Fprintf(w, "Last Modified: %s (%s)\n", info.ModTime.Format(time.ANSIC), humanize.Time(info.ModTime))
}
