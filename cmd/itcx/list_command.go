package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"itcx/internal/itc"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <file.itc>",
		Short: "Show the images inside an .itc file without extracting them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := ctx.ensureConfig(); err != nil {
				return err
			}

			source, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			reader := itc.NewReader(source)
			defer reader.Close()

			images, err := reader.ReadAll()
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			rows := make([][]string, 0, len(images))
			for i, img := range images {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					img.Format.String(),
					fmt.Sprintf("%dx%d", img.Width, img.Height),
					strconv.Itoa(len(img.Data)),
				})
			}

			out := cmd.OutOrStdout()
			headers := []string{"#", "Format", "Dimensions", "Bytes"}
			if isTerminal(out) {
				fmt.Fprintln(out, renderTable(headers, rows, 0, 3))
			} else {
				// Headers are omitted when piping so the output stays
				// script-friendly.
				writeTabbed(out, rows)
			}
			return nil
		},
	}
	return cmd
}

func writeTabbed(w io.Writer, rows [][]string) {
	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				fmt.Fprint(w, "\t")
			}
			fmt.Fprint(w, cell)
		}
		fmt.Fprintln(w)
	}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
