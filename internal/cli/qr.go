package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aiwars-hackathon/hackdash/internal/output"
	"github.com/aiwars-hackathon/hackdash/internal/qrimage"
)

func newQRCmd(a *app) *cobra.Command {
	var (
		out   string
		show  bool
		width int
	)

	cmd := &cobra.Command{
		Use:   "qr",
		Short: "Save or show the team check-in QR code",
		Long: `Fetch the team profile and write its QR code image to disk.

The file extension follows the image type when --out has none:

  hackdash qr --out qr        # writes qr.png for a PNG code
  hackdash qr --show          # draws the code in the terminal`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" && !show {
				out = "hackdash-qr"
			}

			s, err := a.openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := cmd.Context()
			tok, err := s.token(ctx)
			if err != nil {
				return err
			}
			p, err := s.client.Profile(ctx, tok)
			if err != nil {
				return s.reject(ctx, err)
			}
			if strings.TrimSpace(p.QRCode.Image) == "" {
				return output.NewCLIError("your team has no QR code yet").WithCode("NO_QR")
			}

			w := cmd.OutOrStdout()
			if show {
				img, err := qrimage.Decode(p.QRCode.Image)
				if err != nil {
					return output.NewCLIError("cannot draw this QR code").WithCause(err.Error()).WithCode("BAD_QR")
				}
				fmt.Fprintln(w, qrimage.Render(img, width))
			}
			if out == "" {
				return nil
			}

			mediaType, data, err := qrimage.DecodeDataURL(p.QRCode.Image)
			if err != nil {
				return output.NewCLIError("the QR code is not a data URL").WithCause(err.Error()).WithCode("BAD_QR")
			}
			path := out
			if filepath.Ext(path) == "" {
				path += qrimage.Extension(mediaType)
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			fmt.Fprintf(w, "Saved %s (%s, %d bytes).\n", path, mediaType, len(data))
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "file to write (extension added from the image type)")
	cmd.Flags().BoolVar(&show, "show", false, "draw the QR code in the terminal")
	cmd.Flags().IntVar(&width, "width", 0, "terminal width for --show (0 keeps the image size)")
	return cmd
}
