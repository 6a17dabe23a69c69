package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/accurate-xml-converter/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the conversion HTTP API",
	Long: `Serve the conversion workflow over HTTP. A client creates a session, uploads
a sample XML exported by Accurate to detect the branch code, then uploads
sheets to /api/sessions/:id/convert and receives the XML as a download.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if serveAddr != "" {
			appConfig.Server.Addr = serveAddr
		}

		srv, err := server.New(appConfig, appLogger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from configuration)")
}
