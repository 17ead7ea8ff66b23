package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rechnungswerk/fiscal/pkg/config"
	"github.com/rechnungswerk/fiscal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load configuration:", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})

	root := &cobra.Command{
		Use:   "fiscal",
		Short: "Fiscal document numbering and e-invoice export",
		Long: `fiscal assigns collision-free document numbers from configurable
formats and exports invoices as XRechnung (UBL XML) or ZUGFeRD
(PDF with embedded Factur-X XML).`,
		SilenceUsage: true,
	}

	root.AddCommand(newNumberCmd(cfg, log))
	root.AddCommand(newExportCmd(cfg, log))

	if err := root.ExecuteContext(context.Background()); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
