// cfp-backup exports and imports data bundles against the configured
// store, without going through the HTTP API.
//
// Usage:
//
//	cfp-backup export [-out backup.json]
//	cfp-backup import -in backup.json
//	cfp-backup export-caixinhas [-out caixinhas.json]
//	cfp-backup import-caixinhas -in caixinhas.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/kevenbotelho/controle-pessoal/internal/cli"
	"github.com/kevenbotelho/controle-pessoal/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	command := os.Args[1]

	flags := flag.NewFlagSet(command, flag.ExitOnError)
	outPath := flags.String("out", "", "output file (default: stdout)")
	inPath := flags.String("in", "", "input file")
	if err := flags.Parse(os.Args[2:]); err != nil {
		os.Exit(2)
	}

	cfg := cli.LoadAndValidateConfig(logger)
	store := cli.InitStore(logger, cfg)
	defer store.Close()

	ctx := cli.SignalContext(logger)

	ledger := services.NewLedgerService(store, logger)
	caixinhas := services.NewCaixinhaService(store, ledger, logger)
	backup := services.NewBackupService(ledger, caixinhas, logger)

	if err := ledger.Reload(ctx); err != nil {
		logger.Error("Failed to load ledger", "error", err)
		os.Exit(1)
	}
	if err := caixinhas.Reload(ctx); err != nil {
		logger.Error("Failed to load caixinhas", "error", err)
		os.Exit(1)
	}

	var err error
	switch command {
	case "export":
		bundle, exportErr := backup.ExportLedger()
		if exportErr != nil {
			err = exportErr
			break
		}
		err = writeBundle(*outPath, bundle)
	case "import":
		raw, readErr := readInput(*inPath)
		if readErr != nil {
			err = readErr
			break
		}
		err = backup.ImportLedger(ctx, raw)
	case "export-caixinhas":
		err = writeBundle(*outPath, backup.ExportCaixinhas())
	case "import-caixinhas":
		raw, readErr := readInput(*inPath)
		if readErr != nil {
			err = readErr
			break
		}
		var count int
		count, err = backup.ImportCaixinhas(ctx, raw)
		if err == nil {
			logger.Info("Caixinhas imported", "count", count)
		}
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		logger.Error("Command failed", "command", command, "error", err)
		os.Exit(1)
	}
	logger.Info("Command completed", "command", command)
}

func writeBundle(path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	raw = append(raw, '\n')
	if path == "" {
		_, err = os.Stdout.Write(raw)
		return err
	}
	return os.WriteFile(path, raw, 0644)
}

func readInput(path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("missing -in flag")
	}
	return os.ReadFile(path)
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: cfp-backup <export|import|export-caixinhas|import-caixinhas> [-out file] [-in file]")
}
