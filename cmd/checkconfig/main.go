// Command checkconfig prints the effective pipeline configuration and
// verifies the pieces a full run needs: data directories, the VLM API key
// and the external binaries used by rasterization.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/bol-annotator/internal/common"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()

	fmt.Printf("data dir:        %s\n", cfg.Paths.DataDir)
	fmt.Printf("model:           %s\n", cfg.API.Model)
	fmt.Printf("base url:        %s\n", cfg.API.BaseURL)
	fmt.Printf("ocr language:    %s\n", cfg.OCR.Language)
	fmt.Printf("image dpi:       %d\n", cfg.Rasterize.DPI)
	fmt.Printf("first page only: %t\n", cfg.Rasterize.OnlyFirstPage)
	fmt.Printf("batch size:      %d\n", cfg.Pipeline.BatchSize)
	fmt.Printf("batch interval:  %s\n", cfg.Pipeline.Interval)

	ok := true

	if err := cfg.Validate(); err != nil {
		fmt.Printf("config:          FAIL (%v)\n", err)
		ok = false
	} else {
		fmt.Printf("config:          ok\n")
	}

	if err := cfg.Paths.EnsureDirectories(); err != nil {
		fmt.Printf("directories:     FAIL (%v)\n", err)
		ok = false
	} else {
		fmt.Printf("directories:     ok\n")
	}

	for _, bin := range []string{cfg.Rasterize.Pdftoppm, cfg.Rasterize.Soffice} {
		if path, err := exec.LookPath(bin); err != nil {
			fmt.Printf("%-16s MISSING\n", bin+":")
			ok = false
		} else {
			fmt.Printf("%-16s %s\n", bin+":", path)
		}
	}

	if !ok {
		os.Exit(1)
	}
}
