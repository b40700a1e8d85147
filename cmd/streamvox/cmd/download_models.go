package cmd

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/streamvox/internal/apperr"
)

var (
	flagModelURL    string
	flagModelDest   string
	flagModelSHA256 string
)

var downloadModelsCmd = &cobra.Command{
	Use:   "download-models",
	Short: "Fetch a model artifact to the local filesystem, verifying its checksum",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDownloadModels()
	},
}

func init() {
	downloadModelsCmd.Flags().StringVar(&flagModelURL, "url", "", "URL of the model artifact to download")
	downloadModelsCmd.Flags().StringVar(&flagModelDest, "dest", "", "destination file path")
	downloadModelsCmd.Flags().StringVar(&flagModelSHA256, "sha256", "", "expected sha256 checksum of the artifact, if known")
}

func runDownloadModels() error {
	if flagModelURL == "" || flagModelDest == "" {
		return apperr.New(apperr.Configuration, "cmd", "download_models", fmt.Errorf("--url and --dest are required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, flagModelURL, nil)
	if err != nil {
		return apperr.New(apperr.Environment, "cmd", "download_models", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return apperr.New(apperr.Environment, "cmd", "download_models", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apperr.New(apperr.Environment, "cmd", "download_models", fmt.Errorf("unexpected status %s", resp.Status))
	}

	if err := os.MkdirAll(filepath.Dir(flagModelDest), 0o755); err != nil {
		return apperr.New(apperr.Environment, "cmd", "download_models", err)
	}
	tmp := flagModelDest + ".partial"
	f, err := os.Create(tmp)
	if err != nil {
		return apperr.New(apperr.Environment, "cmd", "download_models", err)
	}

	hasher := sha256.New()
	written, err := io.Copy(io.MultiWriter(f, hasher), resp.Body)
	f.Close()
	if err != nil {
		os.Remove(tmp)
		return apperr.New(apperr.Environment, "cmd", "download_models", err)
	}

	sum := hex.EncodeToString(hasher.Sum(nil))
	if flagModelSHA256 != "" && sum != flagModelSHA256 {
		os.Remove(tmp)
		return apperr.New(apperr.Environment, "cmd", "download_models", fmt.Errorf("checksum mismatch: got %s, want %s", sum, flagModelSHA256))
	}

	if err := os.Rename(tmp, flagModelDest); err != nil {
		return apperr.New(apperr.Environment, "cmd", "download_models", err)
	}

	fmt.Printf("downloaded %s (%d bytes, sha256=%s) to %s\n", flagModelURL, written, sum, flagModelDest)
	return nil
}
