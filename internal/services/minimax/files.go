package minimax

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"storyreel/internal/services"
)

type fileRetrieveResponse struct {
	File struct {
		FileID      int64  `json:"file_id"`
		Filename    string `json:"filename"`
		DownloadURL string `json:"download_url"`
	} `json:"file"`
	BaseResp baseResp `json:"base_resp"`
}

// RetrieveFile resolves a finished artifact's file id to a download URL.
func (c *Client) RetrieveFile(ctx context.Context, fileID string) (string, error) {
	const operation = "retrieve file"
	if strings.TrimSpace(fileID) == "" {
		return "", services.Wrap(services.ErrValidation, "minimax", operation, "file id required", nil)
	}
	query := url.Values{"file_id": []string{fileID}}

	var decoded fileRetrieveResponse
	if err := c.getJSON(ctx, operation, "/files/retrieve", query, &decoded); err != nil {
		return "", err
	}
	if !decoded.BaseResp.ok() {
		return "", services.Wrap(services.ErrExternalTool, "minimax", operation, decoded.BaseResp.StatusMsg, nil)
	}
	if decoded.File.DownloadURL == "" {
		return "", services.Wrap(services.ErrExternalTool, "minimax", operation, "no download url in response", nil)
	}
	return decoded.File.DownloadURL, nil
}

// DownloadArtifact fetches a finished artifact by file id into destPath,
// creating parent directories as needed. The write goes through a temp file
// so a partial download never lands at the destination path.
func (c *Client) DownloadArtifact(ctx context.Context, fileID, destPath string) error {
	const operation = "download artifact"
	downloadURL, err := c.RetrieveFile(ctx, fileID)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return services.Wrap(services.ErrTransient, "minimax", operation, "build request", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransient, "minimax", operation, "http request", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return services.Wrap(services.ErrTransient, "minimax", operation,
			fmt.Sprintf("http %d fetching artifact", resp.StatusCode), nil)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return services.Wrap(services.ErrExternalTool, "minimax", operation, "create destination directory", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".download-*")
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "minimax", operation, "create temp file", err)
	}
	tmpPath := tmp.Name()
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return services.Wrap(services.ErrTransient, "minimax", operation, "write artifact", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return services.Wrap(services.ErrExternalTool, "minimax", operation, "close artifact", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return services.Wrap(services.ErrExternalTool, "minimax", operation, "finalize artifact", err)
	}
	return nil
}
