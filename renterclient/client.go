// Package renterclient is the coordinator-side HTTP client for the three
// opaque blob operations a renter exposes: store-shard, retrieve-shard,
// delete-shard. Its helper-function shape (one function per verb, a
// shared User-Agent, bounded-timeout http.Client per call) mirrors
// api.HttpGET/HttpPOST/HttpPOSTAuthenticated in api/api.go.
package renterclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
)

// userAgent is sent on every renter-bound request, mirroring the
// "Sia-Agent" whitelisted user-agent convention.
const userAgent = "s4stry-coordinator"

// StoreShard POSTs data as a multipart "file" field, with blobName as its
// file name, to <baseURL>/store-shard/. Overwrite is implicit: the
// renter is expected to accept re-stores of the same blob name.
func StoreShard(ctx context.Context, client *http.Client, baseURL, blobName string, data []byte) error {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", blobName)
	if err != nil {
		return err
	}
	if _, err := part.Write(data); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	endpoint := trimTrailingSlash(baseURL) + "/store-shard/"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("renterclient: store-shard returned status %v", resp.StatusCode)
	}
	return nil
}

// RetrieveShard GETs <baseURL>/retrieve-shard/?filename=<blobName> and
// returns the body bytes. A replica attempt is only considered successful
// by the caller if the status is 200 and the body is non-empty;
// RetrieveShard itself just surfaces whatever the renter returned.
func RetrieveShard(ctx context.Context, client *http.Client, baseURL, blobName string) ([]byte, error) {
	endpoint := trimTrailingSlash(baseURL) + "/retrieve-shard/?filename=" + url.QueryEscape(blobName)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("renterclient: retrieve-shard returned status %v", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// DeleteShard POSTs to <baseURL>/delete-shard/?filename=<blobName>. A 404
// (blob already absent) is treated as success.
func DeleteShard(ctx context.Context, client *http.Client, baseURL, blobName string) error {
	endpoint := trimTrailingSlash(baseURL) + "/delete-shard/?filename=" + url.QueryEscape(blobName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("renterclient: delete-shard returned status %v", resp.StatusCode)
	}
	return nil
}

func trimTrailingSlash(s string) string {
	return strings.TrimRight(s, "/")
}
