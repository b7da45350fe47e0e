package api

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Lykaioss/s4stry/rentersrv"
)

func newTestRenterServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := rentersrv.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	srv := NewRenterServer(store)
	return httptest.NewServer(srv.Handler)
}

func TestRenterRootHealthCheck(t *testing.T) {
	ts := newTestRenterServer(t)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %v", resp.StatusCode)
	}
}

func TestRenterStoreRetrieveDeleteRoundTrip(t *testing.T) {
	ts := newTestRenterServer(t)
	defer ts.Close()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, _ := w.CreateFormFile("file", "shard_0_replica_0_f.txt")
	part.Write([]byte("shard-bytes"))
	w.Close()

	storeReq, _ := http.NewRequest(http.MethodPost, ts.URL+"/store-shard/", &body)
	storeReq.Header.Set("Content-Type", w.FormDataContentType())
	storeResp, err := http.DefaultClient.Do(storeReq)
	if err != nil {
		t.Fatal(err)
	}
	storeResp.Body.Close()
	if storeResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from store-shard, got %v", storeResp.StatusCode)
	}

	retResp, err := http.Get(ts.URL + "/retrieve-shard/?filename=shard_0_replica_0_f.txt")
	if err != nil {
		t.Fatal(err)
	}
	data, _ := io.ReadAll(retResp.Body)
	retResp.Body.Close()
	if string(data) != "shard-bytes" {
		t.Fatalf("got %q, want %q", data, "shard-bytes")
	}

	delResp, err := http.Post(ts.URL+"/delete-shard/?filename=shard_0_replica_0_f.txt", "application/octet-stream", nil)
	if err != nil {
		t.Fatal(err)
	}
	delResp.Body.Close()
	if delResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from delete-shard, got %v", delResp.StatusCode)
	}

	afterDelete, err := http.Get(ts.URL + "/retrieve-shard/?filename=shard_0_replica_0_f.txt")
	if err != nil {
		t.Fatal(err)
	}
	afterDelete.Body.Close()
	if afterDelete.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %v", afterDelete.StatusCode)
	}
}

func TestRenterRetrieveShardMissingReturns404(t *testing.T) {
	ts := newTestRenterServer(t)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/retrieve-shard/?filename=ghost")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", resp.StatusCode)
	}
}
