package api

import (
	"io"
	"net/http"

	"github.com/Lykaioss/s4stry/rentersrv"

	"github.com/julienschmidt/httprouter"
)

// RenterServer exposes the renter's three blob verbs plus a health
// endpoint over a *rentersrv.Store.
type RenterServer struct {
	store   *rentersrv.Store
	Handler http.Handler
}

// NewRenterServer builds the renter's HTTP surface.
func NewRenterServer(store *rentersrv.Store) *RenterServer {
	s := &RenterServer{store: store}

	router := newRouter()
	router.GET("/", s.rootHandler)
	router.POST("/store-shard/", s.storeShardHandler)
	router.GET("/retrieve-shard/", s.retrieveShardHandler)
	router.POST("/delete-shard/", s.deleteShardHandler)

	s.Handler = router
	return s
}

type renterRootResponse struct {
	Status string `json:"status"`
}

func (s *RenterServer) rootHandler(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
	writeJSON(w, renterRootResponse{Status: "ok"})
}

func (s *RenterServer) storeShardHandler(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		writeErrorMessage(w, "bad-request: malformed multipart body", http.StatusBadRequest)
		return
	}
	file, header, err := req.FormFile("file")
	if err != nil {
		writeErrorMessage(w, "bad-request: missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeErrorMessage(w, "upstream-fail: reading upload body", http.StatusInternalServerError)
		return
	}
	if err := s.store.StoreShard(header.Filename, data); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *RenterServer) retrieveShardHandler(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
	name := req.URL.Query().Get("filename")
	if name == "" {
		writeErrorMessage(w, "bad-request: missing filename", http.StatusBadRequest)
		return
	}
	data, err := s.store.RetrieveShard(name)
	if err != nil {
		writeErrorMessage(w, "not-found: unknown blob", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Write(data)
}

func (s *RenterServer) deleteShardHandler(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
	name := req.URL.Query().Get("filename")
	if name == "" {
		writeErrorMessage(w, "bad-request: missing filename", http.StatusBadRequest)
		return
	}
	if err := s.store.DeleteShard(name); err != nil {
		writeErrorMessage(w, "upstream-fail: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
