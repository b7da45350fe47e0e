package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/Lykaioss/s4stry/modules"
	"github.com/Lykaioss/s4stry/orchestrator"

	"github.com/julienschmidt/httprouter"
)

// CoordinatorServer exposes the coordinator HTTP surface over an
// *orchestrator.Coordinator, mirroring the API struct's pattern of
// holding module handles and building its router in one place
// (api/api.go's initAPI).
type CoordinatorServer struct {
	coordinator    *orchestrator.Coordinator
	ledgerConnected func() bool
	Handler        http.Handler
}

// NewCoordinatorServer builds the coordinator's HTTP surface.
// ledgerConnected reports whether the ledger RPC connection is currently up,
// surfaced on the root health endpoint.
func NewCoordinatorServer(c *orchestrator.Coordinator, ledgerConnected func() bool) *CoordinatorServer {
	s := &CoordinatorServer{coordinator: c, ledgerConnected: ledgerConnected}

	router := newRouter()
	router.GET("/", s.rootHandler)
	router.POST("/register-renter/", s.registerRenterHandler)
	router.POST("/heartbeat/", s.heartbeatHandler)
	router.POST("/register-public-key/", s.registerPublicKeyHandler)
	router.POST("/upload/", s.uploadHandler)
	router.GET("/download/:filename", s.downloadHandler)
	router.POST("/verify-challenge/:filename", s.verifyChallengeHandler)
	router.POST("/delete/:filename", s.deleteHandler)
	router.GET("/get-renters/", s.getRentersHandler)

	s.Handler = router
	return s
}

type rootResponse struct {
	Status         string `json:"status"`
	Message        string `json:"message"`
	LedgerConnected bool  `json:"ledger_connected"`
}

func (s *CoordinatorServer) rootHandler(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
	writeJSON(w, rootResponse{
		Status:          "ok",
		Message:         "s4stry coordinator",
		LedgerConnected: s.ledgerConnected(),
	})
}

type registerRenterRequest struct {
	RenterID         string `json:"renter_id,omitempty"`
	URL              string `json:"url"`
	StorageAvailable uint64 `json:"storage_available"`
	BlockchainAddr   string `json:"blockchain_address,omitempty"`
}

type registerRenterResponse struct {
	RenterID string `json:"renter_id"`
	Message  string `json:"message"`
}

func (s *CoordinatorServer) registerRenterHandler(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
	var body registerRenterRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.URL == "" {
		writeError(w, modules.ErrBadRequest)
		return
	}
	id := s.coordinator.Table.Register(body.RenterID, body.URL, body.StorageAvailable, body.BlockchainAddr)
	writeJSON(w, registerRenterResponse{RenterID: id, Message: "renter registered"})
}

type heartbeatRequest struct {
	RenterID       string `json:"renter_id"`
	BlockchainAddr string `json:"blockchain_address,omitempty"`
}

type heartbeatResponse struct {
	Message string `json:"message"`
}

func (s *CoordinatorServer) heartbeatHandler(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
	var body heartbeatRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.RenterID == "" {
		writeError(w, modules.ErrBadRequest)
		return
	}
	if err := s.coordinator.Table.Heartbeat(body.RenterID, body.BlockchainAddr); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, heartbeatResponse{Message: "heartbeat received"})
}

type registerPublicKeyRequest struct {
	Username  string `json:"username"`
	PublicKey string `json:"public_key"`
}

type registerPublicKeyResponse struct {
	Status string `json:"status"`
}

func (s *CoordinatorServer) registerPublicKeyHandler(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
	var body registerPublicKeyRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.Username == "" || body.PublicKey == "" {
		writeError(w, modules.ErrBadRequest)
		return
	}
	if err := s.coordinator.Registry.Register(body.Username, body.PublicKey); err != nil {
		writeError(w, modules.ErrBadRequest)
		return
	}
	writeJSON(w, registerPublicKeyResponse{Status: "registered"})
}

type uploadResponse struct {
	Filename          string `json:"filename"`
	NumShards         int    `json:"num_shards"`
	ReplicationFactor int    `json:"replication_factor"`
	ShardSize         int    `json:"shard_size"`
	Message           string `json:"message"`
}

func (s *CoordinatorServer) uploadHandler(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, modules.ErrBadRequest)
		return
	}
	file, header, err := req.FormFile("file")
	if err != nil {
		writeError(w, modules.ErrBadRequest)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, modules.ErrUpstreamFailure)
		return
	}

	payment, err := strconv.ParseFloat(req.FormValue("payment"), 64)
	if err != nil {
		writeError(w, modules.ErrBadRequest)
		return
	}

	result, err := s.coordinator.Upload(header.Filename, data, payment)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, uploadResponse{
		Filename:          result.Filename,
		NumShards:         result.NumShards,
		ReplicationFactor: result.ReplicationFactor,
		ShardSize:         result.ShardSize,
		Message:           result.Message,
	})
}

type downloadResponse struct {
	Challenge string `json:"challenge"`
	Filename  string `json:"filename"`
}

func (s *CoordinatorServer) downloadHandler(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
	filename := ps.ByName("filename")
	username := req.URL.Query().Get("username")
	if username == "" {
		writeError(w, modules.ErrBadRequest)
		return
	}

	challengeToken, err := s.coordinator.BeginDownload(filename, username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, downloadResponse{Challenge: challengeToken, Filename: filename})
}

type verifyChallengeRequest struct {
	Response string `json:"response"`
}

func (s *CoordinatorServer) verifyChallengeHandler(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
	filename := ps.ByName("filename")
	username := req.URL.Query().Get("username")
	var body verifyChallengeRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil || username == "" {
		writeError(w, modules.ErrBadRequest)
		return
	}

	data, err := s.coordinator.VerifyChallenge(filename, username, body.Response)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", "filename="+filename)
	w.Write(data)
}

type deleteResponse struct {
	Message string `json:"message"`
}

func (s *CoordinatorServer) deleteHandler(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
	filename := ps.ByName("filename")
	if err := s.coordinator.Delete(filename); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, deleteResponse{Message: "file deleted"})
}

type renterListEntry struct {
	RenterID        string `json:"renter_id"`
	URL             string `json:"url"`
	StorageAvailable uint64 `json:"storage_available"`
	Rack            string `json:"rack"`
	BlockchainAddr  string `json:"blockchain_address,omitempty"`
}

func (s *CoordinatorServer) getRentersHandler(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
	snap := s.coordinator.Table.Snapshot()
	out := make([]renterListEntry, 0, len(snap.Renters))
	for _, rec := range snap.Renters {
		out = append(out, renterListEntry{
			RenterID:         rec.RenterID,
			URL:              rec.URL,
			StorageAvailable: rec.StorageCapacity,
			Rack:             rec.Rack,
			BlockchainAddr:   rec.LedgerAddress,
		})
	}
	writeJSON(w, out)
}
