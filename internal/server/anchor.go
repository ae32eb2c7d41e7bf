package server

import (
	"log"
	"net/http"

	"gridlink/internal/anchor"
	"gridlink/internal/constants"
	"gridlink/internal/types"
)

func (s *Server) HandleAnchor(w http.ResponseWriter, r *http.Request) {
	var req types.AnchorRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.FileSHA256 == "" || req.DatasetName == "" || req.TimeStart == "" || req.TimeEnd == "" {
		writeError(w, http.StatusBadRequest, constants.MsgInvalidPayload)
		return
	}

	receipt, err := s.Anchorer.Anchor(r.Context(), anchor.Request{
		FileSHA256:  req.FileSHA256,
		DatasetName: req.DatasetName,
		TimeStart:   req.TimeStart,
		TimeEnd:     req.TimeEnd,
		Metadata:    req.Metadata,
	})
	if err != nil {
		log.Printf("Anchoring failed: %v", err)
		writeError(w, http.StatusBadGateway, "Anchoring failed")
		return
	}

	writeJSON(w, http.StatusOK, receipt)
}
