package server

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"gridlink/internal/constants"
	"gridlink/internal/export"
	"gridlink/internal/job"
	"gridlink/internal/security"
	"gridlink/internal/source"
	"gridlink/internal/types"
)

func (s *Server) HandleExport(w http.ResponseWriter, r *http.Request) {
	var req types.ExportRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Start == "" || req.End == "" {
		writeError(w, http.StatusBadRequest, constants.MsgInvalidPayload)
		return
	}

	measurement := req.Measurement
	if measurement == "" {
		measurement = constants.DefaultMeasurement
	}
	filters := req.Filters
	if filters == nil {
		filters = map[string]string{}
	}

	j := s.Jobs.Create()
	s.Pipeline.Submit(j.ID, source.QueryOptions{
		Start:       req.Start,
		End:         req.End,
		Measurement: measurement,
		Filters:     filters,
	})

	writeJSON(w, http.StatusAccepted, types.ExportAcceptedResponse{JobID: j.ID})
}

func (s *Server) HandleStatus(w http.ResponseWriter, r *http.Request) {
	jobID, ok := jobIDParam(w, r)
	if !ok {
		return
	}
	j, err := s.Jobs.Get(jobID)
	if err != nil {
		writeError(w, http.StatusNotFound, constants.MsgJobNotFound)
		return
	}
	writeJSON(w, http.StatusOK, j)
}

// jobIDParam rejects malformed job ids before the store is consulted.
// Job ids are always UUIDs, so anything else is a guaranteed miss.
func jobIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	jobID := r.PathValue("jobId")
	if !security.ValidateUUID(jobID) {
		writeError(w, http.StatusNotFound, constants.MsgJobNotFound)
		return "", false
	}
	return jobID, true
}

func (s *Server) HandleJobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Jobs.List())
}

func (s *Server) HandleDownload(w http.ResponseWriter, r *http.Request) {
	jobID, ok := jobIDParam(w, r)
	if !ok {
		return
	}
	j, err := s.Jobs.Get(jobID)
	if err != nil {
		writeError(w, http.StatusNotFound, constants.MsgJobNotFound)
		return
	}

	if j.State != job.StateDone {
		writeError(w, http.StatusConflict, constants.MsgJobNotReady)
		return
	}

	if len(j.Data) == 0 {
		writeError(w, http.StatusNotFound, constants.MsgJobNoData)
		return
	}

	canonical, err := export.Canonicalize(j.Data)
	if err != nil {
		log.Printf("Failed to serialize job %s: %v", j.ID, err)
		writeError(w, http.StatusInternalServerError, "Failed to serialize export")
		return
	}

	filename := j.OutputFile
	if filename == "" {
		filename = j.ID + ".jsonl"
	}

	w.Header().Set("Content-Type", "application/jsonl")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(canonical)))
	if j.SHA256 != "" {
		w.Header().Set("X-Content-Hash", j.SHA256)
	}
	_, _ = w.Write(canonical)
}

// HandleWatch streams job snapshots over a WebSocket until the job
// reaches a terminal state. A push-style alternative to polling status.
func (s *Server) HandleWatch(w http.ResponseWriter, r *http.Request) {
	jobID, ok := jobIDParam(w, r)
	if !ok {
		return
	}
	if _, err := s.Jobs.Get(jobID); err != nil {
		writeError(w, http.StatusNotFound, constants.MsgJobNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade watch connection: %v", err)
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(constants.WatchPollInterval)
	defer ticker.Stop()

	for {
		j, err := s.Jobs.Get(jobID)
		if err != nil {
			return
		}
		if err := conn.WriteJSON(j); err != nil {
			return
		}
		if j.State.Terminal() {
			return
		}
		<-ticker.C
	}
}
